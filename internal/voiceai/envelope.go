package voiceai

import (
	"leadcenter/internal/calllog"
)

// ExtractRecords locates the list of call records inside whatever envelope
// the answering endpoint used. Known shapes are tried in priority order; an
// unrecognized envelope yields an empty slice, never an error, because a
// payload we cannot read is operationally the same as an empty page.
func ExtractRecords(payload any) []calllog.RawRecord {
	if records, ok := asRecordList(payload); ok {
		return records
	}

	envelope, ok := payload.(map[string]any)
	if !ok {
		return nil
	}

	for _, key := range []string{"data", "calls", "results"} {
		if records, ok := asRecordList(envelope[key]); ok {
			return records
		}
	}

	if meta, ok := envelope["metadata"].(map[string]any); ok {
		if records, ok := asRecordList(meta["calls"]); ok {
			return records
		}
	}
	if data, ok := envelope["data"].(map[string]any); ok {
		if records, ok := asRecordList(data["records"]); ok {
			return records
		}
	}

	for _, key := range []string{"records", "items"} {
		if records, ok := asRecordList(envelope[key]); ok {
			return records
		}
	}
	return nil
}

// asRecordList converts a decoded JSON array of objects into raw records.
// Non-object elements are dropped rather than failing the whole list.
func asRecordList(v any) ([]calllog.RawRecord, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	records := make([]calllog.RawRecord, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			records = append(records, calllog.RawRecord(obj))
		}
	}
	return records, true
}
