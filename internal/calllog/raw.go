package calllog

import (
	"strconv"
	"strings"
)

// RawRecord is one call as returned by the upstream API: an untyped bag of
// key/value pairs with no guaranteed schema. Field names vary between API
// versions and even between calls from the same version, so all access goes
// through accessors that try one synonym or location each.
type RawRecord map[string]any

// Metadata returns the nested metadata bag, if present. The bag carries the
// same field-name ambiguity as the top level, one level down.
func (r RawRecord) Metadata() RawRecord {
	switch m := r["metadata"].(type) {
	case map[string]any:
		return RawRecord(m)
	case RawRecord:
		return m
	default:
		return nil
	}
}

// nested returns a child object by key.
func (r RawRecord) nested(key string) RawRecord {
	switch m := r[key].(type) {
	case map[string]any:
		return RawRecord(m)
	case RawRecord:
		return m
	default:
		return nil
	}
}

// accessor tries exactly one synonym or location for a canonical field.
// Canonical fields are resolved by walking an ordered accessor list, so
// supporting a newly observed upstream field name is a one-line change.
type accessor func(RawRecord) (string, bool)

// field reads a top-level key.
func field(name string) accessor {
	return func(r RawRecord) (string, bool) {
		return stringValue(r[name])
	}
}

// metaField reads a key inside the nested metadata bag.
func metaField(name string) accessor {
	return func(r RawRecord) (string, bool) {
		m := r.Metadata()
		if m == nil {
			return "", false
		}
		return stringValue(m[name])
	}
}

// objectField reads a key inside a nested child object, e.g. customer.number.
func objectField(object, name string) accessor {
	return func(r RawRecord) (string, bool) {
		o := r.nested(object)
		if o == nil {
			return "", false
		}
		return stringValue(o[name])
	}
}

// firstString walks accessors in priority order and returns the first hit.
func firstString(r RawRecord, accessors []accessor) string {
	for _, a := range accessors {
		if v, ok := a(r); ok {
			return v
		}
	}
	return ""
}

// stringValue coerces a raw value to a non-empty string. Numbers are
// rendered without a trailing ".0" because upstream ids occasionally arrive
// as JSON numbers.
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// numberValue coerces a raw value to a float64. String numerals are accepted;
// anything unparsable reports false.
func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ExternalID resolves the record's external call id, if any.
func (r RawRecord) ExternalID() string {
	return firstString(r, idAccessors)
}

// Presence probes used by the detail enhancer to decide whether a secondary
// lookup is needed and which fields a lookup may fill in.

func (r RawRecord) HasSuccessEvaluation() bool {
	return firstString(r, successEvaluationAccessors) != ""
}

func (r RawRecord) HasCustomerNumber() bool {
	return firstString(r, customerNumberAccessors) != ""
}

func (r RawRecord) HasTranscript() bool {
	return firstString(r, transcriptAccessors) != ""
}

func (r RawRecord) HasRecordingURL() bool {
	return firstString(r, recordingAccessors) != ""
}

func (r RawRecord) HasEndedReason() bool {
	return firstString(r, endedReasonAccessors) != ""
}

// Clone returns a shallow copy safe for field merging.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
