package voiceai

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"leadcenter/internal/calllog"
)

// detailConcerns maps each field the summary listing may lack to the raw
// keys a detail lookup can supply it under. Merging copies only the keys of
// concerns the summary record is missing, so present fields are never
// overwritten.
var detailConcerns = []struct {
	missing func(calllog.RawRecord) bool
	keys    []string
}{
	{
		missing: func(r calllog.RawRecord) bool { return !r.HasSuccessEvaluation() },
		keys:    []string{"analysis", "success_evaluation", "successEvaluation", "evaluation", "outcome"},
	},
	{
		missing: func(r calllog.RawRecord) bool { return !r.HasCustomerNumber() },
		keys:    []string{"customer", "customer_number", "customerNumber", "to", "recipient"},
	},
	{
		missing: func(r calllog.RawRecord) bool { return !r.HasTranscript() },
		keys:    []string{"transcript"},
	},
	{
		missing: func(r calllog.RawRecord) bool { return !r.HasRecordingURL() },
		keys:    []string{"recording_url", "recordingUrl", "recording"},
	},
	{
		missing: func(r calllog.RawRecord) bool { return !r.HasEndedReason() },
		keys:    []string{"ended_reason", "endedReason", "end_reason", "hangup_cause"},
	},
}

// needsEnhancement reports whether a summary record is worth a detail lookup.
// Only the two fields the summary endpoint routinely omits are probed; the
// rest ride along in the merge once a lookup happens anyway.
func needsEnhancement(r calllog.RawRecord) bool {
	return !r.HasSuccessEvaluation() || !r.HasCustomerNumber()
}

// EnhanceRecords fills gaps in summary records with per-call detail lookups.
// Lookups run in fixed-size concurrent batches with a delay between batches
// to stay under upstream rate limits. Enhancement is best-effort: a failed
// lookup keeps the original record and never aborts the run.
func (c *Client) EnhanceRecords(ctx context.Context, apiKey string, records []calllog.RawRecord) []calllog.RawRecord {
	var pending []int
	for i, rec := range records {
		if rec.ExternalID() != "" && needsEnhancement(rec) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return records
	}
	c.log.Info("enhancing call records", "total", len(records), "pending", len(pending))

	out := make([]calllog.RawRecord, len(records))
	copy(out, records)

	batchSize := c.cfg.EnhanceBatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	delay := c.cfg.EnhanceBatchDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	for start := 0; start < len(pending); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range pending[start:end] {
			idx := idx
			g.Go(func() error {
				rec := out[idx]
				detail, err := c.FetchCallDetail(gctx, apiKey, rec.ExternalID())
				if err != nil {
					c.log.Warn("call detail lookup failed", "call_id", rec.ExternalID(), "err", err)
					return nil
				}
				out[idx] = mergeDetail(rec, calllog.RawRecord(detail))
				return nil
			})
		}
		_ = g.Wait()

		if end < len(pending) {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(delay):
			}
		}
	}
	return out
}

// mergeDetail copies into base the detail keys for each concern the base
// record lacks. Keys already set on the base are left alone.
func mergeDetail(base, detail calllog.RawRecord) calllog.RawRecord {
	merged := base.Clone()
	for _, concern := range detailConcerns {
		if !concern.missing(base) {
			continue
		}
		for _, key := range concern.keys {
			if _, exists := merged[key]; exists {
				continue
			}
			if v, ok := detail[key]; ok && v != nil {
				merged[key] = v
			}
		}
	}
	return merged
}
