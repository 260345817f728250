package leads

import (
	"context"
	"errors"
	"log/slog"

	"leadcenter/internal/calllog"
)

// Matcher links normalized call records to known leads by customer number.
// Matching is best-effort: a miss or a repository failure leaves the record's
// LeadID empty and never fails the batch.
type Matcher struct {
	repo Repository
	log  *slog.Logger
}

func NewMatcher(repo Repository, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{repo: repo, log: log}
}

// Attach sets LeadID on every record whose customer number matches a lead.
// Lookups within one batch are cached since campaign runs produce many calls
// to the same number.
func (m *Matcher) Attach(ctx context.Context, records []calllog.CallLog) {
	if m.repo == nil {
		return
	}

	cache := make(map[string]string)
	matched := 0

	for i := range records {
		phone := records[i].CustomerNumber
		if phone == "" || records[i].LeadID != "" {
			continue
		}

		if id, ok := cache[phone]; ok {
			if id != "" {
				records[i].LeadID = id
				matched++
			}
			continue
		}

		lead, err := m.repo.GetByPhone(ctx, phone)
		switch {
		case errors.Is(err, ErrNotFound):
			cache[phone] = ""
		case err != nil:
			m.log.Warn("lead lookup failed", "phone", phone, "err", err)
			cache[phone] = ""
		default:
			cache[phone] = lead.ID
			records[i].LeadID = lead.ID
			matched++
		}
	}

	if matched > 0 {
		m.log.Info("linked call logs to leads", "matched", matched, "total", len(records))
	}
}
