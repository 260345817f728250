package calllog

import (
	"context"
	"errors"
	"log/slog"
)

var ErrStoreUnavailable = errors.New("calllog: store unavailable")

// Summary reports the outcome of one upsert batch.
type Summary struct {
	Total    int `json:"total_logs"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}

// Service is the upsert manager: it reconciles normalized records against
// persisted state, keyed by external call id.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

// StoreAll upserts each record independently: one record's failure never
// blocks the others. Records without an external call id are counted as
// errors, not silently dropped. The returned error is non-nil only when the
// store itself is unreachable (every single write failed).
func (s *Service) StoreAll(ctx context.Context, records []CallLog) (Summary, error) {
	sum := Summary{Total: len(records)}
	if s.repo == nil {
		return sum, errors.New("calllog: repository not configured")
	}

	var lastErr error
	attempted := 0

	for _, rec := range records {
		if rec.ExternalCallID == "" {
			s.log.Warn("rejecting call log without external id")
			sum.Errors++
			continue
		}

		attempted++
		_, err := s.repo.GetByExternalID(ctx, rec.ExternalCallID)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := s.repo.Insert(ctx, rec); err != nil {
				s.log.Error("failed to insert call log", "external_call_id", rec.ExternalCallID, "err", err)
				sum.Errors++
				lastErr = err
				continue
			}
			sum.Inserted++
		case err != nil:
			s.log.Error("failed to look up call log", "external_call_id", rec.ExternalCallID, "err", err)
			sum.Errors++
			lastErr = err
		default:
			if err := s.repo.Update(ctx, rec); err != nil {
				s.log.Error("failed to update call log", "external_call_id", rec.ExternalCallID, "err", err)
				sum.Errors++
				lastErr = err
				continue
			}
			sum.Updated++
		}
	}

	// Partial failure is reported through the counters; only a store that
	// rejected every attempted write is treated as unavailable.
	if attempted > 0 && sum.Inserted == 0 && sum.Updated == 0 && lastErr != nil {
		return sum, errors.Join(ErrStoreUnavailable, lastErr)
	}
	return sum, nil
}

// Get returns one persisted record by external call id.
func (s *Service) Get(ctx context.Context, externalCallID string) (CallLog, error) {
	return s.repo.GetByExternalID(ctx, externalCallID)
}

// List returns persisted records for read-only consumers.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]CallLog, error) {
	return s.repo.List(ctx, filter)
}
