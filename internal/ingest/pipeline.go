package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadcenter/internal/calllog"
	"leadcenter/internal/leads"
	"leadcenter/internal/secrets"
	"leadcenter/internal/voiceai"
)

// Window is the date range one synchronization run covers.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DefaultWindow covers the last 30 days up to now.
func DefaultWindow() Window {
	now := time.Now().UTC()
	return Window{Start: now.AddDate(0, 0, -30), End: now}
}

// Pipeline pulls call logs from the upstream provider, normalizes them, links
// leads, and upserts the results. One Run is one synchronization pass.
type Pipeline struct {
	resolver   *secrets.Resolver
	client     *voiceai.Client
	normalizer *calllog.Normalizer
	matcher    *leads.Matcher
	store      *calllog.Service
	recorder   Recorder
	log        *slog.Logger
}

func NewPipeline(
	resolver *secrets.Resolver,
	client *voiceai.Client,
	normalizer *calllog.Normalizer,
	matcher *leads.Matcher,
	store *calllog.Service,
	recorder Recorder,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		resolver:   resolver,
		client:     client,
		normalizer: normalizer,
		matcher:    matcher,
		store:      store,
		recorder:   recorder,
		log:        log,
	}
}

// Run executes one synchronization pass over the window. Cancelling ctx
// aborts upstream fetching and enhancement; writes already in flight finish
// so the store never ends up half-written for a record.
func (p *Pipeline) Run(ctx context.Context, window Window) (calllog.Summary, error) {
	started := time.Now().UTC()
	summary, err := p.run(ctx, window)
	p.record(ctx, window, started, summary, err)
	return summary, err
}

func (p *Pipeline) run(ctx context.Context, window Window) (calllog.Summary, error) {
	apiKey, err := p.resolver.APIKey(ctx)
	if err != nil {
		return calllog.Summary{}, fmt.Errorf("resolve api key: %w", err)
	}

	payload, err := p.client.FetchRawPayload(ctx, apiKey, window.Start, window.End)
	if err != nil {
		return calllog.Summary{}, fmt.Errorf("fetch call logs: %w", err)
	}

	records := voiceai.ExtractRecords(payload.Body)
	if len(records) == 0 {
		p.log.Info("no call records in window", "endpoint", payload.Endpoint)
		return calllog.Summary{}, nil
	}

	// Only the v2 listing is summary-shaped enough to warrant per-call
	// detail lookups; legacy endpoints already return everything they have.
	if payload.FromV2 {
		records = p.client.EnhanceRecords(ctx, apiKey, records)
	}
	if ctx.Err() != nil {
		return calllog.Summary{}, ctx.Err()
	}

	normalized := make([]calllog.CallLog, 0, len(records))
	for _, rec := range records {
		normalized = append(normalized, p.normalizer.Normalize(rec))
	}
	if p.matcher != nil {
		p.matcher.Attach(ctx, normalized)
	}

	// Upserts run detached from the request context so a client disconnect
	// mid-batch cannot leave the window partially synced.
	summary, err := p.store.StoreAll(context.WithoutCancel(ctx), normalized)
	if err != nil {
		return summary, err
	}
	p.log.Info("synchronization pass complete",
		"endpoint", payload.Endpoint,
		"total", summary.Total,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"errors", summary.Errors,
	)
	return summary, nil
}

// RunOne fetches a single call by id and upserts it.
func (p *Pipeline) RunOne(ctx context.Context, callID string) (calllog.Summary, error) {
	apiKey, err := p.resolver.APIKey(ctx)
	if err != nil {
		return calllog.Summary{}, fmt.Errorf("resolve api key: %w", err)
	}

	detail, err := p.client.FetchCallDetail(ctx, apiKey, callID)
	if err != nil {
		return calllog.Summary{}, fmt.Errorf("fetch call %s: %w", callID, err)
	}

	record := p.normalizer.Normalize(calllog.RawRecord(detail))
	if record.ExternalCallID == "" {
		record.ExternalCallID = callID
	}
	normalized := []calllog.CallLog{record}
	if p.matcher != nil {
		p.matcher.Attach(ctx, normalized)
	}
	return p.store.StoreAll(context.WithoutCancel(ctx), normalized)
}

// record writes run history best-effort; a recorder failure never fails the
// run it describes.
func (p *Pipeline) record(ctx context.Context, window Window, started time.Time, summary calllog.Summary, runErr error) {
	if p.recorder == nil {
		return
	}
	run := Run{
		Window:    window,
		StartedAt: started,
		EndedAt:   time.Now().UTC(),
		Summary:   summary,
		Status:    StatusSucceeded,
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	}
	if runErr != nil && errors.Is(runErr, context.Canceled) {
		run.Status = StatusCanceled
	}
	if err := p.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		p.log.Warn("failed to record synchronization run", "err", err)
	}
}
