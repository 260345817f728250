package reporting

import (
	"context"
	"testing"
	"time"

	"leadcenter/internal/calllog"
)

func seedLogs(t *testing.T, repo *calllog.MemoryRepo, logs []calllog.CallLog) {
	t.Helper()
	for _, l := range logs {
		if err := repo.Insert(context.Background(), l); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func ts(t *testing.T, v string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", v, err)
	}
	return &parsed
}

func TestCallsSummary_Aggregates(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	cost := 0.25
	seedLogs(t, repo, []calllog.CallLog{
		{ExternalCallID: "c1", Direction: "inbound", DurationSeconds: 30, SuccessEvaluation: "true", RecordingURL: "https://r/1", StartTime: ts(t, "2024-02-01T10:00:00Z")},
		{ExternalCallID: "c2", Direction: "outbound", DurationSeconds: 90, SuccessEvaluation: "false", LeadID: "lead-1", Cost: &cost, StartTime: ts(t, "2024-02-01T11:00:00Z")},
		{ExternalCallID: "c3", Direction: "outbound", DurationSeconds: 60, StartTime: ts(t, "2024-02-01T12:00:00Z")},
	})
	svc := NewService(repo)

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		Range: TimeRange{From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 3 || out.InboundCalls != 1 || out.OutboundCalls != 2 {
		t.Fatalf("unexpected direction counts: %+v", out)
	}
	if out.SuccessfulCalls != 1 || out.UnsuccessfulCalls != 1 || out.UnevaluatedCalls != 1 {
		t.Fatalf("unexpected evaluation counts: %+v", out)
	}
	if out.TotalDurationSeconds != 180 || out.AverageDurationSeconds != 60 {
		t.Fatalf("unexpected durations: %+v", out)
	}
	if out.RecordedCalls != 1 || out.LeadLinkedCalls != 1 {
		t.Fatalf("unexpected recorded/lead counts: %+v", out)
	}
	if out.TotalCost != 0.25 {
		t.Fatalf("unexpected cost: %+v", out)
	}
}

func TestCallsSummary_RangeFiltersRows(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	seedLogs(t, repo, []calllog.CallLog{
		{ExternalCallID: "in-range", StartTime: ts(t, "2024-02-01T10:00:00Z")},
		{ExternalCallID: "too-old", StartTime: ts(t, "2023-01-01T10:00:00Z")},
	})
	svc := NewService(repo)

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		Range: TimeRange{From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 1 {
		t.Fatalf("expected 1 call in range, got %d", out.TotalCalls)
	}
}

func TestCallsSummary_InvalidRangeRejected(t *testing.T) {
	svc := NewService(calllog.NewMemoryRepo())
	_, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{})
	if err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestOutcomes_CountsByEndedReason(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	seedLogs(t, repo, []calllog.CallLog{
		{ExternalCallID: "c1", EndedReason: "customer-ended-call", StartTime: ts(t, "2024-02-01T10:00:00Z")},
		{ExternalCallID: "c2", EndedReason: "customer-ended-call", StartTime: ts(t, "2024-02-01T11:00:00Z")},
		{ExternalCallID: "c3", StartTime: ts(t, "2024-02-01T12:00:00Z")},
	})
	svc := NewService(repo)

	out, err := svc.Outcomes(context.Background(), TimeRange{
		From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Reasons["customer-ended-call"] != 2 || out.Reasons["unknown"] != 1 {
		t.Fatalf("unexpected breakdown: %+v", out.Reasons)
	}
}
