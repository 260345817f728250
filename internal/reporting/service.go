package reporting

import (
	"context"
	"errors"
	"strings"

	"leadcenter/internal/calllog"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Lister is the read side of the call-log store. The pipeline is the sole
// writer; reporting only ever lists.
type Lister interface {
	List(ctx context.Context, filter calllog.ListFilter) ([]calllog.CallLog, error)
}

type Service struct {
	logs Lister
}

func NewService(logs Lister) *Service { return &Service{logs: logs} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.logs == nil {
		return CallsSummary{}, errors.New("reporting: call log store not configured")
	}

	rows, err := s.logs.List(ctx, calllog.ListFilter{
		From:      req.Range.From,
		To:        req.Range.To,
		Direction: req.Direction,
	})
	if err != nil {
		return CallsSummary{}, err
	}

	var out CallsSummary
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.RecordingURL != "" {
			out.RecordedCalls++
		}
		if c.LeadID != "" {
			out.LeadLinkedCalls++
		}
		if c.Cost != nil {
			out.TotalCost += *c.Cost
		}
		switch c.Direction {
		case calllog.DirectionInbound:
			out.InboundCalls++
		case calllog.DirectionOutbound:
			out.OutboundCalls++
		}
		switch strings.ToLower(c.SuccessEvaluation) {
		case "":
			out.UnevaluatedCalls++
		case "true", "success", "pass", "yes":
			out.SuccessfulCalls++
		default:
			out.UnsuccessfulCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}

func (s *Service) Outcomes(ctx context.Context, rng TimeRange) (OutcomeBreakdown, error) {
	if rng.From.IsZero() || rng.To.IsZero() || !rng.To.After(rng.From) {
		return OutcomeBreakdown{}, ErrInvalidRequest
	}
	if s.logs == nil {
		return OutcomeBreakdown{}, errors.New("reporting: call log store not configured")
	}

	rows, err := s.logs.List(ctx, calllog.ListFilter{From: rng.From, To: rng.To})
	if err != nil {
		return OutcomeBreakdown{}, err
	}

	out := OutcomeBreakdown{Range: rng, Reasons: map[string]int{}}
	for _, c := range rows {
		reason := c.EndedReason
		if reason == "" {
			reason = "unknown"
		}
		out.Reasons[reason]++
	}
	return out, nil
}
