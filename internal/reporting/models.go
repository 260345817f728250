package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics for dashboards.

type CallsSummaryRequest struct {
	Range     TimeRange `json:"range"`
	Direction string    `json:"direction,omitempty"`
}

type CallsSummary struct {
	TotalCalls    int `json:"total_calls"`
	InboundCalls  int `json:"inbound_calls"`
	OutboundCalls int `json:"outbound_calls"`

	SuccessfulCalls   int `json:"successful_calls"`
	UnsuccessfulCalls int `json:"unsuccessful_calls"`
	UnevaluatedCalls  int `json:"unevaluated_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	RecordedCalls   int     `json:"recorded_calls"`
	LeadLinkedCalls int     `json:"lead_linked_calls"`
	TotalCost       float64 `json:"total_cost"`
}

// OutcomeBreakdown counts calls per ended reason within a range.

type OutcomeBreakdown struct {
	Range   TimeRange      `json:"range"`
	Reasons map[string]int `json:"reasons"`
}
