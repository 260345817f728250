package calllog

import "time"

// CallLog is the canonical, persisted representation of one upstream call.
//
// Invariant: ExternalCallID is the unique upsert key. Records without it are
// rejected by the store and counted as errors, never silently dropped.
//
// The ingestion pipeline is the sole writer of this table; dashboard and lead
// screens are read-only consumers.
type CallLog struct {
	ExternalCallID string `json:"external_call_id" db:"external_call_id"`

	AssistantID    string `json:"assistant_id,omitempty" db:"assistant_id"`
	OrganizationID string `json:"organization_id,omitempty" db:"organization_id"`
	ConversationID string `json:"conversation_id,omitempty" db:"conversation_id"`

	PhoneNumber       string `json:"phone_number,omitempty" db:"phone_number"`
	CallerPhoneNumber string `json:"caller_phone_number,omitempty" db:"caller_phone_number"`
	CustomerNumber    string `json:"customer_number,omitempty" db:"customer_number"`

	StartTime *time.Time `json:"start_time,omitempty" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`

	// DurationSeconds is never null in the persisted record; unrecoverable
	// durations default to 0. DurationKnown distinguishes a real zero-length
	// call from an unknown one for in-process consumers; it is not persisted
	// because the table schema predates it.
	DurationSeconds int  `json:"duration" db:"duration"`
	DurationKnown   bool `json:"-" db:"-"`

	Status    string `json:"status,omitempty" db:"status"`
	Direction string `json:"direction,omitempty" db:"direction"`
	CallType  string `json:"call_type,omitempty" db:"call_type"`

	Transcript   string `json:"transcript,omitempty" db:"transcript"`
	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`

	Cost *float64 `json:"cost,omitempty" db:"cost"`

	EndedReason       string `json:"ended_reason,omitempty" db:"ended_reason"`
	SuccessEvaluation string `json:"success_evaluation,omitempty" db:"success_evaluation"`

	// LeadID links the call to a known lead when the customer number matches.
	LeadID string `json:"lead_id,omitempty" db:"lead_id"`

	// Metadata is the raw upstream metadata bag, preserved as-is for
	// forward-compatibility and debugging.
	Metadata map[string]any `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)
