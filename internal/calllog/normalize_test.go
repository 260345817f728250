package calllog

import (
	"testing"
	"time"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(Defaults{AssistantID: "asst-default", OrganizationID: "org-default", Country: "US"})
}

func TestNormalize_DurationFromStringNumeral(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c1", "duration": "125", "direction": "outbound", "to": "+15551234"})

	if out.DurationSeconds != 125 {
		t.Fatalf("expected duration 125, got %d", out.DurationSeconds)
	}
	if !out.DurationKnown {
		t.Fatalf("expected duration to be known")
	}
	if out.CustomerNumber != "+15551234" {
		t.Fatalf("expected customer number +15551234, got %q", out.CustomerNumber)
	}
}

func TestNormalize_DurationFromTimestamps(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{
		"id":         "c2",
		"start_time": "2024-01-01T00:00:00Z",
		"end_time":   "2024-01-01T00:02:30Z",
	})

	if out.DurationSeconds != 150 {
		t.Fatalf("expected duration 150, got %d", out.DurationSeconds)
	}
	if out.StartTime == nil || out.EndTime == nil {
		t.Fatalf("expected both timestamps populated")
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !out.StartTime.Equal(want) {
		t.Fatalf("unexpected start time %s", out.StartTime)
	}
}

func TestNormalize_UnparsableDurationDefaultsToZero(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c3", "duration": "not-a-number"})

	if out.DurationSeconds != 0 {
		t.Fatalf("expected duration 0, got %d", out.DurationSeconds)
	}
	if out.DurationKnown {
		t.Fatalf("expected duration unknown")
	}
}

func TestNormalize_MillisecondDurationIsScaled(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c4", "duration": float64(125000)})

	if out.DurationSeconds != 125 {
		t.Fatalf("expected 125s from 125000ms, got %d", out.DurationSeconds)
	}
}

func TestNormalize_DurationSynonymScan(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c5", "length": "42"})

	if out.DurationSeconds != 42 {
		t.Fatalf("expected duration 42 from length synonym, got %d", out.DurationSeconds)
	}
}

func TestNormalize_GenericPhoneAssignedByDirection(t *testing.T) {
	n := newTestNormalizer()

	inbound := n.Normalize(RawRecord{"id": "c6", "direction": "inbound", "phone_number": "+15550001"})
	if inbound.CallerPhoneNumber != "+15550001" {
		t.Fatalf("inbound: expected caller populated, got %q", inbound.CallerPhoneNumber)
	}

	outbound := n.Normalize(RawRecord{"id": "c7", "direction": "outbound", "phone": "+15550002"})
	if outbound.CustomerNumber != "+15550002" {
		t.Fatalf("outbound: expected customer populated, got %q", outbound.CustomerNumber)
	}
}

func TestNormalize_RoleSpecificBackfillsGeneric(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c8", "direction": "outbound", "recipient": "+15550003"})

	if out.PhoneNumber != "+15550003" {
		t.Fatalf("expected generic phone backfilled, got %q", out.PhoneNumber)
	}
}

func TestNormalize_NestedCustomerObjectWinsOverFlatSynonyms(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{
		"id":       "c9",
		"customer": map[string]any{"number": "+15550004"},
		"to":       "+15559999",
	})

	if out.CustomerNumber != "+15550004" {
		t.Fatalf("expected nested customer.number to win, got %q", out.CustomerNumber)
	}
}

func TestNormalize_MetadataNestedCustomerNumber(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{
		"id":       "c10",
		"metadata": map[string]any{"customer_number": "+15550005"},
	})

	if out.CustomerNumber != "+15550005" {
		t.Fatalf("expected metadata customer number, got %q", out.CustomerNumber)
	}
}

func TestNormalize_NoPhoneFieldsLeavesAllEmpty(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c11"})

	if out.PhoneNumber != "" || out.CallerPhoneNumber != "" || out.CustomerNumber != "" {
		t.Fatalf("expected all phone fields empty, got %+v", out)
	}
	if out.DurationSeconds != 0 {
		t.Fatalf("expected duration 0, got %d", out.DurationSeconds)
	}
}

func TestNormalize_DefaultsApplied(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c12"})

	if out.AssistantID != "asst-default" {
		t.Fatalf("expected assistant default, got %q", out.AssistantID)
	}
	if out.OrganizationID != "org-default" {
		t.Fatalf("expected org default, got %q", out.OrganizationID)
	}
}

func TestNormalize_DirectionFromTypedCallKind(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"id": "c13", "type": "inboundPhoneCall"})

	if out.Direction != DirectionInbound {
		t.Fatalf("expected inbound, got %q", out.Direction)
	}
	if out.CallType != "inboundPhoneCall" {
		t.Fatalf("expected call type passthrough, got %q", out.CallType)
	}
}

func TestNormalize_SuccessEvaluationFromAnalysisObject(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{
		"id":       "c14",
		"analysis": map[string]any{"successEvaluation": "true"},
	})

	if out.SuccessEvaluation != "true" {
		t.Fatalf("expected success evaluation true, got %q", out.SuccessEvaluation)
	}
}

func TestNormalize_MetadataPreserved(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{
		"id":       "c15",
		"metadata": map[string]any{"campaign": "spring", "batch": float64(3)},
	})

	if out.Metadata == nil || out.Metadata["campaign"] != "spring" {
		t.Fatalf("expected metadata preserved, got %+v", out.Metadata)
	}
}

func TestNormalize_MissingIDYieldsEmptyExternalID(t *testing.T) {
	n := newTestNormalizer()
	out := n.Normalize(RawRecord{"duration": "10"})

	if out.ExternalCallID != "" {
		t.Fatalf("expected empty external id, got %q", out.ExternalCallID)
	}
}

func TestFormatPhone_ValidNumberBecomesE164(t *testing.T) {
	got := formatPhone("(212) 555-0123", "US")
	if got != "+12125550123" {
		t.Fatalf("expected +12125550123, got %q", got)
	}
}

func TestFormatPhone_InvalidNumberPassesThrough(t *testing.T) {
	got := formatPhone("+15551234", "US")
	if got != "+15551234" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
