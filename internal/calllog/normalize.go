package calllog

import (
	"strings"
	"time"
)

// Defaults supplies fallback values for fields the upstream omits entirely.
type Defaults struct {
	AssistantID    string
	OrganizationID string

	// Country is the ISO region used for phone number formatting.
	Country string
}

// Normalizer derives canonical call-log fields from raw upstream records.
// It is pure (no I/O) and total: any input shape yields a record, missing
// fields produce defaults, never errors.
type Normalizer struct {
	defaults Defaults
}

func NewNormalizer(d Defaults) *Normalizer {
	if d.Country == "" {
		d.Country = "US"
	}
	return &Normalizer{defaults: d}
}

// Ordered synonym lists per canonical field. First match wins. Supporting a
// newly observed upstream field name means appending one accessor here.
var (
	idAccessors = []accessor{
		field("id"), field("call_id"), field("callId"),
		field("uuid"), field("external_id"), field("externalId"),
		metaField("call_id"),
	}

	assistantAccessors = []accessor{
		field("assistant_id"), field("assistantId"),
		metaField("assistant_id"), metaField("assistantId"),
	}

	organizationAccessors = []accessor{
		field("org_id"), field("orgId"),
		field("organization_id"), field("organizationId"),
	}

	conversationAccessors = []accessor{
		field("conversation_id"), field("conversationId"),
		field("chat_id"), field("chatId"),
		metaField("conversation_id"),
	}

	// customer.number is the most authoritative source per the upstream docs,
	// then metadata synonyms, then flat synonyms.
	customerNumberAccessors = []accessor{
		objectField("customer", "number"),
		metaField("customer_number"), metaField("customerNumber"),
		metaField("customer_phone"),
		field("customer_number"), field("customerNumber"),
		field("customer_phone"), field("customerPhone"),
		field("to"), field("to_number"), field("toNumber"),
		field("recipient"), field("callee"),
	}

	callerNumberAccessors = []accessor{
		field("caller_phone_number"), field("callerPhoneNumber"),
		field("from"), field("from_number"), field("fromNumber"),
		field("caller"), field("caller_number"), field("caller_id"),
		metaField("caller_phone_number"), metaField("from"),
	}

	genericPhoneAccessors = []accessor{
		field("phone_number"), field("phoneNumber"),
		field("phone"), field("number"),
		metaField("phone_number"), metaField("phoneNumber"),
	}

	startTimeAccessors = []accessor{
		field("start_time"), field("startTime"),
		field("started_at"), field("startedAt"),
		field("start"), field("created_at"), field("createdAt"),
	}

	endTimeAccessors = []accessor{
		field("end_time"), field("endTime"),
		field("ended_at"), field("endedAt"),
		field("end"), field("updated_at"), field("updatedAt"),
	}

	statusAccessors = []accessor{
		field("status"), field("call_status"), field("callStatus"),
		field("state"),
	}

	directionAccessors = []accessor{
		field("direction"), field("call_direction"),
		field("type"), metaField("direction"),
	}

	callTypeAccessors = []accessor{
		field("call_type"), field("callType"), field("type"),
	}

	transcriptAccessors = []accessor{
		field("transcript"),
		objectField("artifact", "transcript"),
		metaField("transcript"),
	}

	recordingAccessors = []accessor{
		field("recording_url"), field("recordingUrl"),
		objectField("artifact", "recording_url"),
		objectField("artifact", "recordingUrl"),
		field("recording"), field("stereo_recording_url"),
	}

	endedReasonAccessors = []accessor{
		field("ended_reason"), field("endedReason"),
		field("end_reason"), field("hangup_cause"),
	}

	successEvaluationAccessors = []accessor{
		objectField("analysis", "successEvaluation"),
		objectField("analysis", "success_evaluation"),
		field("success_evaluation"), field("successEvaluation"),
		field("evaluation"), field("outcome"),
	}

	// Direct duration fields, tried before timestamp subtraction.
	durationAccessors = []string{
		"duration", "duration_seconds", "durationSeconds", "seconds",
	}

	// Last-resort duration synonyms, tried after timestamp subtraction.
	durationSynonyms = []string{
		"length", "call_duration", "callDuration", "call_length",
		"talk_time", "talkTime", "elapsed", "duration_secs",
	}

	costAccessors = []string{
		"cost", "price", "total_cost", "totalCost",
	}
)

// durations above this are assumed to be milliseconds, not seconds.
const millisecondThreshold = 100_000

// Normalize derives a canonical CallLog from one raw upstream record.
func (n *Normalizer) Normalize(raw RawRecord) CallLog {
	out := CallLog{
		ExternalCallID:    firstString(raw, idAccessors),
		AssistantID:       firstString(raw, assistantAccessors),
		OrganizationID:    firstString(raw, organizationAccessors),
		ConversationID:    firstString(raw, conversationAccessors),
		Status:            firstString(raw, statusAccessors),
		Transcript:        firstString(raw, transcriptAccessors),
		RecordingURL:      firstString(raw, recordingAccessors),
		EndedReason:       firstString(raw, endedReasonAccessors),
		SuccessEvaluation: firstString(raw, successEvaluationAccessors),
	}

	if out.AssistantID == "" {
		out.AssistantID = n.defaults.AssistantID
	}
	if out.OrganizationID == "" {
		out.OrganizationID = n.defaults.OrganizationID
	}

	out.Direction = normalizeDirection(firstString(raw, directionAccessors))
	out.CallType = firstString(raw, callTypeAccessors)

	out.StartTime = resolveTimestamp(raw, startTimeAccessors)
	out.EndTime = resolveTimestamp(raw, endTimeAccessors)
	out.DurationSeconds, out.DurationKnown = resolveDuration(raw, out.StartTime, out.EndTime)

	n.resolvePhones(raw, &out)

	if c, ok := resolveNumber(raw, costAccessors); ok {
		cost := c
		out.Cost = &cost
	}

	if m := raw.Metadata(); m != nil {
		out.Metadata = map[string]any(m)
	}

	return out
}

// resolvePhones extracts the role-specific and generic phone fields and
// applies the cross-fallback rule: a record carrying any phone-like field
// always ends up with at least one canonical phone field populated.
func (n *Normalizer) resolvePhones(raw RawRecord, out *CallLog) {
	customer := firstString(raw, customerNumberAccessors)
	caller := firstString(raw, callerNumberAccessors)
	generic := firstString(raw, genericPhoneAccessors)

	if customer == "" && caller == "" && generic != "" {
		// Only a generic number: assign it by call direction.
		if out.Direction == DirectionInbound {
			caller = generic
		} else {
			customer = generic
		}
	}
	if generic == "" {
		// Role-specific numbers backfill the generic field.
		switch {
		case customer != "":
			generic = customer
		case caller != "":
			generic = caller
		}
	}

	out.CustomerNumber = formatPhone(customer, n.defaults.Country)
	out.CallerPhoneNumber = formatPhone(caller, n.defaults.Country)
	out.PhoneNumber = formatPhone(generic, n.defaults.Country)
}

// resolveDuration applies the documented priority order: a direct duration
// field (milliseconds detected heuristically), then end-start subtraction,
// then synonym fields, then 0. The persisted schema does not tolerate a null
// duration, so 0 is the floor; the bool reports whether the value is real.
func resolveDuration(raw RawRecord, start, end *time.Time) (int, bool) {
	if v, ok := resolveNumber(raw, durationAccessors); ok {
		return coerceSeconds(v), true
	}
	if start != nil && end != nil && end.After(*start) {
		return int(end.Sub(*start).Seconds()), true
	}
	if v, ok := resolveNumber(raw, durationSynonyms); ok {
		return coerceSeconds(v), true
	}
	return 0, false
}

func coerceSeconds(v float64) int {
	if v < 0 {
		return 0
	}
	if v > millisecondThreshold {
		v = v / 1000
	}
	return int(v)
}

// resolveNumber tries the named fields at top level, then inside metadata.
func resolveNumber(raw RawRecord, names []string) (float64, bool) {
	for _, name := range names {
		if v, ok := numberValue(raw[name]); ok {
			return v, true
		}
	}
	if m := raw.Metadata(); m != nil {
		for _, name := range names {
			if v, ok := numberValue(m[name]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func resolveTimestamp(raw RawRecord, accessors []accessor) *time.Time {
	for _, a := range accessors {
		v, ok := a(raw)
		if !ok {
			continue
		}
		if t, ok := parseTimestamp(v); ok {
			return &t
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(v string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	// Epoch seconds or milliseconds.
	if f, ok := numberValue(v); ok && f > 0 {
		if f > 1e12 {
			return time.UnixMilli(int64(f)).UTC(), true
		}
		return time.Unix(int64(f), 0).UTC(), true
	}
	return time.Time{}, false
}

// normalizeDirection maps upstream direction spellings (including typed call
// kinds like "inboundPhoneCall") onto the two canonical values. Unrecognized
// values pass through lowercased.
func normalizeDirection(v string) string {
	lower := strings.ToLower(strings.TrimSpace(v))
	switch {
	case lower == "":
		return ""
	case strings.Contains(lower, "inbound"):
		return DirectionInbound
	case strings.Contains(lower, "outbound"):
		return DirectionOutbound
	default:
		return lower
	}
}
