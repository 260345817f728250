package calllog

import (
	"github.com/nyaruka/phonenumbers"
)

// formatPhone canonicalizes a phone number to E.164 when it parses as a valid
// number for the given region. Upstream numbers are untrusted free-form text,
// so anything unparsable or invalid passes through unchanged rather than
// being dropped.
func formatPhone(number, country string) string {
	if number == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(number, country)
	if err != nil {
		return number
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return number
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
