package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Phone formats a phone number to E.164 using region for local numbers.
// Unparseable input is returned trimmed.
func Phone(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Email lowercases and trims an email address
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
