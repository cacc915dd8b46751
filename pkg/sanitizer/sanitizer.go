package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reCollapseSpaces = regexp.MustCompile(`\s+`)

	// Digits, spaces, hyphens, parentheses, dots and a leading plus.
	reLoosePhone = regexp.MustCompile(`^[+]?[\d\s\-().]{7,15}$`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func collapseSpaces(s string) string {
	return reCollapseSpaces.ReplaceAllString(s, " ")
}

// SanitizeName trims and collapses whitespace in a requester name without
// altering its casing.
func SanitizeName(input string) string {
	p := Pipeline{trim, collapseSpaces}
	return p.Apply(input)
}

// SanitizeEmail case-normalizes an email address. Emails are compared and
// indexed lower-cased.
func SanitizeEmail(input string) string {
	p := Pipeline{trim, strings.ToLower}
	return p.Apply(input)
}

// SanitizeType trims a booking type label.
func SanitizeType(input string) string {
	return trim(input)
}

// SanitizeNotes trims free-form notes.
func SanitizeNotes(input string) string {
	return trim(input)
}

// SanitizePhone normalizes a loosely formatted phone string to E.164 when it
// parses as an international number. Numbers without a country prefix are
// returned trimmed as-is; the validator decides whether the loose form is
// acceptable.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || !reLoosePhone.MatchString(phone) {
		return phone
	}

	if strings.HasPrefix(phone, "+") {
		parsed, err := phonenumbers.Parse(phone, "")
		if err == nil && phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}
