package phone

import "strings"

// Brazilian mobile numbering: canonical form is 55 + 2-digit area code +
// 9-digit subscriber number (13 digits total). Legacy 8-digit subscriber
// numbers gain the mobile "9" prefix; numbers without an area code are
// assumed to be from Sao Paulo (11).
const (
	countryCode     = "55"
	defaultAreaCode = "11"
)

// Normalize converts a raw phone string into the canonical 55-prefixed form.
// An input with no digits at all is returned unchanged (fail-open), so bad
// records surface downstream instead of silently becoming empty.
func Normalize(raw string) string {
	digits := stripNonDigits(raw)
	if digits == "" {
		return raw
	}

	// Longer, more specific shapes are matched first. Order matters.
	switch {
	case len(digits) == 13 && strings.HasPrefix(digits, countryCode):
		return digits
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
		// 55 + area code + legacy 8-digit number: insert the mobile 9.
		return digits[:4] + "9" + digits[4:]
	case len(digits) == 11:
		return countryCode + digits
	case len(digits) == 10:
		// area code + legacy 8-digit number.
		return countryCode + digits[:2] + "9" + digits[2:]
	case len(digits) == 9:
		return countryCode + defaultAreaCode + digits
	case len(digits) == 8:
		return countryCode + defaultAreaCode + "9" + digits
	case len(digits) > 13:
		trimmed := strings.TrimLeft(digits, "0")
		if strings.HasPrefix(trimmed, countryCode) {
			return trimmed
		}
		return countryCode + trimmed
	}

	return digits
}

func stripNonDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
