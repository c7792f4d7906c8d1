package momo

import (
	"errors"
	"strings"
)

var ErrInvalidMSISDN = errors.New("invalid mobile number")

const countryCode = "256"

// NormalizeMSISDN validates a local mobile number and normalizes it to the
// international form the provider expects (256XXXXXXXXX). Accepted inputs:
//
//	07XXXXXXXX            local format
//	7XXXXXXXX             local without leading zero
//	2567XXXXXXXX          already international
//	+2567XXXXXXXX         international with plus
func NormalizeMSISDN(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '+':
			// separators stripped
		default:
			return "", ErrInvalidMSISDN
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "07"):
		digits = countryCode + digits[1:]
	case len(digits) == 9 && strings.HasPrefix(digits, "7"):
		digits = countryCode + digits
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode+"7"):
		// already normalized
	default:
		return "", ErrInvalidMSISDN
	}
	return digits, nil
}

// ValidMSISDN reports whether raw normalizes cleanly; used by the request
// validator tag.
func ValidMSISDN(raw string) bool {
	_, err := NormalizeMSISDN(raw)
	return err == nil
}
