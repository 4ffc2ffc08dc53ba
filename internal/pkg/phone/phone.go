// Package phone canonicalizes contact numbers to the international format
// used as the provider username and delivery address.
package phone

import (
	"errors"
	"strings"
)

// DefaultCountryCode is applied to national numbers without a country prefix.
const DefaultCountryCode = "+91"

// ErrInvalid indicates the input cannot be canonicalized to a phone number.
var ErrInvalid = errors.New("phone: invalid number")

// Canonicalize normalizes a raw phone number to +CCXXXXXXXXXX.
//
// Spaces, dashes and parentheses are stripped; a leading "00" is rewritten to
// "+"; a bare 10-digit national number gets the default country code. The
// result is deterministic: equal inputs always produce equal outputs.
func Canonicalize(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))

	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separator, drop
		default:
			return "", ErrInvalid
		}
	}

	num := b.String()
	if strings.HasPrefix(num, "00") {
		num = "+" + num[2:]
	}

	switch {
	case strings.HasPrefix(num, "+"):
		if len(num) < 11 || len(num) > 16 {
			return "", ErrInvalid
		}
		return num, nil
	case len(num) == 10:
		return DefaultCountryCode + num, nil
	case len(num) == 12 && strings.HasPrefix(num, "91"):
		return "+" + num, nil
	default:
		return "", ErrInvalid
	}
}
