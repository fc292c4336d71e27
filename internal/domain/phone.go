package domain

import (
	"fmt"
	"strings"
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// PhoneNumber is a dialable number in E.164 form, e.g. +919876543210.
type PhoneNumber string

// NormalizePhone turns user input into an E.164 number.
//
// Separators (spaces, dashes, dots, parentheses) are dropped. A leading "+"
// keeps the country code the user typed, a leading "00" is read as "+", and
// anything else is treated as a national number and prefixed with
// defaultCountryCode.
func NormalizePhone(raw, defaultCountryCode string) (PhoneNumber, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrPhoneRequired
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, s)

	var digits string
	switch {
	case strings.HasPrefix(s, "+"):
		digits = s[1:]
	case strings.HasPrefix(s, "00"):
		digits = s[2:]
	default:
		cc := strings.TrimPrefix(strings.TrimSpace(defaultCountryCode), "+")
		if cc == "" {
			return "", fmt.Errorf("%w: missing country code", ErrInvalidPhone)
		}
		digits = cc + strings.TrimPrefix(s, "0")
	}

	if !isDigits(digits) {
		return "", fmt.Errorf("%w: only digits are allowed", ErrInvalidPhone)
	}
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", fmt.Errorf("%w: expected %d to %d digits", ErrInvalidPhone, minPhoneDigits, maxPhoneDigits)
	}
	if digits[0] == '0' {
		return "", fmt.Errorf("%w: country code cannot start with 0", ErrInvalidPhone)
	}

	return PhoneNumber("+" + digits), nil
}

// String returns the number with its leading "+".
func (p PhoneNumber) String() string {
	return string(p)
}

// Digits returns the number without the leading "+".
func (p PhoneNumber) Digits() string {
	return strings.TrimPrefix(string(p), "+")
}

// Masked hides everything except the last four digits, for logs.
func (p PhoneNumber) Masked() string {
	d := p.Digits()
	if len(d) <= 4 {
		return strings.Repeat("*", len(d))
	}
	return "+" + strings.Repeat("*", len(d)-4) + d[len(d)-4:]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
