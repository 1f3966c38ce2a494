package notify

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minRecipientDigits = 8
	maxRecipientDigits = 15 // E.164
)

// ErrInvalidRecipient is returned when a recipient handle is not a phone
// number in international format.
var ErrInvalidRecipient = errors.New("invalid recipient")

// NormalizeRecipient turns a phone-number-like handle into "+<digits>".
// Spaces, dashes, dots, parentheses and a single leading "+" are accepted;
// anything else is rejected.
func NormalizeRecipient(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return "", fmt.Errorf("%w: unexpected character %q in %q", ErrInvalidRecipient, r, raw)
		}
	}

	digits := b.String()
	if len(digits) < minRecipientDigits || len(digits) > maxRecipientDigits {
		return "", fmt.Errorf(
			"%w: %q has %d digits, want %d-%d",
			ErrInvalidRecipient, raw, len(digits), minRecipientDigits, maxRecipientDigits,
		)
	}

	return "+" + digits, nil
}

// RecipientDigits returns the recipient without the leading "+", the form
// most messaging APIs expect in their "to" field.
func RecipientDigits(recipient string) string {
	return strings.TrimPrefix(recipient, "+")
}
