package domain

import (
	"fmt"
	"strings"
)

// AccountKind tells templates which URI shape to produce for an account.
type AccountKind string

const (
	PhoneAccount AccountKind = "phone"
	CardAccount  AccountKind = "card"
)

// cardMinDigits is the length from which an identifier is treated as a card number.
const cardMinDigits = 16

// AccountIdentifier is a recipient account reduced to its canonical digit string.
type AccountIdentifier struct {
	Digits string      `json:"digits"`
	Kind   AccountKind `json:"kind"`
}

// Normalize strips everything except digits, rewrites the domestic 8-prefix of an
// 11-digit phone to 7 and classifies the result. It never fails: garbage input
// yields a short or odd digit string that templates emit as-is.
func Normalize(raw string) AccountIdentifier {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '8' {
		digits = "7" + digits[1:]
	}

	kind := PhoneAccount
	if len(digits) >= cardMinDigits {
		kind = CardAccount
	}
	return AccountIdentifier{Digits: digits, Kind: kind}
}

// IsCard reports whether the identifier uses card-targeted templates.
func (a AccountIdentifier) IsCard() bool {
	return a.Kind == CardAccount
}

// IsMobile reports whether the identifier looks like a +7 mobile number.
func (a AccountIdentifier) IsMobile() bool {
	return a.Kind == PhoneAccount && len(a.Digits) == 11 && strings.HasPrefix(a.Digits, "79")
}

// Warnings lists non-fatal problems with the identifier.
func (a AccountIdentifier) Warnings() []MalformedInputWarning {
	switch {
	case a.Digits == "":
		return []MalformedInputWarning{{Field: "account", Reason: "no digits in account"}}
	case a.Kind == CardAccount && len(a.Digits) > 19:
		return []MalformedInputWarning{{Field: "account", Reason: fmt.Sprintf("card number has %d digits", len(a.Digits))}}
	case a.Kind == PhoneAccount && len(a.Digits) != 11:
		return []MalformedInputWarning{{Field: "account", Reason: fmt.Sprintf("phone number has %d digits, want 11", len(a.Digits))}}
	case a.Kind == PhoneAccount && !a.IsMobile():
		return []MalformedInputWarning{{Field: "account", Reason: "phone number is not a +7 mobile number"}}
	}
	return nil
}

func (a AccountIdentifier) String() string {
	return a.Digits
}
