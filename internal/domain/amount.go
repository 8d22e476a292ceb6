package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// notANumber is what a non-numeric amount renders as inside a URI.
	notANumber = "NaN"
	// maxExponent bounds e-notation; rendering 1e10000000 would build a
	// ten-million digit string.
	maxExponent = 30
)

var (
	hundred = decimal.NewFromInt(100)

	// numericPrefix mirrors a lenient float parser: leading whitespace, an optional
	// sign, digits with an optional fraction and exponent. Trailing junk is ignored.
	numericPrefix = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Amount is a payment sum in the two renderings the templates use.
type Amount struct {
	value   decimal.Decimal
	valid   bool
	warning *MalformedInputWarning
}

// NormalizeAmount parses raw with either '.' or ',' as decimal separator.
// Unparseable input produces an invalid Amount whose renderings are "NaN".
func NormalizeAmount(raw string) Amount {
	s := strings.Replace(raw, ",", ".", 1)
	sub := numericPrefix.FindStringSubmatch(s)
	if sub == nil {
		return Amount{warning: &MalformedInputWarning{Field: "amount", Reason: fmt.Sprintf("amount %q is not a number", raw)}}
	}
	m := sub[0]
	if exp := sub[2]; exp != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(exp[1:], "+"))
		if err != nil || n > maxExponent || n < -maxExponent {
			return Amount{warning: &MalformedInputWarning{Field: "amount", Reason: fmt.Sprintf("amount %q: exponent out of range", raw)}}
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(m))
	if err != nil {
		return Amount{warning: &MalformedInputWarning{Field: "amount", Reason: fmt.Sprintf("amount %q: %v", raw, err)}}
	}
	a := Amount{value: d, valid: true}
	if strings.TrimSpace(s) != strings.TrimSpace(m) {
		a.warning = &MalformedInputWarning{Field: "amount", Reason: fmt.Sprintf("amount %q has trailing characters", raw)}
	}
	return a
}

// AmountFromFloat builds an Amount from a numeric value.
func AmountFromFloat(f float64) Amount {
	return Amount{value: decimal.NewFromFloat(f), valid: true}
}

// Valid reports whether the amount parsed as a number.
func (a Amount) Valid() bool {
	return a.valid
}

// Display renders the amount with exactly two fractional digits, half-up.
func (a Amount) Display() string {
	if !a.valid {
		return notANumber
	}
	return a.value.Round(2).StringFixed(2)
}

func (a Amount) minor() decimal.Decimal {
	return a.value.Mul(hundred).Round(0)
}

// Minor returns the amount in kopecks, rounded to nearest. It reports false
// for invalid amounts and for sums that do not fit an int64.
func (a Amount) Minor() (int64, bool) {
	if !a.valid {
		return 0, false
	}
	m := a.minor().BigInt()
	if !m.IsInt64() {
		return 0, false
	}
	return m.Int64(), true
}

// MinorString is the minor-unit rendering used by integral-amount templates.
// It is exact for any valid amount.
func (a Amount) MinorString() string {
	if !a.valid {
		return notANumber
	}
	return a.minor().String()
}

// Warnings lists non-fatal parse problems.
func (a Amount) Warnings() []MalformedInputWarning {
	if a.warning == nil {
		return nil
	}
	return []MalformedInputWarning{*a.warning}
}

// AmountInput carries an amount exactly as the caller sent it. In JSON it
// accepts both numbers and strings.
type AmountInput string

// UnmarshalJSON implements json.Unmarshaler.
func (in *AmountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = AmountInput(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*in = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	*in = AmountInput(n.String())
	return nil
}

// Normalize parses the input.
func (in AmountInput) Normalize() Amount {
	return NormalizeAmount(string(in))
}
