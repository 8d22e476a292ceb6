package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantDisplay  string
		wantMinor    string
		wantValid    bool
		wantWarnings int
	}{
		{name: "integer", raw: "1107", wantDisplay: "1107.00", wantMinor: "110700", wantValid: true},
		{name: "comma separator", raw: "1107,00", wantDisplay: "1107.00", wantMinor: "110700", wantValid: true},
		{name: "dot separator", raw: "1107.5", wantDisplay: "1107.50", wantMinor: "110750", wantValid: true},
		{name: "rounds half up", raw: "10.005", wantDisplay: "10.01", wantMinor: "1001", wantValid: true},
		{name: "float artefact", raw: "0.1", wantDisplay: "0.10", wantMinor: "10", wantValid: true},
		{name: "leading space", raw: "  42", wantDisplay: "42.00", wantMinor: "4200", wantValid: true},
		{name: "exponent", raw: "1e3", wantDisplay: "1000.00", wantMinor: "100000", wantValid: true},
		{name: "trailing junk", raw: "150rub", wantDisplay: "150.00", wantMinor: "15000", wantValid: true, wantWarnings: 1},
		{name: "not a number", raw: "abc", wantDisplay: "NaN", wantMinor: "NaN", wantWarnings: 1},
		{name: "empty", raw: "", wantDisplay: "NaN", wantMinor: "NaN", wantWarnings: 1},
		{name: "beyond int64 kopecks", raw: "100000000000000000", wantDisplay: "100000000000000000.00", wantMinor: "10000000000000000000", wantValid: true},
		{name: "one kopeck past int64", raw: "92233720368547758.08", wantDisplay: "92233720368547758.08", wantMinor: "9223372036854775808", wantValid: true},
		{name: "largest exponent", raw: "1e30", wantDisplay: "1" + strings.Repeat("0", 30) + ".00", wantMinor: "1" + strings.Repeat("0", 32), wantValid: true},
		{name: "exponent too large", raw: "1e31", wantDisplay: "NaN", wantMinor: "NaN", wantWarnings: 1},
		{name: "huge exponent", raw: "1e10000000", wantDisplay: "NaN", wantMinor: "NaN", wantWarnings: 1},
		{name: "huge negative exponent", raw: "1e-10000000", wantDisplay: "NaN", wantMinor: "NaN", wantWarnings: 1},
		{name: "exponent overflows int", raw: "1e99999999999999999999", wantDisplay: "NaN", wantMinor: "NaN", wantWarnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmount(tt.raw)
			assert.Equal(t, tt.wantValid, got.Valid())
			assert.Equal(t, tt.wantDisplay, got.Display())
			assert.Equal(t, tt.wantMinor, got.MinorString())
			assert.Len(t, got.Warnings(), tt.wantWarnings)
		})
	}
}

func TestAmount_Minor(t *testing.T) {
	m, ok := AmountFromFloat(1107).Minor()
	require.True(t, ok)
	assert.Equal(t, int64(110700), m)

	_, ok = NormalizeAmount("n/a").Minor()
	assert.False(t, ok)

	m, ok = NormalizeAmount("92233720368547758.07").Minor()
	require.True(t, ok)
	assert.Equal(t, int64(9223372036854775807), m)

	_, ok = NormalizeAmount("92233720368547758.08").Minor()
	assert.False(t, ok, "sums past int64 are not wrapped")
}

func TestAmountInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    AmountInput
		wantErr bool
	}{
		{name: "number", body: `{"amount": 1107}`, want: "1107"},
		{name: "fractional number", body: `{"amount": 1107.5}`, want: "1107.5"},
		{name: "string with comma", body: `{"amount": "1107,00"}`, want: "1107,00"},
		{name: "null", body: `{"amount": null}`, want: ""},
		{name: "missing", body: `{}`, want: ""},
		{name: "object", body: `{"amount": {"value": 1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				Amount AmountInput `json:"amount"`
			}
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Amount)
		})
	}

	var both [2]AmountInput
	require.NoError(t, json.Unmarshal([]byte(`[1107, "1107,00"]`), &both))
	assert.Equal(t, both[0].Normalize().Display(), both[1].Normalize().Display())
}
