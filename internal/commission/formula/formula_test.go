package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		kind  Kind
		value string
	}{
		{"ratio prefix", "ratio:0.15", KindRatio, "0.15"},
		{"ratio prefix uppercase", "RATIO:0.2", KindRatio, "0.2"},
		{"ratio with spaces", "  ratio: 0.35 ", KindRatio, "0.35"},
		{"raw prefix", "raw:50", KindRaw, "50"},
		{"raw fractional", "raw:12.75", KindRaw, "12.75"},
		{"bare below one is ratio", "0.1", KindRatio, "0.1"},
		{"bare one is raw", "1", KindRaw, "1"},
		{"bare above one is raw", "50", KindRaw, "50"},
		{"bare fractional above one", "2.5", KindRaw, "2.5"},
		{"garbage", "fifteen percent", KindInvalid, "0"},
		{"empty", "", KindInvalid, "0"},
		{"ratio without value", "ratio:", KindInvalid, "0"},
		{"raw garbage value", "raw:abc", KindInvalid, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.raw)
			assert.Equal(t, tt.kind, parsed.Kind)
			if tt.kind != KindInvalid {
				assert.True(t, parsed.Value.Equal(decimal.RequireFromString(tt.value)),
					"value %s != %s", parsed.Value, tt.value)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	amount := decimal.NewFromInt(1000)

	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{"ratio scales the sale amount", "ratio:0.15", "150", true},
		{"raw is a flat payout", "raw:50", "50", true},
		{"bare fraction behaves as ratio", "0.1", "100", true},
		{"bare integer behaves as raw", "50", "50", true},
		{"bare one pays a single unit, not 100 percent", "1", "1", true},
		{"garbage evaluates to zero", "not-a-formula", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(amount, tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", got, tt.expected)
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ratio:0.5"))
	assert.True(t, Valid("raw:100"))
	assert.True(t, Valid("0.25"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("ratio:"))
	assert.False(t, Valid("half"))
}
