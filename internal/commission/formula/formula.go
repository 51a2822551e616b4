// Package formula implements the commission formula grammar.
//
// A formula is a short string, not an expression language:
//
//	ratio:<f>  -> sale amount * f
//	raw:<f>    -> flat payout of f
//	<f>        -> legacy bare form: f < 1 behaves as ratio, otherwise raw
//
// Anything unparseable evaluates to zero. Sale creation must never fail
// over a misconfigured rule, so bad formulas degrade instead of erroring;
// callers surface them through logs and counters.
package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindRatio   Kind = "ratio"
	KindRaw     Kind = "raw"
	KindInvalid Kind = "invalid"
)

type Formula struct {
	Kind  Kind
	Value decimal.Decimal
}

var one = decimal.NewFromInt(1)

// Parse interprets a stored formula string. Matching is case-insensitive
// and whitespace-tolerant. The bare-number heuristic (< 1 means ratio) is
// inherited billing behavior and must not change: a formula of exactly
// "1" is a flat 1-unit payout, not a 100% ratio.
func Parse(raw string) Formula {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "ratio:"):
		value, err := decimal.NewFromString(strings.TrimSpace(trimmed[len("ratio:"):]))
		if err != nil {
			return Formula{Kind: KindInvalid}
		}
		return Formula{Kind: KindRatio, Value: value}

	case strings.HasPrefix(lower, "raw:"):
		value, err := decimal.NewFromString(strings.TrimSpace(trimmed[len("raw:"):]))
		if err != nil {
			return Formula{Kind: KindInvalid}
		}
		return Formula{Kind: KindRaw, Value: value}

	default:
		value, err := decimal.NewFromString(trimmed)
		if err != nil {
			return Formula{Kind: KindInvalid}
		}
		if value.LessThan(one) {
			return Formula{Kind: KindRatio, Value: value}
		}
		return Formula{Kind: KindRaw, Value: value}
	}
}

// Valid reports whether the string parses under the grammar.
func Valid(raw string) bool {
	return Parse(raw).Kind != KindInvalid
}

// Evaluate computes the commission for a sale amount. The boolean is
// false when the formula did not parse; the amount is zero in that case.
func Evaluate(amount decimal.Decimal, raw string) (decimal.Decimal, bool) {
	parsed := Parse(raw)
	switch parsed.Kind {
	case KindRatio:
		return amount.Mul(parsed.Value), true
	case KindRaw:
		return parsed.Value, true
	default:
		return decimal.Zero, false
	}
}
