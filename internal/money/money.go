// Package money parses and formats the currency strings returned by the price backend.
//
// Prices travel as display text ("$1,299.99") end to end. Every numeric comparison
// in the module goes through Parse so that stripping and validation stay uniform.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tier classifies a discount for display.
type Tier int

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
)

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	default:
		return "none"
	}
}

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Parse extracts the numeric value from price text. Everything except digits and
// the decimal point is discarded and the longest leading decimal number is used,
// so "$1,299.99" is 1299.99 and "1.2.3" is 1.2. The second result is false when
// nothing parses or the value is not positive.
func Parse(text string) (decimal.Decimal, bool) {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	number := leadingNumber(stripped)
	if number == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(number)
	if err != nil || !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}

// leadingNumber returns the longest prefix of s shaped like digits[.digits],
// normalized so decimal.NewFromString accepts it.
func leadingNumber(s string) string {
	seenDot := false
	seenDigit := false
	end := 0
	for i, r := range s {
		if r == '.' {
			if seenDot {
				break
			}
			seenDot = true
			end = i + 1
			continue
		}
		seenDigit = true
		end = i + 1
	}
	if !seenDigit {
		return ""
	}
	number := strings.TrimSuffix(s[:end], ".")
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}
	return number
}

// Less reports whether price text a is strictly lower than b. Invalid values
// never compare as lower.
func Less(a, b string) bool {
	av, ok := Parse(a)
	if !ok {
		return false
	}
	bv, ok := Parse(b)
	if !ok {
		return false
	}
	return av.LessThan(bv)
}

// Format shortens price text for compact columns: values of 1000 and above are
// rounded to whole units, smaller ones to one decimal place with a trailing ".0"
// dropped. Unparsable text is returned unchanged.
func Format(text string) string {
	value, ok := Parse(text)
	if !ok {
		return text
	}
	if value.GreaterThanOrEqual(thousand) {
		return "$" + value.Round(0).String()
	}
	rounded := value.StringFixed(1)
	return "$" + strings.TrimSuffix(rounded, ".0")
}

// DiscountPercent returns how far current sits below original, rounded to a
// whole percent. It is zero when either price is invalid or there is no discount.
func DiscountPercent(current, original string) int {
	cur, ok := Parse(current)
	if !ok {
		return 0
	}
	orig, ok := Parse(original)
	if !ok || orig.LessThanOrEqual(cur) {
		return 0
	}
	return int(orig.Sub(cur).Div(orig).Mul(hundred).Round(0).IntPart())
}

// TierFor maps a discount percentage to its display tier.
func TierFor(percent int) Tier {
	switch {
	case percent >= 55:
		return TierGold
	case percent >= 40:
		return TierSilver
	case percent >= 20:
		return TierBronze
	default:
		return TierNone
	}
}
