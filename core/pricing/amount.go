// Package pricing interprets the price display text the analysis backend
// returns for each tier. The backend speaks in free text ("$29/month",
// "Free", "€1.299,00 per year"); this package recovers an exact decimal
// amount and billing period where the text allows it.
package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Period is the billing period of an amount
type Period string

const (
	PeriodUnknown Period = ""
	PeriodOnce    Period = "once"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
)

// Amount is a parsed price
type Amount struct {
	Value    decimal.Decimal
	Currency string
	Period   Period
	PerUser  bool
}

var (
	twelve = decimal.NewFromInt(12)

	numberPattern = regexp.MustCompile(`\d[\d.,]*`)

	currencySymbols = [][2]string{
		{"€", "EUR"},
		{"£", "GBP"},
		{"¥", "JPY"},
		{"₩", "KRW"},
		{"$", "USD"},
	}

	currencyCodes = []string{"USD", "EUR", "GBP", "JPY", "CNY", "KRW", "CAD", "AUD"}

	freeWords = []string{"free", "no cost", "no charge"}
)

// ParseAmount extracts the first price in text. It reports false for text
// with no recognisable amount, such as "Contact sales".
func ParseAmount(text string) (Amount, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Amount{}, false
	}
	lower := strings.ToLower(text)

	raw := numberPattern.FindString(text)
	if raw == "" || strings.HasPrefix(lower, "free") {
		if isFree(lower) {
			return Amount{Value: decimal.Zero, Period: PeriodMonth}, true
		}
		return Amount{}, false
	}

	value, err := decimal.NewFromString(normalizeNumber(raw))
	if err != nil {
		return Amount{}, false
	}
	if multiplier := suffixMultiplier(text, raw); !multiplier.IsZero() {
		value = value.Mul(multiplier)
	}

	return Amount{
		Value:    value,
		Currency: detectCurrency(text),
		Period:   detectPeriod(lower),
		PerUser:  detectPerUser(lower),
	}, true
}

// Monthly returns the amount normalized to one month. One-off and
// unknown periods are returned unchanged.
func (a Amount) Monthly() decimal.Decimal {
	if a.Period == PeriodYear {
		return a.Value.Div(twelve).Round(2)
	}
	return a.Value
}

// IsFree reports whether the amount is zero
func (a Amount) IsFree() bool {
	return a.Value.IsZero()
}

// String renders the amount the way it would appear on a pricing page
func (a Amount) String() string {
	var b strings.Builder
	if a.Currency != "" {
		b.WriteString(a.Currency)
		b.WriteByte(' ')
	}
	b.WriteString(a.Value.StringFixed(2))
	if a.PerUser {
		b.WriteString("/user")
	}
	switch a.Period {
	case PeriodMonth:
		b.WriteString("/month")
	case PeriodYear:
		b.WriteString("/year")
	}
	return b.String()
}

func isFree(lower string) bool {
	for _, w := range freeWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// normalizeNumber turns "1,299.00" and "1.299,00" into "1299.00"
func normalizeNumber(raw string) string {
	raw = strings.TrimRight(raw, ".,")
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		// A single comma followed by exactly two digits is a decimal comma.
		if strings.Count(raw, ",") == 1 && len(raw)-lastComma-1 == 2 {
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case strings.Count(raw, ".") > 1:
		raw = strings.ReplaceAll(raw, ".", "")
	}
	return raw
}

// suffixMultiplier handles "$1.5k" style amounts
func suffixMultiplier(text, raw string) decimal.Decimal {
	idx := strings.Index(text, raw)
	rest := text[idx+len(raw):]
	if rest == "" {
		return decimal.Zero
	}
	switch rest[0] {
	case 'k', 'K':
		return decimal.NewFromInt(1000)
	case 'm', 'M':
		// "$5/mo" and "$5 month" never hit this; only a glued M does.
		if len(rest) == 1 || !isLetter(rest[1]) {
			return decimal.NewFromInt(1000000)
		}
	}
	return decimal.Zero
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func detectCurrency(text string) string {
	upper := strings.ToUpper(text)
	for _, code := range currencyCodes {
		if strings.Contains(upper, code) {
			return code
		}
	}
	for _, sc := range currencySymbols {
		if strings.Contains(text, sc[0]) {
			return sc[1]
		}
	}
	return ""
}

func detectPeriod(lower string) Period {
	switch {
	case containsAny(lower, "/yr", "/year", "per year", "annual", "yearly", "a year"):
		return PeriodYear
	case containsAny(lower, "/mo", "per month", "monthly", "a month", "month"):
		return PeriodMonth
	case containsAny(lower, "one-time", "one time", "once", "lifetime"):
		return PeriodOnce
	default:
		return PeriodUnknown
	}
}

func detectPerUser(lower string) bool {
	return containsAny(lower, "/user", "per user", "per seat", "/seat", "per member")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
