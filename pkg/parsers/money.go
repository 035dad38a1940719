package parsers

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// 15.000 / 1,500,000: separators delimit three digit groups.
	groupedAmount = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
	// 15000 / 1.5 / 2,25
	decimalAmount = regexp.MustCompile(`^\d+(?:[.,]\d{1,2})?$`)

	groupSeparators = strings.NewReplacer(".", "", ",", "")
	maxAmount       = decimal.NewFromInt(math.MaxInt64)
	moneyPrinter    = message.NewPrinter(language.Vietnamese)
)

// ParseMoney converts operator input such as "15000", "15.000", "15k" or
// "1.5m" into whole đồng. Results are rounded half away from zero. The second
// return value is false for empty, negative, malformed or out of range input.
func ParseMoney(text string) (int64, bool) {
	s := strings.Join(strings.Fields(text), "")
	if s == "" {
		return 0, false
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		multiplier = 1_000
		s = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1_000_000
		s = s[:len(s)-1]
	}

	var body string
	switch {
	case groupedAmount.MatchString(s):
		body = groupSeparators.Replace(s)
	case decimalAmount.MatchString(s):
		body = strings.Replace(s, ",", ".", 1)
	default:
		return 0, false
	}

	amount, err := decimal.NewFromString(body)
	if err != nil {
		return 0, false
	}
	amount = amount.Mul(decimal.NewFromInt(multiplier)).Round(0)
	if amount.IsNegative() || amount.GreaterThan(maxAmount) {
		return 0, false
	}
	return amount.IntPart(), true
}

// FormatMoney renders whole đồng with Vietnamese digit grouping (1.500.000).
func FormatMoney(amount int64) string {
	return moneyPrinter.Sprintf("%d", amount)
}

// DigitsOnly keeps the ASCII decimal digits of text.
func DigitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
