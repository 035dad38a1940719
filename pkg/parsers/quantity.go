package parsers

import (
	"math"
	"strconv"
	"strings"
)

// ParseWeightChi reads a weight in chỉ. A comma is accepted as the decimal
// point. Negative, NaN and infinite values are rejected.
func ParseWeightChi(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	s = strings.Replace(s, ",", ".", 1)
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false
	}
	return value, true
}

// ParseQuantity reads a strictly positive item count.
func ParseQuantity(text string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
