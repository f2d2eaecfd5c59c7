// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// The exact binary value is rounded and exact ties go to the even cent, so
// 1.005 (stored just below the midpoint) gives 1.00 and 0.125 gives 0.12.
func Round(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.RequireFromString(strconv.FormatFloat(val, 'f', constants.DecimalPlaces, 64)).InexactFloat64()
}

// MinInt returns the minimum of two int values
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// FormatFloatLiteral renders a value the way a float literal is echoed back
// to a person: always with a fractional part (1500000.0, 0.0), and in
// exponent form below 1e-4 or from 1e16 up.
func FormatFloatLiteral(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
	if abs := math.Abs(val); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(val, 'e', -1, 64)
	}
	s := strconv.FormatFloat(val, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatNumber renders a value the shortest way that round-trips, without
// an exponent, e.g. 500000000 or 0.05.
func FormatNumber(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
