package model

import "math"

// Monetary values are carried as integer cents internally and only converted
// to 2-decimal floats at API boundaries.

// Cents converts a currency amount to integer cents.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Amount converts integer cents back to a currency amount.
func Amount(cents int64) float64 {
	return math.Round(float64(cents)) / 100
}
