// Package model defines shared data types used across the market maker.
//
// Conventions:
//   - Prices: integer cents (0-100 = $0.00-$1.00)
//   - Probabilities: float64 in [0, 1]
//   - Timestamps: time.Time in UTC
//   - Strikes: decimal.Decimal, converted to float64 only for pricing
package model
