// Package pricing computes the fair probability that a binary market settles YES.
package pricing

import (
	"math"
	"time"
)

// HoursPerYear converts hours to the year fraction used for volatility scaling.
const HoursPerYear = 8760.0

// FairValue returns P(S_T >= K) under a driftless lognormal model:
//
//	d2 = (ln(S/K) - σ²T/2) / (σ√T),  fair = Φ(d2)
//
// with T = hours/8760 and σ = ivPercent/100. riskFreeRate is accepted for
// interface stability and ignored. With no time or no volatility left the
// result collapses to the intrinsic 1 or 0. Non-positive spot or strike
// yields 0.
func FairValue(spot, strike, hours, ivPercent, riskFreeRate float64) float64 {
	if spot <= 0 || strike <= 0 || math.IsNaN(spot) || math.IsNaN(strike) {
		return 0
	}

	t := hours / HoursPerYear
	sigma := ivPercent / 100

	if t <= 0 || sigma <= 0 || math.IsNaN(t) || math.IsNaN(sigma) {
		if spot >= strike {
			return 1
		}
		return 0
	}

	volSqrtT := sigma * math.Sqrt(t)
	d2 := (math.Log(spot/strike) - 0.5*sigma*sigma*t) / volSqrtT

	return NormCDF(d2)
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// TimeToExpiry returns the hours from now until expiration, floored at zero.
func TimeToExpiry(expiration, now time.Time) float64 {
	h := expiration.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return h
}
