package engine

import (
	"math"
	"time"
)

// NormalCDF is the standard normal cumulative distribution, approximated
// per Abramowitz & Stegun 26.2.17 (max error ~7.5e-8).
func NormalCDF(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	sign := 1.0
	if x < 0 {
		sign = -1
		x = -x
	}

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x/2)

	return 0.5 * (1.0 + sign*y)
}

// ProbAboveStrike is the Black-Scholes risk-neutral probability that the
// underlying finishes above the strike: N(d2) with zero risk-free rate.
// It is the implied-probability fallback for options with no delta quote.
// iv is annualized and decimal (0.60 for 60%), timeToExpiry in years.
func ProbAboveStrike(spot, strike, iv, timeToExpiry float64) float64 {
	if timeToExpiry <= 0 || iv <= 0 {
		if spot > strike {
			return 1
		}
		return 0
	}

	sqrtT := math.Sqrt(timeToExpiry)
	d2 := (math.Log(spot/strike) - 0.5*iv*iv*timeToExpiry) / (iv * sqrtT)
	return NormalCDF(d2)
}

// YearsToExpiry converts an expiration timestamp to year fractions from now.
func YearsToExpiry(expiry time.Time, now time.Time) float64 {
	return expiry.Sub(now).Hours() / (365.25 * 24)
}
