// Package analysis provides pure spread-metric and Greeks computations.
// Everything here is stateless and safe for concurrent use.
package analysis

import (
	"math"

	"nse-analyst/internal/models"
)

// OptionType identifies the option side for Greeks computation.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Greeks computes Black-Scholes Greeks for a European option.
// vol is a fraction (0.18 for 18%), tYears the time to expiry in years.
// Theta is per calendar day; vega and rho are per percentage point.
//
// The closed form is undefined when spot, strike, tYears or vol is zero
// or negative, so the guard returns ok=false instead of NaN. Greeks
// annotation is best-effort and must never abort a batch.
func Greeks(optType OptionType, spot, strike, tYears, rate, vol float64) (models.OptionGreeks, bool) {
	if spot <= 0 || strike <= 0 || tYears <= 0 || vol <= 0 {
		return models.OptionGreeks{}, false
	}

	sqrtT := math.Sqrt(tYears)
	d1 := (math.Log(spot/strike) + (rate+vol*vol/2)*tYears) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	pdf := normPDF(d1)
	discount := math.Exp(-rate * tYears)

	g := models.OptionGreeks{
		Gamma: pdf / (spot * vol * sqrtT),
		Vega:  spot * pdf * sqrtT / 100,
	}

	if optType == OptionCall {
		g.Delta = normCDF(d1)
		g.Theta = (-spot*pdf*vol/(2*sqrtT) - rate*strike*discount*normCDF(d2)) / 365
		g.Rho = strike * tYears * discount * normCDF(d2) / 100
	} else {
		g.Delta = normCDF(d1) - 1
		g.Theta = (-spot*pdf*vol/(2*sqrtT) + rate*strike*discount*normCDF(-d2)) / 365
		g.Rho = -strike * tYears * discount * normCDF(-d2) / 100
	}

	return g, true
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
