// Package models provides domain models for the vol surface tools.
package models

import "math"

// OptionType distinguishes calls from puts.
type OptionType string

// Option types
const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// OptionTypeFor returns Call for strikes at or above the forward, Put otherwise.
func OptionTypeFor(strike, forward float64) OptionType {
	if strike >= forward {
		return Call
	}
	return Put
}

// Forward holds spot, a continuously-compounded yield and a tenor in years.
type Forward struct {
	Spot  float64 `json:"spot"`
	Yield float64 `json:"yield"`
	Tenor float64 `json:"tenor"`
}

// NewForward creates a forward from spot, yield and tenor.
func NewForward(spot, yield, tenor float64) Forward {
	return Forward{Spot: spot, Yield: yield, Tenor: tenor}
}

// Price returns the forward price S*exp(r*T).
func (f Forward) Price() float64 {
	return f.Spot * math.Exp(f.Yield*f.Tenor)
}

// Greeks holds option sensitivities at a single strike.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Vanna float64 `json:"vanna"`
	Volga float64 `json:"volga"`
}
