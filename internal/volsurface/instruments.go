// Package volsurface models an FX-style implied volatility surface quoted in
// delta space (ATM straddle, 25 and 10 delta risk reversals and butterflies)
// and converts it into strike-space smiles for pricing and risk.
package volsurface

import (
	"fmt"
	"math"

	"fxvol/internal/errors"
)

// Quoting tiers for risk reversals and butterflies.
const (
	Delta25 = 0.25
	Delta10 = 0.10
)

// Straddle is an at-the-money implied vol quote at one tenor.
type Straddle struct {
	sigma float64
	tenor float64
}

// NewStraddle creates a Straddle quote.
func NewStraddle(sigma, tenor float64) (Straddle, error) {
	if err := validateTenor("tenor", tenor); err != nil {
		return Straddle{}, err
	}
	if !(sigma >= 0) || math.IsInf(sigma, 1) {
		return Straddle{}, errors.NewPreconditionError("sigma", sigma, "ATM vol must be finite and non-negative")
	}
	return Straddle{sigma: sigma, tenor: tenor}, nil
}

// Sigma returns the ATM vol.
func (s Straddle) Sigma() float64 { return s.sigma }

// Tenor returns the tenor in years.
func (s Straddle) Tenor() float64 { return s.tenor }

// RiskReversal is a call-minus-put wing vol quote at a delta tier.
type RiskReversal struct {
	delta float64
	sigma float64
	tenor float64
}

// NewRiskReversal creates a RiskReversal quote. Delta must lie in [0, 1].
func NewRiskReversal(delta, sigma, tenor float64) (RiskReversal, error) {
	if err := validateQuote(delta, sigma, tenor); err != nil {
		return RiskReversal{}, err
	}
	return RiskReversal{delta: delta, sigma: sigma, tenor: tenor}, nil
}

// Delta returns the quoting tier.
func (q RiskReversal) Delta() float64 { return q.delta }

// Sigma returns the quoted vol.
func (q RiskReversal) Sigma() float64 { return q.sigma }

// Tenor returns the tenor in years.
func (q RiskReversal) Tenor() float64 { return q.tenor }

// Butterfly is an average-wing-over-ATM vol quote at a delta tier.
type Butterfly struct {
	delta float64
	sigma float64
	tenor float64
}

// NewButterfly creates a Butterfly quote. Delta must lie in [0, 1].
func NewButterfly(delta, sigma, tenor float64) (Butterfly, error) {
	if err := validateQuote(delta, sigma, tenor); err != nil {
		return Butterfly{}, err
	}
	return Butterfly{delta: delta, sigma: sigma, tenor: tenor}, nil
}

// Delta returns the quoting tier.
func (q Butterfly) Delta() float64 { return q.delta }

// Sigma returns the quoted vol.
func (q Butterfly) Sigma() float64 { return q.sigma }

// Tenor returns the tenor in years.
func (q Butterfly) Tenor() float64 { return q.tenor }

// Straddles is a term structure of ATM vols.
type Straddles struct {
	sigmas []float64
	tenors []float64
}

// NewStraddles creates a term structure of ATM quotes.
func NewStraddles(sigmas, tenors []float64) (Straddles, error) {
	if err := validateTermStructure(sigmas, tenors); err != nil {
		return Straddles{}, err
	}
	for i, s := range sigmas {
		if !(s >= 0) {
			return Straddles{}, errors.NewPreconditionError(fmt.Sprintf("sigmas[%d]", i), s, "ATM vol must be non-negative")
		}
	}
	return Straddles{sigmas: clone(sigmas), tenors: clone(tenors)}, nil
}

// Sigmas returns a copy of the quoted vols.
func (s Straddles) Sigmas() []float64 { return clone(s.sigmas) }

// Tenors returns a copy of the tenors.
func (s Straddles) Tenors() []float64 { return clone(s.tenors) }

// Len returns the number of quotes.
func (s Straddles) Len() int { return len(s.tenors) }

// RiskReversals is a term structure of risk reversals at one delta tier.
type RiskReversals struct {
	delta  float64
	sigmas []float64
	tenors []float64
}

// NewRiskReversals creates a term structure of risk reversal quotes.
func NewRiskReversals(delta float64, sigmas, tenors []float64) (RiskReversals, error) {
	if err := validateDelta(delta); err != nil {
		return RiskReversals{}, err
	}
	if err := validateTermStructure(sigmas, tenors); err != nil {
		return RiskReversals{}, err
	}
	return RiskReversals{delta: delta, sigmas: clone(sigmas), tenors: clone(tenors)}, nil
}

// Delta returns the quoting tier.
func (q RiskReversals) Delta() float64 { return q.delta }

// Sigmas returns a copy of the quoted vols.
func (q RiskReversals) Sigmas() []float64 { return clone(q.sigmas) }

// Tenors returns a copy of the tenors.
func (q RiskReversals) Tenors() []float64 { return clone(q.tenors) }

// Len returns the number of quotes.
func (q RiskReversals) Len() int { return len(q.tenors) }

// Butterflies is a term structure of butterflies at one delta tier.
type Butterflies struct {
	delta  float64
	sigmas []float64
	tenors []float64
}

// NewButterflies creates a term structure of butterfly quotes.
func NewButterflies(delta float64, sigmas, tenors []float64) (Butterflies, error) {
	if err := validateDelta(delta); err != nil {
		return Butterflies{}, err
	}
	if err := validateTermStructure(sigmas, tenors); err != nil {
		return Butterflies{}, err
	}
	return Butterflies{delta: delta, sigmas: clone(sigmas), tenors: clone(tenors)}, nil
}

// Delta returns the quoting tier.
func (q Butterflies) Delta() float64 { return q.delta }

// Sigmas returns a copy of the quoted vols.
func (q Butterflies) Sigmas() []float64 { return clone(q.sigmas) }

// Tenors returns a copy of the tenors.
func (q Butterflies) Tenors() []float64 { return clone(q.tenors) }

// Len returns the number of quotes.
func (q Butterflies) Len() int { return len(q.tenors) }

// ForwardCurve is a term structure of continuously-compounded forward yields
// off a single spot.
type ForwardCurve struct {
	spot   float64
	yields []float64
	tenors []float64
}

// NewForwardCurve creates a forward curve.
func NewForwardCurve(spot float64, yields, tenors []float64) (ForwardCurve, error) {
	if !(spot > 0) || math.IsInf(spot, 1) {
		return ForwardCurve{}, errors.NewPreconditionError("spot", spot, "must be finite and positive")
	}
	if err := validateTermStructure(yields, tenors); err != nil {
		return ForwardCurve{}, err
	}
	return ForwardCurve{spot: spot, yields: clone(yields), tenors: clone(tenors)}, nil
}

// Spot returns the spot.
func (c ForwardCurve) Spot() float64 { return c.spot }

// Yields returns a copy of the forward yields.
func (c ForwardCurve) Yields() []float64 { return clone(c.yields) }

// Tenors returns a copy of the tenors.
func (c ForwardCurve) Tenors() []float64 { return clone(c.tenors) }

// Len returns the number of curve points.
func (c ForwardCurve) Len() int { return len(c.tenors) }

// ForwardPrices returns S*exp(r*T) at every curve point.
func (c ForwardCurve) ForwardPrices() []float64 {
	out := make([]float64, len(c.tenors))
	for i := range c.tenors {
		out[i] = c.spot * math.Exp(c.yields[i]*c.tenors[i])
	}
	return out
}

func validateQuote(delta, sigma, tenor float64) error {
	if err := validateDelta(delta); err != nil {
		return err
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return errors.NewPreconditionError("sigma", sigma, "must be finite")
	}
	return validateTenor("tenor", tenor)
}

func validateDelta(delta float64) error {
	if !(delta >= 0 && delta <= 1) {
		return errors.NewPreconditionError("delta", delta, "must be in [0, 1]")
	}
	return nil
}

func validateTenor(field string, tenor float64) error {
	if !(tenor > 0) || math.IsInf(tenor, 1) {
		return errors.NewPreconditionError(field, tenor, "must be finite and positive")
	}
	return nil
}

// validateTermStructure checks parallel quote and tenor arrays: equal
// non-zero length, finite quotes, positive strictly ascending tenors.
func validateTermStructure(values, tenors []float64) error {
	if len(tenors) == 0 {
		return errors.NewPreconditionError("tenors", 0, "term structure must not be empty")
	}
	if len(values) != len(tenors) {
		return errors.NewPreconditionError("values", len(values), fmt.Sprintf("length must match tenors length %d", len(tenors)))
	}
	for i := range tenors {
		if err := validateTenor(fmt.Sprintf("tenors[%d]", i), tenors[i]); err != nil {
			return err
		}
		if i > 0 && !(tenors[i] > tenors[i-1]) {
			return errors.NewPreconditionError(fmt.Sprintf("tenors[%d]", i), tenors[i], "tenors must be strictly ascending")
		}
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			return errors.NewPreconditionError(fmt.Sprintf("values[%d]", i), values[i], "must be finite")
		}
	}
	return nil
}

func clone(xs []float64) []float64 {
	return append([]float64(nil), xs...)
}
