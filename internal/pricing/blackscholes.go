// Package pricing provides the Black-Scholes analytics consumed by the smile
// calibrator: premium, Greeks and the delta-to-strike inversion.
package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"fxvol/internal/errors"
	"fxvol/internal/models"
)

// SolverConfig parametrizes the strike-from-delta root-find.
//
// The strike search bracket is the multiplicative band
// [StrikeLowerMult*f, StrikeUpperMult*f] around the forward price f.
type SolverConfig struct {
	StrikeLowerMult float64 `mapstructure:"strike_lower_mult" json:"strike_lower_mult"`
	StrikeUpperMult float64 `mapstructure:"strike_upper_mult" json:"strike_upper_mult"`
	DeltaTol        float64 `mapstructure:"delta_tol" json:"delta_tol"`
	DeltaGradEps    float64 `mapstructure:"delta_grad_eps" json:"delta_grad_eps"`
	MaxIterations   int     `mapstructure:"max_iterations" json:"max_iterations"`
}

// DefaultSolverConfig returns the calibrator's default root-finder settings.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		StrikeLowerMult: 0.1,
		StrikeUpperMult: 10.0,
		DeltaTol:        1e-12,
		DeltaGradEps:    1e-4,
		MaxIterations:   100,
	}
}

// Validate checks the solver settings.
func (c SolverConfig) Validate() error {
	if !(c.StrikeLowerMult > 0 && c.StrikeLowerMult < 1) {
		return errors.NewPreconditionError("strike_lower_mult", c.StrikeLowerMult, "must be in (0, 1)")
	}
	if !(c.StrikeUpperMult > 1) || math.IsInf(c.StrikeUpperMult, 1) {
		return errors.NewPreconditionError("strike_upper_mult", c.StrikeUpperMult, "must be a finite value above 1")
	}
	if !(c.DeltaTol > 0) {
		return errors.NewPreconditionError("delta_tol", c.DeltaTol, "must be positive")
	}
	if !(c.DeltaGradEps > 0 && c.DeltaGradEps < 1) {
		return errors.NewPreconditionError("delta_grad_eps", c.DeltaGradEps, "must be in (0, 1)")
	}
	if c.MaxIterations <= 0 {
		return errors.NewPreconditionError("max_iterations", c.MaxIterations, "must be positive")
	}
	return nil
}

// BlackScholes prices European options on a spot with a continuously
// compounded yield. It holds no mutable state and is safe for concurrent use.
type BlackScholes struct {
	norm distuv.Normal
}

// NewBlackScholes creates a Black-Scholes engine.
func NewBlackScholes() *BlackScholes {
	return &BlackScholes{norm: distuv.UnitNormal}
}

// d1d2 returns d1, d2 and the total standard deviation sigma*sqrt(T).
func (bs *BlackScholes) d1d2(fwd models.Forward, strike, sigma float64) (float64, float64, float64) {
	stdev := sigma * math.Sqrt(fwd.Tenor)
	d1 := (math.Log(fwd.Price()/strike) + 0.5*stdev*stdev) / stdev
	return d1, d1 - stdev, stdev
}

// Premium returns the option premium.
func (bs *BlackScholes) Premium(fwd models.Forward, strike, sigma float64, typ models.OptionType) float64 {
	df := math.Exp(-fwd.Yield * fwd.Tenor)
	if sigma <= 0 || fwd.Tenor <= 0 {
		if typ == models.Call {
			return math.Max(fwd.Spot-strike*df, 0)
		}
		return math.Max(strike*df-fwd.Spot, 0)
	}

	d1, d2, _ := bs.d1d2(fwd, strike, sigma)
	if typ == models.Call {
		return fwd.Spot*bs.norm.CDF(d1) - strike*df*bs.norm.CDF(d2)
	}
	return strike*df*bs.norm.CDF(-d2) - fwd.Spot*bs.norm.CDF(-d1)
}

// Delta returns the spot delta; puts carry a negative sign.
func (bs *BlackScholes) Delta(fwd models.Forward, strike, sigma float64, typ models.OptionType) float64 {
	var callDelta float64
	if sigma <= 0 || fwd.Tenor <= 0 {
		if fwd.Price() > strike {
			callDelta = 1
		}
	} else {
		d1, _, _ := bs.d1d2(fwd, strike, sigma)
		callDelta = bs.norm.CDF(d1)
	}
	if typ == models.Call {
		return callDelta
	}
	return callDelta - 1
}

// Gamma returns the second spot derivative of the premium.
func (bs *BlackScholes) Gamma(fwd models.Forward, strike, sigma float64) float64 {
	if sigma <= 0 || fwd.Tenor <= 0 {
		return 0
	}
	d1, _, stdev := bs.d1d2(fwd, strike, sigma)
	return bs.norm.Prob(d1) / (fwd.Spot * stdev)
}

// Vega returns the premium sensitivity to volatility, per unit of vol.
func (bs *BlackScholes) Vega(fwd models.Forward, strike, sigma float64) float64 {
	if sigma <= 0 || fwd.Tenor <= 0 {
		return 0
	}
	d1, _, _ := bs.d1d2(fwd, strike, sigma)
	return fwd.Spot * bs.norm.Prob(d1) * math.Sqrt(fwd.Tenor)
}

// Vanna returns the cross derivative of the premium in spot and volatility.
func (bs *BlackScholes) Vanna(fwd models.Forward, strike, sigma float64) float64 {
	if sigma <= 0 || fwd.Tenor <= 0 {
		return 0
	}
	d1, d2, _ := bs.d1d2(fwd, strike, sigma)
	return -bs.norm.Prob(d1) * d2 / sigma
}

// Volga returns the second volatility derivative of the premium.
func (bs *BlackScholes) Volga(fwd models.Forward, strike, sigma float64) float64 {
	if sigma <= 0 || fwd.Tenor <= 0 {
		return 0
	}
	d1, d2, _ := bs.d1d2(fwd, strike, sigma)
	return bs.Vega(fwd, strike, sigma) * d1 * d2 / sigma
}

// Greeks returns all five sensitivities at one strike.
func (bs *BlackScholes) Greeks(fwd models.Forward, strike, sigma float64) models.Greeks {
	return models.Greeks{
		Delta: bs.Delta(fwd, strike, sigma, models.OptionTypeFor(strike, fwd.Price())),
		Gamma: bs.Gamma(fwd, strike, sigma),
		Vega:  bs.Vega(fwd, strike, sigma),
		Vanna: bs.Vanna(fwd, strike, sigma),
		Volga: bs.Volga(fwd, strike, sigma),
	}
}

// StrikeFromDelta solves for the strike whose delta under sigma equals the
// signed target: positive targets are call deltas, negative ones put deltas.
//
// Delta is monotone decreasing in strike for a fixed vol, so the search is a
// safeguarded Newton iteration inside the configured bracket, seeded with the
// closed-form inverse and using a central finite-difference gradient.
func (bs *BlackScholes) StrikeFromDelta(fwd models.Forward, target, sigma float64, cfg SolverConfig) (float64, error) {
	const op = "strike_from_delta"

	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if target == 0 || math.Abs(target) >= 1 || math.IsNaN(target) {
		return 0, errors.NewPreconditionError("delta", target, "target delta must be in (-1, 0) or (0, 1)")
	}
	if !(fwd.Tenor > 0) {
		return 0, errors.NewPreconditionError("tenor", fwd.Tenor, "must be positive")
	}
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return 0, errors.NewConvergenceError(op, target, math.NaN(), 0,
			fmt.Sprintf("volatility %.6g admits no delta root", sigma))
	}

	typ := models.Call
	if target < 0 {
		typ = models.Put
	}
	f := fwd.Price()
	lo, hi := cfg.StrikeLowerMult*f, cfg.StrikeUpperMult*f
	residual := func(k float64) float64 {
		return bs.Delta(fwd, k, sigma, typ) - target
	}

	gLo, gHi := residual(lo), residual(hi)
	if gLo < 0 || gHi > 0 {
		return 0, errors.NewConvergenceError(op, target, gLo+target, 0,
			fmt.Sprintf("root not bracketed in [%.6g, %.6g]", lo, hi))
	}

	k := bs.seedStrike(fwd, target, sigma)
	if !(k > lo && k < hi) {
		k = 0.5 * (lo + hi)
	}

	g := residual(k)
	for i := 1; i <= cfg.MaxIterations; i++ {
		if math.Abs(g) <= cfg.DeltaTol {
			return k, nil
		}
		if g > 0 {
			lo = k
		} else {
			hi = k
		}
		if hi-lo <= 4*(math.Nextafter(hi, math.Inf(1))-hi) {
			break
		}

		h := cfg.DeltaGradEps * k
		grad := (residual(k+h) - residual(k-h)) / (2 * h)
		next := k - g/grad
		if !(grad < 0) || !(next > lo && next < hi) {
			next = 0.5 * (lo + hi)
		}
		k = next
		g = residual(k)
	}
	if math.Abs(g) <= cfg.DeltaTol {
		return k, nil
	}
	return 0, errors.NewConvergenceError(op, target, g+target, cfg.MaxIterations,
		fmt.Sprintf("delta tolerance %.1e not met", cfg.DeltaTol))
}

// seedStrike inverts the delta formula in closed form.
func (bs *BlackScholes) seedStrike(fwd models.Forward, target, sigma float64) float64 {
	p := target
	if target < 0 {
		p = target + 1
	}
	stdev := sigma * math.Sqrt(fwd.Tenor)
	d1 := bs.norm.Quantile(p)
	return fwd.Price() * math.Exp(-d1*stdev+0.5*stdev*stdev)
}
