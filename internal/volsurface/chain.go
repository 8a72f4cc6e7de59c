package volsurface

import (
	"fmt"
	"math"
	"sort"

	"fxvol/internal/errors"
	"fxvol/internal/models"
	"fxvol/internal/pricing"
)

// PricingEngine is the analytic pricer the smiles delegate to. It must be
// stateless so one instance can be shared by every smile and goroutine.
type PricingEngine interface {
	Premium(fwd models.Forward, strike, sigma float64, typ models.OptionType) float64
	Delta(fwd models.Forward, strike, sigma float64, typ models.OptionType) float64
	Gamma(fwd models.Forward, strike, sigma float64) float64
	Vega(fwd models.Forward, strike, sigma float64) float64
	Vanna(fwd models.Forward, strike, sigma float64) float64
	Volga(fwd models.Forward, strike, sigma float64) float64
	StrikeFromDelta(fwd models.Forward, delta, sigma float64, cfg pricing.SolverConfig) (float64, error)
}

var defaultEngine PricingEngine = pricing.NewBlackScholes()

// DefaultEngine returns the shared Black-Scholes engine.
func DefaultEngine() PricingEngine {
	return defaultEngine
}

// SmileChain is an explicit strike-space smile at one tenor.
type SmileChain struct {
	engine  PricingEngine
	fwd     models.Forward
	f       float64
	strikes []float64
	sigmas  []float64
}

// NewSmileChain creates a strike-space smile. Strikes must be ascending and
// match vols in length. A nil engine selects DefaultEngine.
func NewSmileChain(engine PricingEngine, fwd models.Forward, strikes, sigmas []float64) (*SmileChain, error) {
	if engine == nil {
		engine = DefaultEngine()
	}
	if err := validateForward(fwd); err != nil {
		return nil, err
	}
	if len(strikes) == 0 {
		return nil, errors.NewPreconditionError("strikes", 0, "chain must not be empty")
	}
	if len(strikes) != len(sigmas) {
		return nil, errors.NewPreconditionError("sigmas", len(sigmas), fmt.Sprintf("length must match strikes length %d", len(strikes)))
	}
	if !sort.Float64sAreSorted(strikes) {
		return nil, errors.NewPreconditionError("strikes", strikes, "must be sorted ascending")
	}
	for i := range strikes {
		if !(strikes[i] > 0) || math.IsInf(strikes[i], 1) {
			return nil, errors.NewPreconditionError(fmt.Sprintf("strikes[%d]", i), strikes[i], "must be finite and positive")
		}
		if math.IsNaN(sigmas[i]) || math.IsInf(sigmas[i], 0) {
			return nil, errors.NewPreconditionError(fmt.Sprintf("sigmas[%d]", i), sigmas[i], "must be finite")
		}
	}

	return &SmileChain{
		engine:  engine,
		fwd:     fwd,
		f:       fwd.Price(),
		strikes: clone(strikes),
		sigmas:  clone(sigmas),
	}, nil
}

// Forward returns the chain's forward.
func (c *SmileChain) Forward() models.Forward { return c.fwd }

// ForwardPrice returns the forward price.
func (c *SmileChain) ForwardPrice() float64 { return c.f }

// Tenor returns the tenor in years.
func (c *SmileChain) Tenor() float64 { return c.fwd.Tenor }

// Strikes returns a copy of the strikes.
func (c *SmileChain) Strikes() []float64 { return clone(c.strikes) }

// Vols returns a copy of the implied vols.
func (c *SmileChain) Vols() []float64 { return clone(c.sigmas) }

// Len returns the number of points.
func (c *SmileChain) Len() int { return len(c.strikes) }

// OptionTypes returns the option type priced at each strike: calls at or
// above the forward, puts below.
func (c *SmileChain) OptionTypes() []models.OptionType {
	out := make([]models.OptionType, len(c.strikes))
	for i, k := range c.strikes {
		out[i] = models.OptionTypeFor(k, c.f)
	}
	return out
}

// Premiums prices every point.
func (c *SmileChain) Premiums() []float64 {
	return c.each(func(k, sigma float64) float64 {
		return c.engine.Premium(c.fwd, k, sigma, models.OptionTypeFor(k, c.f))
	})
}

// Deltas returns the signed delta at every point.
func (c *SmileChain) Deltas() []float64 {
	return c.each(func(k, sigma float64) float64 {
		return c.engine.Delta(c.fwd, k, sigma, models.OptionTypeFor(k, c.f))
	})
}

// Gammas returns gamma at every point.
func (c *SmileChain) Gammas() []float64 {
	return c.each(func(k, sigma float64) float64 { return c.engine.Gamma(c.fwd, k, sigma) })
}

// Vegas returns vega at every point.
func (c *SmileChain) Vegas() []float64 {
	return c.each(func(k, sigma float64) float64 { return c.engine.Vega(c.fwd, k, sigma) })
}

// Vannas returns vanna at every point.
func (c *SmileChain) Vannas() []float64 {
	return c.each(func(k, sigma float64) float64 { return c.engine.Vanna(c.fwd, k, sigma) })
}

// Volgas returns volga at every point.
func (c *SmileChain) Volgas() []float64 {
	return c.each(func(k, sigma float64) float64 { return c.engine.Volga(c.fwd, k, sigma) })
}

// Greeks returns all five sensitivities at every point.
func (c *SmileChain) Greeks() []models.Greeks {
	out := make([]models.Greeks, len(c.strikes))
	for i, k := range c.strikes {
		sigma := c.sigmas[i]
		out[i] = models.Greeks{
			Delta: c.engine.Delta(c.fwd, k, sigma, models.OptionTypeFor(k, c.f)),
			Gamma: c.engine.Gamma(c.fwd, k, sigma),
			Vega:  c.engine.Vega(c.fwd, k, sigma),
			Vanna: c.engine.Vanna(c.fwd, k, sigma),
			Volga: c.engine.Volga(c.fwd, k, sigma),
		}
	}
	return out
}

func (c *SmileChain) each(fn func(strike, sigma float64) float64) []float64 {
	out := make([]float64, len(c.strikes))
	for i, k := range c.strikes {
		out[i] = fn(k, c.sigmas[i])
	}
	return out
}

func validateForward(fwd models.Forward) error {
	if !(fwd.Spot > 0) || math.IsInf(fwd.Spot, 1) {
		return errors.NewPreconditionError("spot", fwd.Spot, "must be finite and positive")
	}
	if math.IsNaN(fwd.Yield) || math.IsInf(fwd.Yield, 0) {
		return errors.NewPreconditionError("yield", fwd.Yield, "must be finite")
	}
	return validateTenor("tenor", fwd.Tenor)
}
