package volsurface

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"fxvol/internal/errors"
	"fxvol/internal/interp"
	"fxvol/internal/models"
	"fxvol/internal/pricing"
)

// SurfaceConfig configures a Surface. Zero fields select defaults.
type SurfaceConfig struct {
	Engine PricingEngine
	Solver pricing.SolverConfig
	Fitter interp.Fitter
	Logger *zerolog.Logger
}

// DefaultSurfaceConfig returns natural cubic splines, the shared
// Black-Scholes engine and the default root-finder settings.
func DefaultSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		Engine: DefaultEngine(),
		Solver: pricing.DefaultSolverConfig(),
		Fitter: interp.DefaultFitter(),
	}
}

// Surface is a delta-space volatility surface: six term structures, each
// anchored at (0, 0), interpolated to any tenor in (0, MaxTenor].
//
// A Surface is immutable once built and safe for concurrent queries.
type Surface struct {
	spot   float64
	engine PricingEngine
	solver pricing.SolverConfig
	logger zerolog.Logger

	yield interp.Predictor
	atm   interp.Predictor
	rr25  interp.Predictor
	bb25  interp.Predictor
	rr10  interp.Predictor
	bb10  interp.Predictor

	maxT float64
}

// NewSurface builds a surface with DefaultSurfaceConfig.
func NewSurface(curve ForwardCurve, straddles Straddles, rr25 RiskReversals, bb25 Butterflies, rr10 RiskReversals, bb10 Butterflies) (*Surface, error) {
	return NewSurfaceWithConfig(DefaultSurfaceConfig(), curve, straddles, rr25, bb25, rr10, bb10)
}

// NewSurfaceWithConfig builds a surface from six term structures.
func NewSurfaceWithConfig(cfg SurfaceConfig, curve ForwardCurve, straddles Straddles, rr25 RiskReversals, bb25 Butterflies, rr10 RiskReversals, bb10 Butterflies) (*Surface, error) {
	if cfg.Engine == nil {
		cfg.Engine = DefaultEngine()
	}
	if cfg.Fitter == nil {
		cfg.Fitter = interp.DefaultFitter()
	}
	if cfg.Solver == (pricing.SolverConfig{}) {
		cfg.Solver = pricing.DefaultSolverConfig()
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	if curve.Len() == 0 || straddles.Len() == 0 || rr25.Len() == 0 || bb25.Len() == 0 || rr10.Len() == 0 || bb10.Len() == 0 {
		return nil, errors.NewPreconditionError("term structures", nil, "all six inputs must be constructed and non-empty")
	}

	tiers := []struct {
		name  string
		delta float64
		tier  float64
	}{
		{"RR25", rr25.Delta(), Delta25},
		{"BB25", bb25.Delta(), Delta25},
		{"RR10", rr10.Delta(), Delta10},
		{"BB10", bb10.Delta(), Delta10},
	}
	for _, t := range tiers {
		if t.delta != t.tier {
			return nil, errors.NewPreconditionError(t.name+".delta", t.delta, fmt.Sprintf("must equal quoting tier %v", t.tier))
		}
	}

	s := &Surface{
		spot:   curve.Spot(),
		engine: cfg.Engine,
		solver: cfg.Solver,
		logger: logger,
	}

	curves := []struct {
		name   string
		tenors []float64
		values []float64
		dst    *interp.Predictor
	}{
		{"forward", curve.tenors, curve.yields, &s.yield},
		{"ATM", straddles.tenors, straddles.sigmas, &s.atm},
		{"RR25", rr25.tenors, rr25.sigmas, &s.rr25},
		{"BB25", bb25.tenors, bb25.sigmas, &s.bb25},
		{"RR10", rr10.tenors, rr10.sigmas, &s.rr10},
		{"BB10", bb10.tenors, bb10.sigmas, &s.bb10},
	}

	s.maxT = math.Inf(1)
	for _, c := range curves {
		p, err := cfg.Fitter.Fit(anchored(c.tenors), anchored(c.values))
		if err != nil {
			return nil, errors.Wrapf(err, "fitting %s term structure", c.name)
		}
		*c.dst = p
		s.maxT = math.Min(s.maxT, c.tenors[len(c.tenors)-1])
	}

	s.logger.Debug().
		Float64("spot", s.spot).
		Float64("max_tenor", s.maxT).
		Msg("Vol surface built")

	return s, nil
}

// anchored prepends the synthetic zero-tenor point.
func anchored(xs []float64) []float64 {
	out := make([]float64, 0, len(xs)+1)
	out = append(out, 0)
	return append(out, xs...)
}

// Spot returns the surface spot.
func (s *Surface) Spot() float64 { return s.spot }

// MaxTenor returns the longest queryable tenor: the shortest last tenor
// across the six input curves.
func (s *Surface) MaxTenor() float64 { return s.maxT }

// Forward returns the interpolated forward at tenor T.
func (s *Surface) Forward(T float64) (models.Forward, error) {
	if err := s.checkTenor(T); err != nil {
		return models.Forward{}, err
	}
	return models.NewForward(s.spot, s.yield.Predict(T), T), nil
}

// VolSmile interpolates the six term structures at T and returns the
// delta-space smile there. T must lie in (0, MaxTenor].
func (s *Surface) VolSmile(T float64) (*DeltaSpaceSmile, error) {
	fwd, err := s.Forward(T)
	if err != nil {
		return nil, err
	}

	atm, err := NewStraddle(s.atm.Predict(T), T)
	if err != nil {
		return nil, errors.Wrapf(err, "interpolated ATM at T=%v", T)
	}
	rr25, err := NewRiskReversal(Delta25, s.rr25.Predict(T), T)
	if err != nil {
		return nil, errors.Wrapf(err, "interpolated RR25 at T=%v", T)
	}
	bb25, err := NewButterfly(Delta25, s.bb25.Predict(T), T)
	if err != nil {
		return nil, errors.Wrapf(err, "interpolated BB25 at T=%v", T)
	}
	rr10, err := NewRiskReversal(Delta10, s.rr10.Predict(T), T)
	if err != nil {
		return nil, errors.Wrapf(err, "interpolated RR10 at T=%v", T)
	}
	bb10, err := NewButterfly(Delta10, s.bb10.Predict(T), T)
	if err != nil {
		return nil, errors.Wrapf(err, "interpolated BB10 at T=%v", T)
	}

	smile, err := NewDeltaSpaceSmileWithConfig(CalibrationConfig{Engine: s.engine, Solver: s.solver}, fwd, atm, rr25, bb25, rr10, bb10)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Float64("tenor", T).
		Float64("forward", smile.ForwardPrice()).
		Float64("atm", smile.ATM()).
		Msg("Vol smile queried")

	return smile, nil
}

// Chain queries the smile at T and converts it to strike space.
func (s *Surface) Chain(T float64) (*SmileChain, error) {
	smile, err := s.VolSmile(T)
	if err != nil {
		return nil, err
	}
	return smile.ToChainSpace()
}

func (s *Surface) checkTenor(T float64) error {
	if !(T > 0 && T <= s.maxT) {
		return errors.NewPreconditionError("tenor", T, fmt.Sprintf("must be in (0, %v]", s.maxT))
	}
	return nil
}
