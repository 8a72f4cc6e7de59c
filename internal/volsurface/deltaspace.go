package volsurface

import (
	"fmt"

	"fxvol/internal/errors"
	"fxvol/internal/models"
	"fxvol/internal/pricing"
)

// Chain point order produced by ToChainSpace.
const (
	Put10 = iota
	Put25
	ATM
	Call25
	Call10
)

// CalibrationConfig configures a DeltaSpaceSmile.
type CalibrationConfig struct {
	Engine PricingEngine
	Solver pricing.SolverConfig
}

// DefaultCalibrationConfig returns the shared Black-Scholes engine with the
// default root-finder settings.
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		Engine: DefaultEngine(),
		Solver: pricing.DefaultSolverConfig(),
	}
}

// DeltaSpacePremiums holds the five delta-space quotes in premium units.
type DeltaSpacePremiums struct {
	ATM  float64 `json:"atm"`
	RR25 float64 `json:"rr25"`
	BB25 float64 `json:"bb25"`
	RR10 float64 `json:"rr10"`
	BB10 float64 `json:"bb10"`
}

// WingVols holds the four explicit wing vols implied by RR/BB quotes.
type WingVols struct {
	Put10  float64 `json:"put10"`
	Put25  float64 `json:"put25"`
	Call25 float64 `json:"call25"`
	Call10 float64 `json:"call10"`
}

// DeltaSpaceQuotes holds the five vol-space quotes of one smile.
type DeltaSpaceQuotes struct {
	ATM  float64 `json:"atm"`
	RR25 float64 `json:"rr25"`
	BB25 float64 `json:"bb25"`
	RR10 float64 `json:"rr10"`
	BB10 float64 `json:"bb10"`
}

// DeltaSpaceSmile is one tenor's smile as quoted by the market. It is
// immutable after construction.
type DeltaSpaceSmile struct {
	engine PricingEngine
	solver pricing.SolverConfig
	fwd    models.Forward
	f      float64

	atm  float64
	rr25 float64
	bb25 float64
	rr10 float64
	bb10 float64
}

// NewDeltaSpaceSmile creates a smile with DefaultCalibrationConfig.
func NewDeltaSpaceSmile(fwd models.Forward, atm Straddle, rr25 RiskReversal, bb25 Butterfly, rr10 RiskReversal, bb10 Butterfly) (*DeltaSpaceSmile, error) {
	return NewDeltaSpaceSmileWithConfig(DefaultCalibrationConfig(), fwd, atm, rr25, bb25, rr10, bb10)
}

// NewDeltaSpaceSmileWithConfig creates a smile from a forward and five quotes.
// Every quote must carry the forward's tenor; the 25 and 10 delta quotes must
// sit exactly on their tiers.
func NewDeltaSpaceSmileWithConfig(cfg CalibrationConfig, fwd models.Forward, atm Straddle, rr25 RiskReversal, bb25 Butterfly, rr10 RiskReversal, bb10 Butterfly) (*DeltaSpaceSmile, error) {
	if cfg.Engine == nil {
		cfg.Engine = DefaultEngine()
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	if err := validateForward(fwd); err != nil {
		return nil, err
	}

	T := fwd.Tenor
	checks := []struct {
		name  string
		tenor float64
		delta float64
		tier  float64
	}{
		{"ATM", atm.Tenor(), 0, 0},
		{"RR25", rr25.Tenor(), rr25.Delta(), Delta25},
		{"BB25", bb25.Tenor(), bb25.Delta(), Delta25},
		{"RR10", rr10.Tenor(), rr10.Delta(), Delta10},
		{"BB10", bb10.Tenor(), bb10.Delta(), Delta10},
	}
	for _, c := range checks {
		if c.tenor != T {
			return nil, errors.NewPreconditionError(c.name+".tenor", c.tenor, fmt.Sprintf("must equal forward tenor %v", T))
		}
		if c.delta != c.tier {
			return nil, errors.NewPreconditionError(c.name+".delta", c.delta, fmt.Sprintf("must equal quoting tier %v", c.tier))
		}
	}

	return &DeltaSpaceSmile{
		engine: cfg.Engine,
		solver: cfg.Solver,
		fwd:    fwd,
		f:      fwd.Price(),
		atm:    atm.Sigma(),
		rr25:   rr25.Sigma(),
		bb25:   bb25.Sigma(),
		rr10:   rr10.Sigma(),
		bb10:   bb10.Sigma(),
	}, nil
}

// Forward returns the smile's forward.
func (s *DeltaSpaceSmile) Forward() models.Forward { return s.fwd }

// ForwardPrice returns the forward price.
func (s *DeltaSpaceSmile) ForwardPrice() float64 { return s.f }

// Tenor returns the tenor in years.
func (s *DeltaSpaceSmile) Tenor() float64 { return s.fwd.Tenor }

// Solver returns the root-finder settings.
func (s *DeltaSpaceSmile) Solver() pricing.SolverConfig { return s.solver }

// ATM returns the ATM vol.
func (s *DeltaSpaceSmile) ATM() float64 { return s.atm }

// RR25 returns the 25 delta risk reversal.
func (s *DeltaSpaceSmile) RR25() float64 { return s.rr25 }

// BB25 returns the 25 delta butterfly.
func (s *DeltaSpaceSmile) BB25() float64 { return s.bb25 }

// RR10 returns the 10 delta risk reversal.
func (s *DeltaSpaceSmile) RR10() float64 { return s.rr10 }

// BB10 returns the 10 delta butterfly.
func (s *DeltaSpaceSmile) BB10() float64 { return s.bb10 }

// Quotes returns the five vol-space quotes.
func (s *DeltaSpaceSmile) Quotes() DeltaSpaceQuotes {
	return DeltaSpaceQuotes{ATM: s.atm, RR25: s.rr25, BB25: s.bb25, RR10: s.rr10, BB10: s.bb10}
}

// impliedVols splits a risk reversal and butterfly into put and call wing
// vols: RR is call minus put, BB is the mean wing over ATM.
func (s *DeltaSpaceSmile) impliedVols(rr, bb float64) (put, call float64) {
	return -rr/2 + (bb + s.atm), rr/2 + (bb + s.atm)
}

// WingVols returns the four wing vols.
func (s *DeltaSpaceSmile) WingVols() WingVols {
	put25, call25 := s.impliedVols(s.rr25, s.bb25)
	put10, call10 := s.impliedVols(s.rr10, s.bb10)
	return WingVols{Put10: put10, Put25: put25, Call25: call25, Call10: call10}
}

// strike solves for the strike of a wing; delta is signed, negative for puts.
func (s *DeltaSpaceSmile) strike(sigma, delta float64) (float64, error) {
	k, err := s.engine.StrikeFromDelta(s.fwd, delta, sigma, s.solver)
	if err != nil {
		return 0, errors.Wrapf(err, "solving %+.2f delta strike at T=%v (vol %.6g)", delta, s.fwd.Tenor, sigma)
	}
	return k, nil
}

// ToChainSpace converts the smile into five strike/vol points ordered
// [10P, 25P, ATM, 25C, 10C]. The ATM strike is the forward; the wings are
// solved from their deltas. Strikes that come out non-ascending are reported
// as a ConsistencyError.
func (s *DeltaSpaceSmile) ToChainSpace() (*SmileChain, error) {
	w := s.WingVols()

	var sigmas, strikes [5]float64
	sigmas[Put10], sigmas[Put25], sigmas[ATM], sigmas[Call25], sigmas[Call10] = w.Put10, w.Put25, s.atm, w.Call25, w.Call10

	wings := []struct {
		idx   int
		delta float64
	}{
		{Put10, -Delta10},
		{Put25, -Delta25},
		{Call25, Delta25},
		{Call10, Delta10},
	}
	for _, wing := range wings {
		k, err := s.strike(sigmas[wing.idx], wing.delta)
		if err != nil {
			return nil, err
		}
		strikes[wing.idx] = k
	}
	strikes[ATM] = s.f

	for i := 1; i < len(strikes); i++ {
		if !(strikes[i] > strikes[i-1]) {
			return nil, errors.NewConsistencyError(s.fwd.Tenor, strikes[:])
		}
	}

	return NewSmileChain(s.engine, s.fwd, strikes[:], sigmas[:])
}

// Premiums prices the chain and re-expresses the five quotes in premium
// units. The smile's own vol-space quotes are left untouched.
func (s *DeltaSpaceSmile) Premiums() (DeltaSpacePremiums, error) {
	chain, err := s.ToChainSpace()
	if err != nil {
		return DeltaSpacePremiums{}, err
	}
	p := chain.Premiums()

	var res DeltaSpacePremiums
	res.ATM = p[ATM]
	res.RR25 = p[Call25] - p[Put25]
	res.BB25 = 0.5*(p[Call25]+p[Put25]) - res.ATM
	res.RR10 = p[Call10] - p[Put10]
	res.BB10 = 0.5*(p[Call10]+p[Put10]) - res.ATM
	return res, nil
}
