package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"fxvol/internal/errors"
	"fxvol/internal/models"
)

func newParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	return parameters
}

// Property: call minus put equals S - K*exp(-rT) for any strike and vol.
func TestProperty_PutCallParity(t *testing.T) {
	properties := gopter.NewProperties(newParameters())
	bs := NewBlackScholes()

	properties.Property("C - P = S - K*DF", prop.ForAll(
		func(spot, yield, tenor, moneyness, sigma float64) bool {
			fwd := models.NewForward(spot, yield, tenor)
			k := fwd.Price() * moneyness
			c := bs.Premium(fwd, k, sigma, models.Call)
			p := bs.Premium(fwd, k, sigma, models.Put)
			want := spot - k*math.Exp(-yield*tenor)
			return math.Abs((c-p)-want) < 1e-10*math.Max(1, spot)
		},
		gen.Float64Range(0.5, 200),
		gen.Float64Range(-0.05, 0.1),
		gen.Float64Range(0.01, 5),
		gen.Float64Range(0.5, 2),
		gen.Float64Range(0.01, 1),
	))

	properties.TestingRun(t)
}

// Property: the solved strike reproduces the requested delta.
func TestProperty_StrikeFromDeltaRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(newParameters())
	bs := NewBlackScholes()
	cfg := DefaultSolverConfig()

	properties.Property("Delta(StrikeFromDelta(d)) = d", prop.ForAll(
		func(spot, yield, tenor, sigma, absDelta float64, put bool) bool {
			fwd := models.NewForward(spot, yield, tenor)
			target, typ := absDelta, models.Call
			if put {
				target, typ = -absDelta, models.Put
			}
			k, err := bs.StrikeFromDelta(fwd, target, sigma, cfg)
			if err != nil {
				t.Logf("solve failed: %v", err)
				return false
			}
			got := bs.Delta(fwd, k, sigma, typ)
			return math.Abs(got-target) < 1e-10
		},
		gen.Float64Range(0.5, 200),
		gen.Float64Range(-0.05, 0.1),
		gen.Float64Range(0.05, 3),
		gen.Float64Range(0.03, 0.5),
		gen.Float64Range(0.05, 0.45),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: call deltas decrease in strike.
func TestProperty_DeltaMonotoneInStrike(t *testing.T) {
	properties := gopter.NewProperties(newParameters())
	bs := NewBlackScholes()
	fwd := models.NewForward(1.2, 0.01, 1)

	properties.Property("K1 < K2 implies Delta(K1) >= Delta(K2)", prop.ForAll(
		func(m1, m2, sigma float64) bool {
			if m1 > m2 {
				m1, m2 = m2, m1
			}
			d1 := bs.Delta(fwd, fwd.Price()*m1, sigma, models.Call)
			d2 := bs.Delta(fwd, fwd.Price()*m2, sigma, models.Call)
			return d1 >= d2
		},
		gen.Float64Range(0.5, 2),
		gen.Float64Range(0.5, 2),
		gen.Float64Range(0.02, 0.8),
	))

	properties.TestingRun(t)
}

func TestStrikeFromDeltaPreconditions(t *testing.T) {
	bs := NewBlackScholes()
	fwd := models.NewForward(1.2, 0.01, 1)
	cfg := DefaultSolverConfig()

	for _, target := range []float64{0, 1, -1, 1.5, math.NaN()} {
		_, err := bs.StrikeFromDelta(fwd, target, 0.1, cfg)
		if !errors.Is(err, errors.ErrPrecondition) {
			t.Errorf("target %v: expected precondition error, got %v", target, err)
		}
	}

	_, err := bs.StrikeFromDelta(models.NewForward(1.2, 0.01, 0), 0.25, 0.1, cfg)
	if !errors.Is(err, errors.ErrPrecondition) {
		t.Errorf("zero tenor: expected precondition error, got %v", err)
	}
}

func TestStrikeFromDeltaNonPositiveVol(t *testing.T) {
	bs := NewBlackScholes()
	fwd := models.NewForward(1.2, 0.01, 1)

	for _, sigma := range []float64{0, -0.05} {
		_, err := bs.StrikeFromDelta(fwd, 0.25, sigma, DefaultSolverConfig())
		var ce *errors.ConvergenceError
		if !errors.As(err, &ce) {
			t.Fatalf("sigma %v: expected ConvergenceError, got %v", sigma, err)
		}
		if ce.Target != 0.25 {
			t.Errorf("target = %v, want 0.25", ce.Target)
		}
	}
}

func TestStrikeFromDeltaNotBracketed(t *testing.T) {
	bs := NewBlackScholes()
	fwd := models.NewForward(1.2, 0.01, 1)

	// A 10 delta call at 10% vol sits well outside a 0.99f..1.01f band.
	cfg := DefaultSolverConfig()
	cfg.StrikeLowerMult = 0.99
	cfg.StrikeUpperMult = 1.01

	_, err := bs.StrikeFromDelta(fwd, 0.10, 0.10, cfg)
	if !errors.Is(err, errors.ErrConvergence) {
		t.Fatalf("expected convergence error, got %v", err)
	}
}

func TestStrikeFromDeltaSeedIsExact(t *testing.T) {
	bs := NewBlackScholes()
	fwd := models.NewForward(1.2, 0.01, 0.5)
	sigma := 0.12

	k, err := bs.StrikeFromDelta(fwd, 0.25, sigma, DefaultSolverConfig())
	if err != nil {
		t.Fatalf("StrikeFromDelta() error = %v", err)
	}
	seed := bs.seedStrike(fwd, 0.25, sigma)
	if math.Abs(k-seed) > 1e-9*seed {
		t.Errorf("strike %v differs from closed form %v", k, seed)
	}
}

func TestPremiumIntrinsicFallback(t *testing.T) {
	bs := NewBlackScholes()
	fwd := models.NewForward(100, 0.05, 1)
	df := math.Exp(-0.05)

	if got, want := bs.Premium(fwd, 90, 0, models.Call), 100-90*df; math.Abs(got-want) > 1e-12 {
		t.Errorf("call intrinsic = %v, want %v", got, want)
	}
	if got := bs.Premium(fwd, 90, 0, models.Put); got != 0 {
		t.Errorf("put intrinsic = %v, want 0", got)
	}
	if got := bs.Premium(models.NewForward(100, 0.05, 0), 110, 0.2, models.Put); got != 10 {
		t.Errorf("expired put = %v, want 10", got)
	}
}

func TestGreeksAgainstFiniteDifferences(t *testing.T) {
	bs := NewBlackScholes()
	fwd := models.NewForward(1.2, 0.01, 0.75)
	k, sigma := 1.25, 0.11

	const h = 1e-4
	up := models.NewForward(fwd.Spot+h, fwd.Yield, fwd.Tenor)
	dn := models.NewForward(fwd.Spot-h, fwd.Yield, fwd.Tenor)

	fdDelta := (bs.Premium(up, k, sigma, models.Call) - bs.Premium(dn, k, sigma, models.Call)) / (2 * h)
	if got := bs.Delta(fwd, k, sigma, models.Call); math.Abs(got-fdDelta) > 1e-6 {
		t.Errorf("Delta = %v, finite difference %v", got, fdDelta)
	}

	fdGamma := (bs.Delta(up, k, sigma, models.Call) - bs.Delta(dn, k, sigma, models.Call)) / (2 * h)
	if got := bs.Gamma(fwd, k, sigma); math.Abs(got-fdGamma) > 1e-4*math.Abs(fdGamma) {
		t.Errorf("Gamma = %v, finite difference %v", got, fdGamma)
	}

	fdVega := (bs.Premium(fwd, k, sigma+h, models.Call) - bs.Premium(fwd, k, sigma-h, models.Call)) / (2 * h)
	if got := bs.Vega(fwd, k, sigma); math.Abs(got-fdVega) > 1e-6 {
		t.Errorf("Vega = %v, finite difference %v", got, fdVega)
	}

	fdVolga := (bs.Vega(fwd, k, sigma+h) - bs.Vega(fwd, k, sigma-h)) / (2 * h)
	if got := bs.Volga(fwd, k, sigma); math.Abs(got-fdVolga) > 1e-4*math.Max(1, math.Abs(fdVolga)) {
		t.Errorf("Volga = %v, finite difference %v", got, fdVolga)
	}
}

func TestSolverConfigValidate(t *testing.T) {
	if err := DefaultSolverConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SolverConfig)
	}{
		{"lower mult zero", func(c *SolverConfig) { c.StrikeLowerMult = 0 }},
		{"lower mult above one", func(c *SolverConfig) { c.StrikeLowerMult = 1.5 }},
		{"upper mult below one", func(c *SolverConfig) { c.StrikeUpperMult = 0.9 }},
		{"upper mult infinite", func(c *SolverConfig) { c.StrikeUpperMult = math.Inf(1) }},
		{"tolerance zero", func(c *SolverConfig) { c.DeltaTol = 0 }},
		{"gradient step one", func(c *SolverConfig) { c.DeltaGradEps = 1 }},
		{"no iterations", func(c *SolverConfig) { c.MaxIterations = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSolverConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrPrecondition) {
				t.Errorf("Validate() = %v, want precondition error", err)
			}
		})
	}
}
