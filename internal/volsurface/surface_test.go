package volsurface

import (
	"math"
	"testing"

	"fxvol/internal/errors"
	"fxvol/internal/interp"
)

type surfaceQuotes struct {
	spot   float64
	tenors []float64
	yields []float64
	atm    []float64
	rr25   []float64
	bb25   []float64
	rr10   []float64
	bb10   []float64
}

func oneYearQuotes() surfaceQuotes {
	return surfaceQuotes{
		spot:   1.2,
		tenors: []float64{1},
		yields: []float64{0.01},
		atm:    []float64{0.1},
		rr25:   []float64{0.01},
		bb25:   []float64{0.005},
		rr10:   []float64{0.02},
		bb10:   []float64{0.01},
	}
}

func termQuotes() surfaceQuotes {
	return surfaceQuotes{
		spot:   1.0850,
		tenors: []float64{1.0 / 12, 0.25, 0.5, 1, 2},
		yields: []float64{0.012, 0.0125, 0.013, 0.014, 0.015},
		atm:    []float64{0.072, 0.075, 0.078, 0.081, 0.083},
		rr25:   []float64{-0.004, -0.005, -0.006, -0.007, -0.007},
		bb25:   []float64{0.0018, 0.002, 0.0022, 0.0025, 0.0027},
		rr10:   []float64{-0.007, -0.009, -0.011, -0.013, -0.013},
		bb10:   []float64{0.006, 0.0068, 0.0075, 0.0085, 0.009},
	}
}

func (q surfaceQuotes) build(t *testing.T, cfg SurfaceConfig) *Surface {
	t.Helper()
	s, err := q.tryBuild(cfg)
	if err != nil {
		t.Fatalf("building surface: %v", err)
	}
	return s
}

func (q surfaceQuotes) tryBuild(cfg SurfaceConfig) (*Surface, error) {
	curve, err := NewForwardCurve(q.spot, q.yields, q.tenors)
	if err != nil {
		return nil, err
	}
	atm, err := NewStraddles(q.atm, q.tenors)
	if err != nil {
		return nil, err
	}
	rr25, err := NewRiskReversals(Delta25, q.rr25, q.tenors)
	if err != nil {
		return nil, err
	}
	bb25, err := NewButterflies(Delta25, q.bb25, q.tenors)
	if err != nil {
		return nil, err
	}
	rr10, err := NewRiskReversals(Delta10, q.rr10, q.tenors)
	if err != nil {
		return nil, err
	}
	bb10, err := NewButterflies(Delta10, q.bb10, q.tenors)
	if err != nil {
		return nil, err
	}
	return NewSurfaceWithConfig(cfg, curve, atm, rr25, bb25, rr10, bb10)
}

func TestSurfaceReproducesKnots(t *testing.T) {
	q := oneYearQuotes()
	s := q.build(t, DefaultSurfaceConfig())

	if s.MaxTenor() != 1 {
		t.Fatalf("MaxTenor() = %v, want 1", s.MaxTenor())
	}

	smile, err := s.VolSmile(1)
	if err != nil {
		t.Fatalf("VolSmile(1) error = %v", err)
	}
	want := DeltaSpaceQuotes{ATM: 0.1, RR25: 0.01, BB25: 0.005, RR10: 0.02, BB10: 0.01}
	got := smile.Quotes()
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"ATM", got.ATM, want.ATM},
		{"RR25", got.RR25, want.RR25},
		{"BB25", got.BB25, want.BB25},
		{"RR10", got.RR10, want.RR10},
		{"BB10", got.BB10, want.BB10},
	} {
		if math.Abs(c.got-c.want) > 1e-15 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	chain, err := smile.ToChainSpace()
	if err != nil {
		t.Fatalf("ToChainSpace() error = %v", err)
	}
	if got, want := chain.Strikes()[ATM], 1.2*math.Exp(0.01); math.Abs(got-want) > 1e-12 {
		t.Errorf("ATM strike = %v, want %v", got, want)
	}
	k := chain.Strikes()
	for i := 1; i < len(k); i++ {
		if !(k[i] > k[i-1]) {
			t.Fatalf("strikes not ascending: %v", k)
		}
	}
}

func TestSurfaceSingleTenorIsLinearFromZero(t *testing.T) {
	s := oneYearQuotes().build(t, DefaultSurfaceConfig())

	smile, err := s.VolSmile(0.5)
	if err != nil {
		t.Fatalf("VolSmile(0.5) error = %v", err)
	}
	if math.Abs(smile.ATM()-0.05) > 1e-15 {
		t.Errorf("ATM(0.5) = %v, want 0.05", smile.ATM())
	}
	fwd, err := s.Forward(0.5)
	if err != nil {
		t.Fatalf("Forward(0.5) error = %v", err)
	}
	if math.Abs(fwd.Yield-0.005) > 1e-15 {
		t.Errorf("yield(0.5) = %v, want 0.005", fwd.Yield)
	}
}

func TestSurfaceQueryDomain(t *testing.T) {
	s := termQuotes().build(t, DefaultSurfaceConfig())
	maxT := s.MaxTenor()

	if _, err := s.VolSmile(maxT); err != nil {
		t.Errorf("VolSmile(maxT) error = %v", err)
	}
	for _, T := range []float64{0, -0.5, math.Nextafter(maxT, math.Inf(1)), maxT + 1e-9, math.NaN()} {
		if _, err := s.VolSmile(T); !errors.Is(err, errors.ErrPrecondition) {
			t.Errorf("VolSmile(%v) = %v, want precondition error", T, err)
		}
	}
}

func TestSurfaceMaxTenorIsShortestCurve(t *testing.T) {
	q := termQuotes()
	curve, _ := NewForwardCurve(q.spot, q.yields, q.tenors)
	atm, _ := NewStraddles(q.atm, q.tenors)
	rr25, _ := NewRiskReversals(Delta25, q.rr25, q.tenors)
	bb25, _ := NewButterflies(Delta25, q.bb25, q.tenors)
	rr10, _ := NewRiskReversals(Delta10, q.rr10[:4], q.tenors[:4])
	bb10, _ := NewButterflies(Delta10, q.bb10, q.tenors)

	s, err := NewSurface(curve, atm, rr25, bb25, rr10, bb10)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if s.MaxTenor() != 1 {
		t.Errorf("MaxTenor() = %v, want 1", s.MaxTenor())
	}
	if _, err := s.VolSmile(1.5); !errors.Is(err, errors.ErrPrecondition) {
		t.Errorf("VolSmile(1.5) = %v, want precondition error", err)
	}
}

func TestSurfaceQueriesAreIdempotent(t *testing.T) {
	s := termQuotes().build(t, DefaultSurfaceConfig())

	a, err := s.Chain(0.75)
	if err != nil {
		t.Fatalf("Chain(0.75) error = %v", err)
	}
	b, err := s.Chain(0.75)
	if err != nil {
		t.Fatalf("Chain(0.75) error = %v", err)
	}
	ka, kb := a.Strikes(), b.Strikes()
	va, vb := a.Vols(), b.Vols()
	for i := range ka {
		if ka[i] != kb[i] || va[i] != vb[i] {
			t.Fatalf("repeated query differs at %d: (%v, %v) vs (%v, %v)", i, ka[i], va[i], kb[i], vb[i])
		}
	}
}

func TestSurfaceSchemes(t *testing.T) {
	q := termQuotes()
	for _, scheme := range interp.Schemes() {
		t.Run(string(scheme), func(t *testing.T) {
			fitter, err := interp.NewFitter(scheme)
			if err != nil {
				t.Fatalf("NewFitter() error = %v", err)
			}
			cfg := DefaultSurfaceConfig()
			cfg.Fitter = fitter
			s := q.build(t, cfg)

			for i, T := range q.tenors {
				smile, err := s.VolSmile(T)
				if err != nil {
					t.Fatalf("VolSmile(%v) error = %v", T, err)
				}
				if math.Abs(smile.ATM()-q.atm[i]) > 1e-12 {
					t.Errorf("ATM(%v) = %v, want knot %v", T, smile.ATM(), q.atm[i])
				}
				if _, err := smile.ToChainSpace(); err != nil {
					t.Errorf("ToChainSpace(%v) error = %v", T, err)
				}
			}
		})
	}
}

func TestSurfaceSingleTenorNeedsTwoKnotScheme(t *testing.T) {
	fitter, _ := interp.NewFitter(interp.Akima)
	cfg := DefaultSurfaceConfig()
	cfg.Fitter = fitter
	if _, err := oneYearQuotes().tryBuild(cfg); !errors.Is(err, errors.ErrPrecondition) {
		t.Errorf("Akima with one tenor: got %v, want precondition error", err)
	}
}

func TestSurfaceRejectsOffTierInputs(t *testing.T) {
	q := oneYearQuotes()
	curve, _ := NewForwardCurve(q.spot, q.yields, q.tenors)
	atm, _ := NewStraddles(q.atm, q.tenors)
	rr25, _ := NewRiskReversals(Delta25, q.rr25, q.tenors)
	bb25, _ := NewButterflies(Delta25, q.bb25, q.tenors)
	rr10, _ := NewRiskReversals(Delta10, q.rr10, q.tenors)
	bb10, _ := NewButterflies(Delta10, q.bb10, q.tenors)

	if _, err := NewSurface(curve, atm, rr10, bb25, rr25, bb10); !errors.Is(err, errors.ErrPrecondition) {
		t.Errorf("swapped risk reversal tiers: got %v", err)
	}
	if _, err := NewSurface(curve, atm, rr25, bb25, rr10, Butterflies{}); !errors.Is(err, errors.ErrPrecondition) {
		t.Errorf("empty butterflies: got %v", err)
	}
}
