package volsurface

import (
	"testing"

	"fxvol/internal/errors"
)

func TestGridKeepsTenorOrder(t *testing.T) {
	s := termQuotes().build(t, DefaultSurfaceConfig())
	tenors := []float64{2, 0.4, 1.5, 0.25, 0.75, 1, 0.5, 1.0 / 12}

	for _, workers := range []int{-1, 0, 1, 3} {
		points, err := Grid(s, tenors, workers)
		if err != nil {
			t.Fatalf("workers=%d: Grid() error = %v", workers, err)
		}
		if len(points) != len(tenors) {
			t.Fatalf("workers=%d: got %d points, want %d", workers, len(points), len(tenors))
		}
		for i, p := range points {
			if p.Tenor != tenors[i] || p.Smile.Tenor() != tenors[i] || p.Chain.Tenor() != tenors[i] {
				t.Errorf("workers=%d: point %d has tenor %v, want %v", workers, i, p.Tenor, tenors[i])
			}
		}
	}
}

func TestGridMatchesSequentialQueries(t *testing.T) {
	s := termQuotes().build(t, DefaultSurfaceConfig())
	tenors := []float64{0.3, 0.9, 1.7}

	points, err := Grid(s, tenors, 2)
	if err != nil {
		t.Fatalf("Grid() error = %v", err)
	}
	for i, T := range tenors {
		chain, err := s.Chain(T)
		if err != nil {
			t.Fatalf("Chain(%v) error = %v", T, err)
		}
		want, got := chain.Strikes(), points[i].Chain.Strikes()
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("T=%v strike %d: grid %v, sequential %v", T, j, got[j], want[j])
			}
		}
	}
}

func TestGridReportsOutOfDomainTenor(t *testing.T) {
	s := termQuotes().build(t, DefaultSurfaceConfig())

	_, err := Grid(s, []float64{0.5, 3, 1}, 0)
	if !errors.Is(err, errors.ErrPrecondition) {
		t.Errorf("Grid() = %v, want precondition error", err)
	}
}

func TestGridEmpty(t *testing.T) {
	s := termQuotes().build(t, DefaultSurfaceConfig())
	points, err := Grid(s, nil, 0)
	if err != nil || len(points) != 0 {
		t.Errorf("Grid(nil) = %v, %v", points, err)
	}
}
