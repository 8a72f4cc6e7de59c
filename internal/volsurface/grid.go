package volsurface

import (
	"github.com/sourcegraph/conc/iter"

	"fxvol/internal/errors"
)

// GridPoint is one tenor of a surface grid.
type GridPoint struct {
	Tenor float64
	Smile *DeltaSpaceSmile
	Chain *SmileChain
}

// Grid queries the surface at every tenor concurrently and converts each
// smile to strike space. Results keep the order of tenors. workers <= 0
// uses GOMAXPROCS goroutines.
func Grid(s *Surface, tenors []float64, workers int) ([]GridPoint, error) {
	if workers < 0 {
		workers = 0
	}
	mapper := iter.Mapper[float64, GridPoint]{MaxGoroutines: workers}
	return mapper.MapErr(tenors, func(T *float64) (GridPoint, error) {
		smile, err := s.VolSmile(*T)
		if err != nil {
			return GridPoint{}, err
		}
		chain, err := smile.ToChainSpace()
		if err != nil {
			return GridPoint{}, errors.Wrapf(err, "grid tenor %v", *T)
		}
		return GridPoint{Tenor: *T, Smile: smile, Chain: chain}, nil
	})
}
