// Package interp provides the one-dimensional interpolant capability used for
// term structures: fit(xs, ys) returns a read-only predictor f(x).
package interp

import (
	"fmt"
	"math"
	"strings"

	gonuminterp "gonum.org/v1/gonum/interp"

	"fxvol/internal/errors"
)

// Predictor evaluates a fitted curve. Implementations hold no per-call state
// and may be evaluated concurrently.
type Predictor interface {
	Predict(x float64) float64
}

// Fitter builds a Predictor through the points (xs[i], ys[i]).
type Fitter interface {
	Fit(xs, ys []float64) (Predictor, error)
}

// FitterFunc adapts a function to the Fitter interface.
type FitterFunc func(xs, ys []float64) (Predictor, error)

// Fit calls f(xs, ys).
func (f FitterFunc) Fit(xs, ys []float64) (Predictor, error) {
	return f(xs, ys)
}

// Scheme names an interpolation scheme.
type Scheme string

// Supported schemes
const (
	NaturalCubic   Scheme = "natural"
	Akima          Scheme = "akima"
	FritschButland Scheme = "fritsch-butland"
	Linear         Scheme = "linear"
)

// Schemes lists every supported scheme.
func Schemes() []Scheme {
	return []Scheme{NaturalCubic, Akima, FritschButland, Linear}
}

// ParseScheme parses a scheme name, case-insensitively.
func ParseScheme(name string) (Scheme, error) {
	s := Scheme(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Schemes() {
		if s == known {
			return s, nil
		}
	}
	return "", errors.NewPreconditionError("scheme", name, fmt.Sprintf("unknown interpolation scheme, want one of %v", Schemes()))
}

// NewFitter returns the Fitter for a scheme.
func NewFitter(s Scheme) (Fitter, error) {
	switch s {
	case NaturalCubic:
		return gonumFitter(2, func() gonuminterp.FittablePredictor { return &gonuminterp.NaturalCubic{} }), nil
	case Akima:
		return gonumFitter(3, func() gonuminterp.FittablePredictor { return &gonuminterp.AkimaSpline{} }), nil
	case FritschButland:
		return gonumFitter(3, func() gonuminterp.FittablePredictor { return &gonuminterp.FritschButland{} }), nil
	case Linear:
		return gonumFitter(2, func() gonuminterp.FittablePredictor { return &gonuminterp.PiecewiseLinear{} }), nil
	default:
		return nil, errors.NewPreconditionError("scheme", string(s), "unknown interpolation scheme")
	}
}

// DefaultFitter returns the natural cubic spline fitter.
func DefaultFitter() Fitter {
	f, _ := NewFitter(NaturalCubic)
	return f
}

// gonumFitter validates inputs before handing copies to gonum, whose Fit
// methods panic on malformed data.
func gonumFitter(minPoints int, newPredictor func() gonuminterp.FittablePredictor) FitterFunc {
	return func(xs, ys []float64) (Predictor, error) {
		if err := validatePoints(xs, ys, minPoints); err != nil {
			return nil, err
		}

		x := append([]float64(nil), xs...)
		y := append([]float64(nil), ys...)

		// Through two knots every cubic scheme reduces to the chord.
		p := newPredictor()
		if len(x) == 2 {
			p = &gonuminterp.PiecewiseLinear{}
		}
		if err := p.Fit(x, y); err != nil {
			return nil, errors.Wrap(err, "fitting interpolant")
		}
		return p, nil
	}
}

func validatePoints(xs, ys []float64, minPoints int) error {
	if len(xs) != len(ys) {
		return errors.NewPreconditionError("ys", len(ys), fmt.Sprintf("length must match xs length %d", len(xs)))
	}
	if len(xs) < minPoints {
		return errors.NewPreconditionError("xs", len(xs), fmt.Sprintf("need at least %d points", minPoints))
	}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return errors.NewPreconditionError("points", i, "values must be finite")
		}
		if i > 0 && !(xs[i] > xs[i-1]) {
			return errors.NewPreconditionError("xs", xs[i], "must be strictly increasing")
		}
	}
	return nil
}
