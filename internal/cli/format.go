package cli

import (
	"fmt"
	"math"
)

// FormatVol formats a volatility as a percentage with 4 decimal places.
func FormatVol(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f%%", v*100)
}

// FormatRate formats a continuously-compounded rate as a percentage.
func FormatRate(r float64) string {
	return fmt.Sprintf("%.4f%%", r*100)
}

// FormatStrike formats a strike or forward price with 6 decimal places.
func FormatStrike(k float64) string {
	return fmt.Sprintf("%.6f", k)
}

// FormatTenor formats a tenor in years using market labels where it matches
// a whole number of years, months or weeks (1Y, 6M, 2W).
func FormatTenor(T float64) string {
	const eps = 1e-9
	if y := math.Round(T); y >= 1 && math.Abs(T-y) < eps {
		return fmt.Sprintf("%dY", int(y))
	}
	if m := math.Round(T * 12); m >= 1 && math.Abs(T*12-m) < eps {
		return fmt.Sprintf("%dM", int(m))
	}
	if w := math.Round(T * 52); w >= 1 && math.Abs(T*52-w) < eps {
		return fmt.Sprintf("%dW", int(w))
	}
	return fmt.Sprintf("%gY", T)
}

// FormatGreek formats a sensitivity with a sign and 4 decimal places.
func FormatGreek(g float64) string {
	return fmt.Sprintf("%+.4f", g)
}
