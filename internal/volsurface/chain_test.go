package volsurface

import (
	"math"
	"testing"

	"fxvol/internal/errors"
	"fxvol/internal/models"
)

func TestNewSmileChainValidation(t *testing.T) {
	fwd := models.NewForward(1.2, 0.01, 1)

	tests := []struct {
		name    string
		strikes []float64
		sigmas  []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []float64{1.1, 1.2}, []float64{0.1}},
		{"descending", []float64{1.3, 1.2}, []float64{0.1, 0.1}},
		{"non-positive strike", []float64{0, 1.2}, []float64{0.1, 0.1}},
		{"NaN vol", []float64{1.1, 1.2}, []float64{math.NaN(), 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSmileChain(nil, fwd, tt.strikes, tt.sigmas); !errors.Is(err, errors.ErrPrecondition) {
				t.Errorf("NewSmileChain() = %v, want precondition error", err)
			}
		})
	}
}

func TestSmileChainOutputs(t *testing.T) {
	fwd := models.NewForward(1.2, 0.01, 0.5)
	strikes := []float64{1.05, 1.15, fwd.Price(), 1.25, 1.35}
	sigmas := []float64{0.12, 0.105, 0.1, 0.102, 0.11}

	chain, err := NewSmileChain(nil, fwd, strikes, sigmas)
	if err != nil {
		t.Fatalf("NewSmileChain() error = %v", err)
	}
	strikes[0] = 9

	if chain.Len() != 5 || chain.Strikes()[0] != 1.05 {
		t.Errorf("chain does not own its strikes: %v", chain.Strikes())
	}

	types := chain.OptionTypes()
	wantTypes := []models.OptionType{models.Put, models.Put, models.Call, models.Call, models.Call}
	for i := range wantTypes {
		if types[i] != wantTypes[i] {
			t.Errorf("type[%d] = %s, want %s", i, types[i], wantTypes[i])
		}
	}

	engine := DefaultEngine()
	premiums := chain.Premiums()
	deltas := chain.Deltas()
	greeks := chain.Greeks()
	vegas := chain.Vegas()
	gammas := chain.Gammas()
	vannas := chain.Vannas()
	volgas := chain.Volgas()
	for _, out := range [][]float64{premiums, deltas, vegas, gammas, vannas, volgas} {
		if len(out) != chain.Len() {
			t.Fatalf("output length %d, want %d", len(out), chain.Len())
		}
	}
	if len(greeks) != chain.Len() {
		t.Fatalf("Greeks() length %d", len(greeks))
	}

	for i, k := range chain.Strikes() {
		sigma := chain.Vols()[i]
		if want := engine.Premium(fwd, k, sigma, wantTypes[i]); premiums[i] != want {
			t.Errorf("premium[%d] = %v, want %v", i, premiums[i], want)
		}
		if greeks[i].Delta != deltas[i] || greeks[i].Vega != vegas[i] || greeks[i].Gamma != gammas[i] ||
			greeks[i].Vanna != vannas[i] || greeks[i].Volga != volgas[i] {
			t.Errorf("Greeks()[%d] = %+v disagrees with per-Greek outputs", i, greeks[i])
		}
		if premiums[i] <= 0 || vegas[i] <= 0 || gammas[i] <= 0 {
			t.Errorf("point %d: premium %v, vega %v, gamma %v should be positive", i, premiums[i], vegas[i], gammas[i])
		}
	}
	if deltas[0] >= 0 || deltas[4] <= 0 {
		t.Errorf("put delta %v should be negative and call delta %v positive", deltas[0], deltas[4])
	}
}
