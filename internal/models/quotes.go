package models

import "time"

// QuotePoint is one tenor of a delta-space quote sheet.
type QuotePoint struct {
	Tenor float64 `csv:"tenor" json:"tenor"`
	Spot  float64 `csv:"spot" json:"spot"`
	Yield float64 `csv:"yield" json:"yield"`
	ATM   float64 `csv:"atm" json:"atm"`
	RR25  float64 `csv:"rr25" json:"rr25"`
	BB25  float64 `csv:"bb25" json:"bb25"`
	RR10  float64 `csv:"rr10" json:"rr10"`
	BB10  float64 `csv:"bb10" json:"bb10"`
}

// QuoteSnapshot is a named set of quotes sharing one spot.
type QuoteSnapshot struct {
	Name      string       `json:"name"`
	Spot      float64      `json:"spot"`
	Source    string       `json:"source,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Points    []QuotePoint `json:"points"`
}

// Tenors returns the tenors of the snapshot in point order.
func (s *QuoteSnapshot) Tenors() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Tenor
	}
	return out
}
