// Package marketdata loads delta-space quote sheets and turns them into the
// six term-structure inputs of a vol surface.
package marketdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"fxvol/internal/errors"
	"fxvol/internal/models"
	"fxvol/internal/volsurface"
)

// ReadSheet parses a CSV quote sheet with the header
// tenor,spot,yield,atm,rr25,bb25,rr10,bb10. The spot may be given on any
// subset of rows but must agree wherever it is non-zero; defaultSpot is used
// when no row carries one. Rows are returned sorted by tenor.
func ReadSheet(r io.Reader, name string, defaultSpot float64) (*models.QuoteSnapshot, error) {
	var points []models.QuotePoint
	if err := gocsv.Unmarshal(r, &points); err != nil {
		return nil, errors.NewDataError("quote_sheet", name, "parsing CSV", err)
	}
	if len(points) == 0 {
		return nil, errors.NewDataError("quote_sheet", name, "sheet has no quote rows", errors.ErrDataNotFound)
	}

	spot := 0.0
	for i, p := range points {
		if p.Spot == 0 {
			continue
		}
		if spot != 0 && p.Spot != spot {
			return nil, errors.NewPreconditionError(fmt.Sprintf("rows[%d].spot", i), p.Spot, fmt.Sprintf("conflicts with spot %v", spot))
		}
		spot = p.Spot
	}
	if spot == 0 {
		spot = defaultSpot
	}
	if !(spot > 0) {
		return nil, errors.NewPreconditionError("spot", spot, "sheet carries no spot and no default is configured")
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Tenor < points[j].Tenor })
	for i := range points {
		points[i].Spot = spot
	}

	return &models.QuoteSnapshot{
		Name:      name,
		Spot:      spot,
		Source:    name,
		CreatedAt: time.Now().UTC(),
		Points:    points,
	}, nil
}

// LoadSheet reads a quote sheet from a file. The snapshot is named after the
// file unless name is given.
func LoadSheet(path, name string, defaultSpot float64) (*models.QuoteSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("quote_sheet", path, "opening file", err)
	}
	defer f.Close()

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	snap, err := ReadSheet(f, name, defaultSpot)
	if err != nil {
		return nil, err
	}
	snap.Source = path
	return snap, nil
}

// WriteSheet writes a snapshot back out as a CSV quote sheet.
func WriteSheet(w io.Writer, snap *models.QuoteSnapshot) error {
	points := append([]models.QuotePoint(nil), snap.Points...)
	return gocsv.Marshal(&points, w)
}

// Inputs holds the six term structures of a surface.
type Inputs struct {
	Curve     volsurface.ForwardCurve
	Straddles volsurface.Straddles
	RR25      volsurface.RiskReversals
	BB25      volsurface.Butterflies
	RR10      volsurface.RiskReversals
	BB10      volsurface.Butterflies
}

// BuildInputs splits a snapshot into the six validated term structures.
func BuildInputs(snap *models.QuoteSnapshot) (*Inputs, error) {
	n := len(snap.Points)
	tenors := make([]float64, n)
	yields := make([]float64, n)
	atm := make([]float64, n)
	rr25 := make([]float64, n)
	bb25 := make([]float64, n)
	rr10 := make([]float64, n)
	bb10 := make([]float64, n)
	for i, p := range snap.Points {
		tenors[i] = p.Tenor
		yields[i] = p.Yield
		atm[i] = p.ATM
		rr25[i] = p.RR25
		bb25[i] = p.BB25
		rr10[i] = p.RR10
		bb10[i] = p.BB10
	}

	var (
		in  Inputs
		err error
	)
	if in.Curve, err = volsurface.NewForwardCurve(snap.Spot, yields, tenors); err != nil {
		return nil, errors.Wrap(err, "forward curve")
	}
	if in.Straddles, err = volsurface.NewStraddles(atm, tenors); err != nil {
		return nil, errors.Wrap(err, "ATM straddles")
	}
	if in.RR25, err = volsurface.NewRiskReversals(volsurface.Delta25, rr25, tenors); err != nil {
		return nil, errors.Wrap(err, "25 delta risk reversals")
	}
	if in.BB25, err = volsurface.NewButterflies(volsurface.Delta25, bb25, tenors); err != nil {
		return nil, errors.Wrap(err, "25 delta butterflies")
	}
	if in.RR10, err = volsurface.NewRiskReversals(volsurface.Delta10, rr10, tenors); err != nil {
		return nil, errors.Wrap(err, "10 delta risk reversals")
	}
	if in.BB10, err = volsurface.NewButterflies(volsurface.Delta10, bb10, tenors); err != nil {
		return nil, errors.Wrap(err, "10 delta butterflies")
	}
	return &in, nil
}

// BuildSurface builds a surface from a snapshot.
func BuildSurface(snap *models.QuoteSnapshot, cfg volsurface.SurfaceConfig) (*volsurface.Surface, error) {
	in, err := BuildInputs(snap)
	if err != nil {
		return nil, err
	}
	return volsurface.NewSurfaceWithConfig(cfg, in.Curve, in.Straddles, in.RR25, in.BB25, in.RR10, in.BB10)
}
