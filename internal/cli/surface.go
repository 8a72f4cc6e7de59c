package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fxvol/internal/errors"
	"fxvol/internal/interp"
	"fxvol/internal/logging"
	"fxvol/internal/marketdata"
	"fxvol/internal/models"
	"fxvol/internal/volsurface"
)

var chainLabels = [...]string{"10P", "25P", "ATM", "25C", "10C"}

// addSurfaceCommands adds the smile, chain, premiums and grid commands.
func addSurfaceCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSmileCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newPremiumsCmd(app))
	rootCmd.AddCommand(newGridCmd(app))
}

// addSourceFlags registers the flags selecting the quotes a surface is built from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("quotes", "", "CSV quote sheet")
	cmd.Flags().String("snapshot", "", "stored quote snapshot name")
	cmd.Flags().Float64("spot", 0, "spot override")
	cmd.Flags().String("scheme", "", "interpolation scheme override (natural, akima, fritsch-butland, linear)")
	cmd.MarkFlagsMutuallyExclusive("quotes", "snapshot")
}

// loadSnapshot reads the quotes named by --quotes or --snapshot.
func (app *App) loadSnapshot(ctx context.Context, cmd *cobra.Command) (*models.QuoteSnapshot, error) {
	sheet, _ := cmd.Flags().GetString("quotes")
	name, _ := cmd.Flags().GetString("snapshot")
	spot, _ := cmd.Flags().GetFloat64("spot")

	var (
		snap *models.QuoteSnapshot
		err  error
	)
	switch {
	case sheet != "":
		defaultSpot := app.Config.Market.Spot
		if spot > 0 {
			defaultSpot = spot
		}
		snap, err = marketdata.LoadSheet(sheet, "", defaultSpot)
	case name != "":
		st, openErr := app.openStore()
		if openErr != nil {
			return nil, openErr
		}
		snap, err = st.GetSnapshot(ctx, name)
	default:
		return nil, fmt.Errorf("one of --quotes or --snapshot is required")
	}
	if err != nil {
		return nil, err
	}

	if spot > 0 && spot != snap.Spot {
		snap.Spot = spot
		for i := range snap.Points {
			snap.Points[i].Spot = spot
		}
	}
	return snap, nil
}

// surfaceConfig builds the surface settings from the loaded configuration.
func (app *App) surfaceConfig(cmd *cobra.Command) (volsurface.SurfaceConfig, error) {
	scheme := app.Config.Scheme()
	if name, _ := cmd.Flags().GetString("scheme"); name != "" {
		parsed, err := interp.ParseScheme(name)
		if err != nil {
			return volsurface.SurfaceConfig{}, err
		}
		scheme = parsed
	}
	fitter, err := interp.NewFitter(scheme)
	if err != nil {
		return volsurface.SurfaceConfig{}, err
	}
	logger := logging.WithOperation(app.Logger, "surface")
	return volsurface.SurfaceConfig{
		Engine: volsurface.DefaultEngine(),
		Solver: app.Config.Solver,
		Fitter: fitter,
		Logger: &logger,
	}, nil
}

// loadSurface loads the selected quotes and builds a surface from them.
func (app *App) loadSurface(cmd *cobra.Command) (*volsurface.Surface, *models.QuoteSnapshot, error) {
	snap, err := app.loadSnapshot(cmd.Context(), cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := app.surfaceConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	surface, err := marketdata.BuildSurface(snap, cfg)
	if err != nil {
		return nil, nil, err
	}
	app.Logger.Debug().
		Str("snapshot", snap.Name).
		Int("tenors", len(snap.Points)).
		Float64("max_tenor", surface.MaxTenor()).
		Msg("Surface built")
	return surface, snap, nil
}

// smileAt queries the surface and logs the resulting smile.
func (app *App) smileAt(surface *volsurface.Surface, tenor float64) (*volsurface.DeltaSpaceSmile, error) {
	smile, err := surface.VolSmile(tenor)
	if err != nil {
		return nil, err
	}
	logging.LogSmile(app.Logger, tenor, smile.ForwardPrice(), smile.ATM(), smile.RR25(), smile.BB25(), smile.RR10(), smile.BB10())
	return smile, nil
}

// reportCalibration logs a calibration error at the level matching its cause.
func (app *App) reportCalibration(tenor float64, err error) {
	var ce *errors.ConsistencyError
	if errors.As(err, &ce) {
		logging.LogConsistencyWarning(app.Logger, tenor, ce.Strikes)
		return
	}
	logging.LogCalibrationFailure(app.Logger, tenor, err)
}

type smileView struct {
	Tenor   float64                     `json:"tenor"`
	Spot    float64                     `json:"spot"`
	Forward float64                     `json:"forward"`
	Quotes  volsurface.DeltaSpaceQuotes `json:"quotes"`
	Wings   volsurface.WingVols         `json:"wing_vols"`
}

func newSmileCmd(app *App) *cobra.Command {
	var tenor float64

	cmd := &cobra.Command{
		Use:   "smile",
		Short: "Show the interpolated delta-space smile at a tenor",
		Example: `  fxvol smile --quotes eurusd.csv --tenor 0.5
  fxvol smile --snapshot eurusd --tenor 1 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			surface, _, err := app.loadSurface(cmd)
			if err != nil {
				return err
			}
			smile, err := app.smileAt(surface, tenor)
			if err != nil {
				return err
			}

			view := smileView{
				Tenor:   smile.Tenor(),
				Spot:    surface.Spot(),
				Forward: smile.ForwardPrice(),
				Quotes:  smile.Quotes(),
				Wings:   smile.WingVols(),
			}
			if output.IsJSON() {
				return output.JSON(view)
			}

			output.Bold("Smile at T=%g", view.Tenor)
			output.Printf("  Spot:     %.6f\n", view.Spot)
			output.Printf("  Forward:  %.6f\n", view.Forward)
			output.Println()

			table := NewTable(output, "QUOTE", "VOL")
			table.AddRow("ATM", FormatVol(view.Quotes.ATM))
			table.AddRow("RR25", FormatVol(view.Quotes.RR25))
			table.AddRow("BB25", FormatVol(view.Quotes.BB25))
			table.AddRow("RR10", FormatVol(view.Quotes.RR10))
			table.AddRow("BB10", FormatVol(view.Quotes.BB10))
			table.Render()
			output.Println()

			wings := NewTable(output, "WING", "VOL")
			wings.AddRow("10P", FormatVol(view.Wings.Put10))
			wings.AddRow("25P", FormatVol(view.Wings.Put25))
			wings.AddRow("25C", FormatVol(view.Wings.Call25))
			wings.AddRow("10C", FormatVol(view.Wings.Call10))
			wings.Render()

			output.Println()
			output.Printf("  Skew:     %s\n", output.Signed(view.Quotes.RR25*100, "%+.3f%%"))
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().Float64Var(&tenor, "tenor", 0, "tenor in years")
	cmd.MarkFlagRequired("tenor")

	return cmd
}

type chainRow struct {
	Label   string            `json:"label"`
	Type    models.OptionType `json:"type"`
	Strike  float64           `json:"strike"`
	Vol     float64           `json:"vol"`
	Premium float64           `json:"premium"`
	models.Greeks
}

type chainView struct {
	Tenor   float64    `json:"tenor"`
	Forward float64    `json:"forward"`
	Points  []chainRow `json:"points"`
}

func buildChainView(chain *volsurface.SmileChain) chainView {
	strikes := chain.Strikes()
	vols := chain.Vols()
	types := chain.OptionTypes()
	premiums := chain.Premiums()
	greeks := chain.Greeks()

	view := chainView{Tenor: chain.Tenor(), Forward: chain.ForwardPrice()}
	for i := range strikes {
		label := fmt.Sprintf("K%d", i+1)
		if len(strikes) == len(chainLabels) {
			label = chainLabels[i]
		}
		view.Points = append(view.Points, chainRow{
			Label:   label,
			Type:    types[i],
			Strike:  strikes[i],
			Vol:     vols[i],
			Premium: premiums[i],
			Greeks:  greeks[i],
		})
	}
	return view
}

func newChainCmd(app *App) *cobra.Command {
	var tenor float64

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Calibrate strikes and price the option chain at a tenor",
		Example: `  fxvol chain --quotes eurusd.csv --tenor 0.25
  fxvol chain --snapshot eurusd --tenor 1 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			surface, _, err := app.loadSurface(cmd)
			if err != nil {
				return err
			}
			smile, err := app.smileAt(surface, tenor)
			if err != nil {
				return err
			}
			chain, err := smile.ToChainSpace()
			if err != nil {
				app.reportCalibration(tenor, err)
				if errors.Is(err, errors.ErrInconsistentSmile) {
					output.Warning("Quotes at T=%g imply non-ascending strikes", tenor)
				}
				return err
			}

			view := buildChainView(chain)
			if output.IsJSON() {
				return output.JSON(view)
			}

			output.Bold("Chain at T=%g  (forward %.6f)", view.Tenor, view.Forward)
			table := NewTable(output, "POINT", "TYPE", "STRIKE", "VOL", "PREMIUM", "DELTA", "GAMMA", "VEGA", "VANNA", "VOLGA")
			for _, p := range view.Points {
				table.AddRow(
					p.Label,
					string(p.Type),
					FormatStrike(p.Strike),
					FormatVol(p.Vol),
					fmt.Sprintf("%.6f", p.Premium),
					FormatGreek(p.Delta),
					fmt.Sprintf("%.4f", p.Gamma),
					fmt.Sprintf("%.4f", p.Vega),
					FormatGreek(p.Vanna),
					fmt.Sprintf("%.4f", p.Volga),
				)
			}
			table.Render()
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().Float64Var(&tenor, "tenor", 0, "tenor in years")
	cmd.MarkFlagRequired("tenor")

	return cmd
}

func newPremiumsCmd(app *App) *cobra.Command {
	var tenor float64

	cmd := &cobra.Command{
		Use:   "premiums",
		Short: "Express the delta-space quotes at a tenor in premium units",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			surface, _, err := app.loadSurface(cmd)
			if err != nil {
				return err
			}
			smile, err := app.smileAt(surface, tenor)
			if err != nil {
				return err
			}
			premiums, err := smile.Premiums()
			if err != nil {
				app.reportCalibration(tenor, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"tenor":    smile.Tenor(),
					"forward":  smile.ForwardPrice(),
					"premiums": premiums,
				})
			}

			output.Bold("Premiums at T=%g  (forward %.6f)", smile.Tenor(), smile.ForwardPrice())
			table := NewTable(output, "QUOTE", "PREMIUM")
			table.AddRow("ATM", fmt.Sprintf("%.6f", premiums.ATM))
			table.AddRow("RR25", fmt.Sprintf("%+.6f", premiums.RR25))
			table.AddRow("BB25", fmt.Sprintf("%+.6f", premiums.BB25))
			table.AddRow("RR10", fmt.Sprintf("%+.6f", premiums.RR10))
			table.AddRow("BB10", fmt.Sprintf("%+.6f", premiums.BB10))
			table.Render()
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().Float64Var(&tenor, "tenor", 0, "tenor in years")
	cmd.MarkFlagRequired("tenor")

	return cmd
}

type gridRow struct {
	Tenor   float64   `json:"tenor"`
	Forward float64   `json:"forward"`
	Strikes []float64 `json:"strikes"`
	Vols    []float64 `json:"vols"`
}

func newGridCmd(app *App) *cobra.Command {
	var (
		tenors  []float64
		workers int
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Calibrate strike-space smiles across many tenors",
		Long: `Query the surface at every tenor concurrently and convert each smile to
strike space. Defaults to the quoted tenors of the sheet.`,
		Example: `  fxvol grid --quotes eurusd.csv --tenors 0.1,0.25,0.5,1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			surface, snap, err := app.loadSurface(cmd)
			if err != nil {
				return err
			}
			if len(tenors) == 0 {
				for _, T := range snap.Tenors() {
					if T <= surface.MaxTenor() {
						tenors = append(tenors, T)
					}
				}
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.Config.Grid.Workers
			}

			points, err := volsurface.Grid(surface, tenors, workers)
			if err != nil {
				app.Logger.Error().Err(err).Int("tenors", len(tenors)).Msg("Grid evaluation failed")
				return err
			}

			rows := make([]gridRow, len(points))
			for i, p := range points {
				rows[i] = gridRow{
					Tenor:   p.Tenor,
					Forward: p.Chain.ForwardPrice(),
					Strikes: p.Chain.Strikes(),
					Vols:    p.Chain.Vols(),
				}
			}
			if output.IsJSON() {
				return output.JSON(rows)
			}

			headers := []string{"TENOR", "FORWARD"}
			for _, l := range chainLabels {
				headers = append(headers, "K"+l)
			}
			for _, l := range chainLabels {
				headers = append(headers, "V"+l)
			}
			table := NewTable(output, headers...)
			for _, r := range rows {
				cells := []string{FormatTenor(r.Tenor), FormatStrike(r.Forward)}
				for _, k := range r.Strikes {
					cells = append(cells, FormatStrike(k))
				}
				for _, v := range r.Vols {
					cells = append(cells, FormatVol(v))
				}
				table.AddRow(cells...)
			}
			table.Render()
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().Float64SliceVar(&tenors, "tenors", nil, "comma-separated tenors in years")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (default from config)")

	return cmd
}
