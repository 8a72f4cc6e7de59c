// Package cli provides the command-line interface for the vol surface tools.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fxvol/internal/config"
	"fxvol/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Store     store.QuoteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: config.DefaultConfigDir(),
		Logger:    logger,
	}

	rootCmd := &cobra.Command{
		Use:   "fxvol",
		Short: "FX delta-space volatility surface tools",
		Long: `fxvol builds FX implied volatility surfaces from market quotes.

Quotes are given per tenor in delta space: the ATM straddle vol and the
25 and 10 delta risk reversals and butterflies. fxvol interpolates them
over the term structure, calibrates strikes for each smile and prices the
resulting option chain.

Use 'fxvol help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("config"); dir != "" {
				loaded, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = loaded
				app.ConfigDir = dir
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Store != nil {
				err := app.Store.Close()
				app.Store = nil
				return err
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/fxvol)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addSurfaceCommands(rootCmd, app)
	addQuoteCommands(rootCmd, app)

	return rootCmd
}

// openStore opens the snapshot store on first use.
func (app *App) openStore() (store.QuoteStore, error) {
	if app.Store != nil {
		return app.Store, nil
	}
	s, err := store.NewSQLiteStore(app.Config.Store.DBPath)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug().Str("path", app.Config.Store.DBPath).Msg("SQLite store initialized")
	app.Store = s
	return s, nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("fxvol v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the solver, interpolation, logging and store settings.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := filepath.Join(app.ConfigDir, "config.toml")
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Solver")
	output.Printf("  Strike bracket:  [%gf, %gf]\n", cfg.Solver.StrikeLowerMult, cfg.Solver.StrikeUpperMult)
	output.Printf("  Delta tolerance: %g\n", cfg.Solver.DeltaTol)
	output.Printf("  Gradient step:   %g\n", cfg.Solver.DeltaGradEps)
	output.Printf("  Max iterations:  %d\n", cfg.Solver.MaxIterations)
	output.Println()

	output.Bold("Interpolation")
	output.Printf("  Scheme:          %s\n", cfg.Interpolation.Scheme)
	output.Println()

	output.Bold("Market")
	if cfg.Market.Spot > 0 {
		output.Printf("  Default spot:    %g\n", cfg.Market.Spot)
	} else {
		output.Printf("  Default spot:    %s\n", "(from quote sheet)")
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %s\n", fileSetting(cfg.Logging.File, cfg.Logging.FilePath))
	output.Println()

	output.Bold("Store")
	output.Printf("  Database:        %s\n", cfg.Store.DBPath)
	output.Println()

	output.Bold("Grid")
	output.Printf("  Workers:         %s\n", workerSetting(cfg.Grid.Workers))
}

func fileSetting(enabled bool, path string) string {
	if !enabled {
		return "disabled"
	}
	return path
}

func workerSetting(n int) string {
	if n == 0 {
		return "GOMAXPROCS"
	}
	return fmt.Sprintf("%d", n)
}
