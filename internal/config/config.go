// Package config provides configuration management for the vol surface tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"fxvol/internal/errors"
	"fxvol/internal/interp"
	"fxvol/internal/pricing"
)

// Config holds all application configuration.
type Config struct {
	Solver        pricing.SolverConfig `mapstructure:"solver"`
	Interpolation InterpolationConfig  `mapstructure:"interpolation"`
	Market        MarketConfig         `mapstructure:"market"`
	Logging       LoggingConfig        `mapstructure:"logging"`
	Store         StoreConfig          `mapstructure:"store"`
	Grid          GridConfig           `mapstructure:"grid"`
}

// InterpolationConfig selects the term-structure interpolation scheme.
type InterpolationConfig struct {
	Scheme string `mapstructure:"scheme"` // natural, akima, fritsch-butland, linear
}

// MarketConfig holds market defaults used when a quote sheet omits them.
type MarketConfig struct {
	Spot float64 `mapstructure:"spot"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// StoreConfig holds quote snapshot store configuration.
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// GridConfig holds concurrent grid evaluation settings.
type GridConfig struct {
	Workers int `mapstructure:"workers"` // 0 = GOMAXPROCS
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/fxvol"
	}
	return filepath.Join(home, ".config", "fxvol")
}

// Default returns the configuration used when no file overrides it.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return &Config{
		Solver:        pricing.DefaultSolverConfig(),
		Interpolation: InterpolationConfig{Scheme: string(interp.NaturalCubic)},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       false,
			FilePath:   filepath.Join(configDir, "logs", "fxvol.log"),
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		Store: StoreConfig{DBPath: filepath.Join(configDir, "quotes.db")},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by the template.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, Default(configDir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("solver.strike_lower_mult", d.Solver.StrikeLowerMult)
	v.SetDefault("solver.strike_upper_mult", d.Solver.StrikeUpperMult)
	v.SetDefault("solver.delta_tol", d.Solver.DeltaTol)
	v.SetDefault("solver.delta_grad_eps", d.Solver.DeltaGradEps)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("interpolation.scheme", d.Interpolation.Scheme)
	v.SetDefault("market.spot", d.Market.Spot)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.console", d.Logging.Console)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("store.db_path", d.Store.DBPath)
	v.SetDefault("grid.workers", d.Grid.Workers)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FXVOL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FXVOL_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("FXVOL_INTERPOLATION"); v != "" {
		cfg.Interpolation.Scheme = v
	}
}

// Validate validates the configuration and reports every problem found.
func (c *Config) Validate() error {
	var err error

	if e := c.Solver.Validate(); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := interp.ParseScheme(c.Interpolation.Scheme); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Market.Spot < 0 {
		err = multierr.Append(err, fmt.Errorf("market.spot must be non-negative"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	if c.Grid.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("grid.workers must be non-negative"))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigInvalid, err)
	}
	return nil
}

// Scheme returns the parsed interpolation scheme.
func (c *Config) Scheme() interp.Scheme {
	s, err := interp.ParseScheme(c.Interpolation.Scheme)
	if err != nil {
		return interp.NaturalCubic
	}
	return s
}
