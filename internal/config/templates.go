package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# fxvol configuration

[solver]
# Strike search bracket as multiples of the forward price
strike_lower_mult = 0.1
strike_upper_mult = 10.0
# Delta-matching tolerance for the strike-from-delta root-find
delta_tol = 1e-12
# Relative finite-difference step for the delta gradient
delta_grad_eps = 1e-4
# Iteration budget before the root-find gives up
max_iterations = 100

[interpolation]
# Term-structure scheme: natural, akima, fritsch-butland, linear
scheme = "natural"

[market]
# Spot used when a quote sheet carries none (0 = required on the sheet)
spot = 0.0

[logging]
# Level: debug, info, warn, error
level = "info"
console = true
# Rotated log file
file = false
max_size = 100
max_backups = 7
max_age = 30

[store]
# SQLite quote snapshot database (empty = <config dir>/quotes.db)
# db_path = ""

[grid]
# Concurrent grid workers (0 = GOMAXPROCS)
workers = 0
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
