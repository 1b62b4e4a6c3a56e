package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/tabard/internal/store"
)

// Config holds every operator-facing setting of the gateway process.
type Config struct {
	// Database connection.
	DBDriver string `env:"TABARD_DB_DRIVER" envDefault:"sqlite3"`
	DBPath   string `env:"TABARD_DB_PATH"`
	DBName   string `env:"TABARD_DB_NAME" envDefault:"main"`
	DBUser   string `env:"TABARD_DB_USER"`
	DBToken  string `env:"TABARD_DB_TOKEN"`

	// Backup mirroring. Disabled by default; enabling it without a
	// webhook URL fails validation rather than silently pointing at a
	// built-in endpoint.
	BackupEnabled bool   `env:"TABARD_BACKUP_ENABLED" envDefault:"false"`
	BackupURL     string `env:"TABARD_BACKUP_URL"`

	// RawQueryEnabled opens the verbatim-SQL route. Off by default.
	RawQueryEnabled bool `env:"TABARD_RAW_QUERY_ENABLED" envDefault:"false"`

	// HTTP surfaces. MetricsAddr empty means no metrics listener.
	ListenAddr  string `env:"TABARD_LISTEN_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"TABARD_METRICS_ADDR"`

	// TablesFile points at the optional CUE table map.
	TablesFile string `env:"TABARD_TABLES_FILE"`
}

// FromEnv parses the TABARD_* environment into a Config. Parsing alone
// does not validate cross-field requirements; call Validate once flag
// overrides are applied.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the field combinations a running gateway needs.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required (TABARD_DB_PATH or --db)")
	}
	if c.DBDriver != store.DriverCGO && c.DBDriver != store.DriverPure {
		return fmt.Errorf("unknown database driver %q (use %q or %q)", c.DBDriver, store.DriverCGO, store.DriverPure)
	}
	if c.DBToken != "" && c.DBDriver != store.DriverCGO {
		return fmt.Errorf("database auth requires the %s driver", store.DriverCGO)
	}
	if c.BackupEnabled {
		if c.BackupURL == "" {
			return fmt.Errorf("backup is enabled but no webhook URL is set (TABARD_BACKUP_URL or --backup-url)")
		}
		u, err := url.Parse(c.BackupURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backup webhook URL %q is not an absolute URL", c.BackupURL)
		}
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}
