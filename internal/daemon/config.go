// Package daemon wires storage, the reputation ledger, event sinks, and the
// HTTP API into the long-running repute service.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/repute-network/repute/internal/domain"
)

// Config is the daemon configuration, loaded from ~/.repute/config.toml.
type Config struct {
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Admin     AdminConfig     `toml:"admin"`
	Decay     DecayConfig     `toml:"decay"`
	Weighting WeightingConfig `toml:"weighting"`
	Log       LogConfig       `toml:"log"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// StorageConfig configures durable state.
type StorageConfig struct {
	// Path to the SQLite database. Empty means <home>/repute.db;
	// ":memory:" runs fully in-memory (state lost on exit).
	Path string `toml:"path"`
}

// AdminConfig names the administrator principal.
type AdminConfig struct {
	Identity string `toml:"identity"`
}

// DecayConfig seeds the decay parameters on first boot. Once a parameter
// block has been persisted, the stored block wins.
type DecayConfig struct {
	Enabled      bool   `toml:"enabled"`
	Period       string `toml:"period"`         // Go duration, e.g. "720h"
	RatePerMille int64  `toml:"rate_per_mille"` // units per 1000 of score per period
}

// WeightingConfig seeds the rating-weight parameters on first boot.
type WeightingConfig struct {
	MinRaterReputation int64 `toml:"min_rater_reputation"`
	MaxMultiplier      int64 `toml:"max_multiplier"` // 100 = ×1.00
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() Config {
	p := domain.DefaultParams()
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7410,
			Metrics: true,
		},
		Storage: StorageConfig{
			Path: "",
		},
		Admin: AdminConfig{
			Identity: "admin",
		},
		Decay: DecayConfig{
			Enabled:      p.DecayEnabled,
			Period:       p.DecayPeriod.String(),
			RatePerMille: p.DecayRatePerMille,
		},
		Weighting: WeightingConfig{
			MinRaterReputation: p.MinRaterReputation,
			MaxMultiplier:      p.MaxWeightMult,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// HomeDir returns the repute home directory, honoring REPUTE_HOME.
func HomeDir() string {
	if env := os.Getenv("REPUTE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".repute")
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	return filepath.Join(HomeDir(), "config.toml")
}

// LoadConfig reads the config file at path, falling back to defaults for
// anything the file leaves unset. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DatabasePath resolves the storage path, defaulting under the home dir.
func (c Config) DatabasePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(HomeDir(), "repute.db")
}

// ListenAddr returns the host:port the API binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// Params converts the seed configuration into a domain parameter block.
func (c Config) Params() (domain.Params, error) {
	period, err := time.ParseDuration(c.Decay.Period)
	if err != nil {
		return domain.Params{}, fmt.Errorf("parse decay period %q: %w", c.Decay.Period, err)
	}
	p := domain.Params{
		DecayEnabled:       c.Decay.Enabled,
		DecayPeriod:        period,
		DecayRatePerMille:  c.Decay.RatePerMille,
		MinRaterReputation: c.Weighting.MinRaterReputation,
		MaxWeightMult:      c.Weighting.MaxMultiplier,
	}
	if !p.ValidWeighting() {
		return domain.Params{}, domain.ErrInvalidParameters
	}
	return p, nil
}
