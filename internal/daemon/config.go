// Package daemon wires the economy core together: configuration, snapshot
// store, ledger, event sinks, tick loop, autosave, and the HTTP API.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/apex-citadels/citadel/internal/domain"
	"github.com/apex-citadels/citadel/internal/ledger"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config is the citadel daemon configuration, loaded from
// ~/.citadel/config.toml. Every field has a sane default; a missing or
// malformed file degrades to DefaultConfig, never an abort.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Economy EconomyConfig `toml:"economy"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (a APIConfig) Addr() string { return fmt.Sprintf("%s:%d", a.Host, a.Port) }

// StorageConfig configures snapshot persistence.
type StorageConfig struct {
	// Path to the SQLite database file. Empty means <data dir>/economy.db.
	Path string `toml:"path"`
}

// EconomyConfig carries the designer tuning for the ledger. Interval fields
// use Go duration strings ("1s", "30s", "5m").
type EconomyConfig struct {
	TickInterval     string  `toml:"tick_interval"`
	AutosaveInterval string  `toml:"autosave_interval"`
	MaxHistory       int     `toml:"max_history"`
	DefaultCapacity  int64   `toml:"default_capacity"`
	OfflineCapHours  float64 `toml:"offline_cap_hours"`

	// Per-resource tuning, keyed by resource name ("stone", "gold", ...).
	StartingAmounts map[string]int64   `toml:"starting_amounts"`
	Capacities      map[string]int64   `toml:"capacities"`
	GenerationRates map[string]float64 `toml:"generation_rates"`
}

// DefaultConfig returns the stock daemon configuration.
func DefaultConfig() Config {
	lc := ledger.DefaultConfig()
	cfg := Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7440,
		},
		Economy: EconomyConfig{
			TickInterval:     "1s",
			AutosaveInterval: "30s",
			MaxHistory:       lc.MaxHistory,
			DefaultCapacity:  lc.DefaultCapacity,
			OfflineCapHours:  lc.OfflineCap.Hours(),
			StartingAmounts:  map[string]int64{},
			Capacities:       map[string]int64{},
			GenerationRates:  map[string]float64{},
		},
	}
	for r, n := range lc.StartingAmounts {
		cfg.Economy.StartingAmounts[r.String()] = n
	}
	for r, c := range lc.Capacities {
		cfg.Economy.Capacities[r.String()] = c
	}
	for r, rate := range lc.GenerationRates {
		cfg.Economy.GenerationRates[r.String()] = rate
	}
	return cfg
}

// LoadConfig reads the TOML config at path (default location when empty).
// A missing file yields DefaultConfig with no error. A malformed file yields
// DefaultConfig and the parse error so the caller can log the fallback —
// configuration problems never stop the daemon.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = filepath.Join(DataDir(), "config.toml")
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DataDir returns the citadel data directory (CITADEL_HOME or ~/.citadel).
func DataDir() string {
	if env := os.Getenv("CITADEL_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".citadel")
}

// StoragePath returns the snapshot database path.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataDir(), "economy.db")
}

// TickInterval returns the parsed tick interval (1s on a bad value).
func (c Config) TickInterval() time.Duration {
	return parseInterval(c.Economy.TickInterval, time.Second)
}

// AutosaveInterval returns the parsed autosave interval (30s on a bad value).
func (c Config) AutosaveInterval() time.Duration {
	return parseInterval(c.Economy.AutosaveInterval, 30*time.Second)
}

func parseInterval(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LedgerConfig converts the per-resource tuning into a ledger.Config.
// Unknown resource names are dropped; the ledger clamps negative values.
func (c Config) LedgerConfig() ledger.Config {
	lc := ledger.Config{
		StartingAmounts: make(map[domain.Resource]int64),
		Capacities:      make(map[domain.Resource]int64),
		GenerationRates: make(map[domain.Resource]float64),
		DefaultCapacity: c.Economy.DefaultCapacity,
		MaxHistory:      c.Economy.MaxHistory,
		OfflineCap:      time.Duration(c.Economy.OfflineCapHours * float64(time.Hour)),
	}
	for name, n := range c.Economy.StartingAmounts {
		if r, err := domain.ParseResource(name); err == nil {
			lc.StartingAmounts[r] = n
		}
	}
	for name, cap := range c.Economy.Capacities {
		if r, err := domain.ParseResource(name); err == nil {
			lc.Capacities[r] = cap
		}
	}
	for name, rate := range c.Economy.GenerationRates {
		if r, err := domain.ParseResource(name); err == nil {
			lc.GenerationRates[r] = rate
		}
	}
	return lc
}
