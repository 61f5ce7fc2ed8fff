package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex-citadels/citadel/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 7440 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 7440)
	}
	if cfg.Economy.TickInterval != "1s" {
		t.Errorf("Economy.TickInterval = %q, want %q", cfg.Economy.TickInterval, "1s")
	}
	if cfg.Economy.DefaultCapacity != 10_000 {
		t.Errorf("Economy.DefaultCapacity = %d, want 10000", cfg.Economy.DefaultCapacity)
	}
	if cfg.Economy.OfflineCapHours != 8 {
		t.Errorf("Economy.OfflineCapHours = %v, want 8", cfg.Economy.OfflineCapHours)
	}
	if cfg.Economy.MaxHistory != 100 {
		t.Errorf("Economy.MaxHistory = %d, want 100", cfg.Economy.MaxHistory)
	}
	if cfg.Economy.StartingAmounts["stone"] != 1000 {
		t.Errorf("starting stone = %d, want 1000", cfg.Economy.StartingAmounts["stone"])
	}
	if cfg.Economy.GenerationRates["stone"] != 10 {
		t.Errorf("stone rate = %v, want 10", cfg.Economy.GenerationRates["stone"])
	}
}

func TestConfig_Intervals(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1s", time.Second},
		{"250ms", 250 * time.Millisecond},
		{"5m", 5 * time.Minute},
		{"", time.Second},        // default
		{"soonish", time.Second}, // unparseable
		{"-3s", time.Second},     // non-positive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Economy.TickInterval = tt.input
			if got := cfg.TickInterval(); got != tt.want {
				t.Errorf("TickInterval(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig(missing) error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("missing file should yield defaults, got port %d", cfg.API.Port)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[economy\ntick_interval = ???"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("LoadConfig(malformed) error = nil, want parse error for logging")
	}
	// Still usable: degrades to defaults.
	if cfg.Economy.DefaultCapacity != 10_000 {
		t.Errorf("malformed file should yield defaults, got capacity %d", cfg.Economy.DefaultCapacity)
	}
}

func TestLoadConfig_Values(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
host = "0.0.0.0"
port = 9000

[economy]
tick_interval = "500ms"
default_capacity = 25000
offline_cap_hours = 2.5

[economy.starting_amounts]
stone = 5000
gems = 10

[economy.generation_rates]
crystal = 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:9000", cfg.API.Addr())
	}
	if cfg.TickInterval() != 500*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 500ms", cfg.TickInterval())
	}
	if cfg.Economy.StartingAmounts["stone"] != 5000 {
		t.Errorf("starting stone = %d, want 5000", cfg.Economy.StartingAmounts["stone"])
	}
	if cfg.Economy.StartingAmounts["gems"] != 10 {
		t.Errorf("starting gems = %d, want 10", cfg.Economy.StartingAmounts["gems"])
	}
}

func TestConfig_LedgerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Economy.StartingAmounts["mithril"] = 999 // not a real resource
	cfg.Economy.Capacities["gold"] = 77_000
	cfg.Economy.OfflineCapHours = 2

	lc := cfg.LedgerConfig()

	if lc.Capacities[domain.Gold] != 77_000 {
		t.Errorf("gold capacity = %d, want 77000", lc.Capacities[domain.Gold])
	}
	if lc.OfflineCap != 2*time.Hour {
		t.Errorf("OfflineCap = %v, want 2h", lc.OfflineCap)
	}
	for r := range lc.StartingAmounts {
		if !r.Valid() {
			t.Errorf("LedgerConfig() kept unknown resource %q", r)
		}
	}
}
