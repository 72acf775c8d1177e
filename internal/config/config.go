// Package config loads the registry daemon's configuration: compiled-in
// defaults, layered with an optional TOML file, layered with environment
// variables for deployment-time secrets.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/sem-os/semcore/internal/types"
)

// Config holds all configuration for the semcore registry daemon.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Registry   RegistryConfig   `toml:"registry"`
	Server     ServerConfig     `toml:"server"`
	Transport  TransportConfig  `toml:"transport"`
	Log        LogConfig        `toml:"log"`
	Gates      GatesConfig      `toml:"gates"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
}

// RegistryConfig points at the on-disk definitions that seed the registry at
// startup: lexicon concept files, parametric templates, and workflow
// definitions (all YAML, per §6), plus the backing store's DSN when it is
// not the in-memory store.
type RegistryConfig struct {
	LexiconDir   string `toml:"lexicon_dir"`
	TemplatesDir string `toml:"templates_dir"`
	WorkflowsDir string `toml:"workflows_dir"`
	// KnownInputsFile names a flat YAML list of workflow input flag names
	// the orchestrator is allowed to supply directly (as opposed to flags
	// a verb must itself produce). Populates the L1 flag-provenance lint
	// rule's known-input set; empty disables it (every non-produced flag
	// then lints as an error).
	KnownInputsFile string `toml:"known_inputs_file"`
	// StoreDSN addresses a persistent backing store. Empty selects the
	// in-memory store, the only backend implemented today.
	StoreDSN string `toml:"store_dsn"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port (default: 7452). Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address (default: "0.0.0.0"). Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins (default: "*").
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// GatesConfig controls the extended publish-gate engine's enforcement
// posture and the review-cycle sweep's default cadence.
type GatesConfig struct {
	// Mode is "enforce" (Error-severity extended failures block publish) or
	// "report_only" (they're surfaced but never block).
	Mode string `toml:"mode"`
	// ReviewCycleCron is the default cron expression the review-cycle
	// sweep runs on when no object-specific cadence overrides it.
	ReviewCycleCron string `toml:"review_cycle_cron"`
}

// EnrichmentConfig configures the GLEIF-style external enrichment chain:
// the source it calls, the per-source rate limit, and the LRU cache sitting
// in front of it.
type EnrichmentConfig struct {
	SourceURL     string  `toml:"source_url"`
	Token         string  `toml:"token"`
	CacheSize     int     `toml:"cache_size"`
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter
//  2. SEMCORE_CONFIG environment variable
//  3. ./semcore.toml (current directory)
//  4. ~/.config/semcore/semcore.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Registry: RegistryConfig{
			LexiconDir:   "lexicon",
			TemplatesDir: "templates",
			WorkflowsDir: "workflows",
		},
		Server: ServerConfig{
			Name:    "semcored",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "7452",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		Gates: GatesConfig{
			Mode:            string(types.GateModeEnforce),
			ReviewCycleCron: "0 0 * * *", // daily
		},
		Enrichment: EnrichmentConfig{
			CacheSize:     256,
			RatePerSecond: 5,
			Burst:         10,
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}

	if p := os.Getenv("SEMCORE_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("semcore.toml"); err == nil {
		return "semcore.toml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/semcore/semcore.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("SEMCORE_STORE_DSN", &c.Registry.StoreDSN)

	envOverride("SEMCORE_TRANSPORT", &c.Transport.Mode)
	envOverride("SEMCORE_PORT", &c.Transport.Port)
	envOverride("SEMCORE_HOST", &c.Transport.Host)
	envOverride("SEMCORE_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("SEMCORE_LOG_LEVEL", &c.Log.Level)

	envOverride("SEMCORE_GATES_MODE", &c.Gates.Mode)
	envOverride("SEMCORE_REVIEW_CYCLE_CRON", &c.Gates.ReviewCycleCron)

	envOverride("SEMCORE_ENRICHMENT_SOURCE_URL", &c.Enrichment.SourceURL)
	envOverride("SEMCORE_ENRICHMENT_TOKEN", &c.Enrichment.Token)
}

// Validate checks that required fields are present and that every mode
// field names something the process actually implements.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}

	switch types.GateMode(c.Gates.Mode) {
	case types.GateModeEnforce, types.GateModeReportOnly:
	default:
		return fmt.Errorf("invalid gates mode: %q (must be %q or %q)", c.Gates.Mode, types.GateModeEnforce, types.GateModeReportOnly)
	}

	if c.Enrichment.CacheSize <= 0 {
		return fmt.Errorf("enrichment cache_size must be positive, got %d", c.Enrichment.CacheSize)
	}
	if c.Enrichment.RatePerSecond <= 0 {
		return fmt.Errorf("enrichment rate_per_second must be positive, got %v", c.Enrichment.RatePerSecond)
	}

	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
