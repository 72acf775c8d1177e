package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ExplicitMissingPathSurfacesError(t *testing.T) {
	_, err := Load("/nonexistent/path/that/will/never/exist.toml")
	require.Error(t, err) // explicit path that doesn't exist must surface, not silently fall back
}

func TestLoad_DefaultsAreValid(t *testing.T) {
	clearSemcoreEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "enforce", cfg.Gates.Mode)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearSemcoreEnv(t)
	t.Setenv("SEMCORE_TRANSPORT", "http")
	t.Setenv("SEMCORE_GATES_MODE", "report_only")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "report_only", cfg.Gates.Mode)
}

func TestValidate_RejectsUnknownTransportMode(t *testing.T) {
	cfg := &Config{
		Transport:  TransportConfig{Mode: "carrier-pigeon"},
		Gates:      GatesConfig{Mode: "enforce"},
		Enrichment: EnrichmentConfig{CacheSize: 1, RatePerSecond: 1},
	}
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownGatesMode(t *testing.T) {
	cfg := &Config{
		Transport:  TransportConfig{Mode: "stdio"},
		Gates:      GatesConfig{Mode: "always-block"},
		Enrichment: EnrichmentConfig{CacheSize: 1, RatePerSecond: 1},
	}
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveEnrichmentFields(t *testing.T) {
	base := Config{
		Transport: TransportConfig{Mode: "stdio"},
		Gates:     GatesConfig{Mode: "enforce"},
	}

	zeroCache := base
	zeroCache.Enrichment = EnrichmentConfig{CacheSize: 0, RatePerSecond: 1}
	require.Error(t, zeroCache.Validate())

	zeroRate := base
	zeroRate.Enrichment = EnrichmentConfig{CacheSize: 1, RatePerSecond: 0}
	require.Error(t, zeroRate.Validate())
}

func clearSemcoreEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SEMCORE_CONFIG", "SEMCORE_STORE_DSN", "SEMCORE_TRANSPORT", "SEMCORE_PORT",
		"SEMCORE_HOST", "SEMCORE_CORS_ORIGINS", "SEMCORE_LOG_LEVEL", "SEMCORE_GATES_MODE",
		"SEMCORE_REVIEW_CYCLE_CRON", "SEMCORE_ENRICHMENT_SOURCE_URL", "SEMCORE_ENRICHMENT_TOKEN",
	} {
		t.Setenv(key, "")
	}
}
