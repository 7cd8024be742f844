package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Google.MaxResults)
	assert.Equal(t, 5, cfg.Google.RequestsPerSecond)
	assert.Equal(t, 0.05, cfg.Area.GridStepDeg)
	assert.Equal(t, 3000, cfg.Area.RadiusMeters)
	assert.Equal(t, 3, cfg.Scan.BatchSize)
	assert.Equal(t, 150, cfg.Scan.ZoneDelayMS)
	assert.Equal(t, 1440, cfg.Scan.CacheTTLMinutes)
	assert.Equal(t, "./datasets", cfg.Output.Dir)

	b := cfg.Area.Bound()
	assert.Equal(t, -99.36, b.Min[0])
	assert.Equal(t, 19.04, b.Min[1])
	assert.Equal(t, -98.94, b.Max[0])
	assert.Equal(t, 19.60, b.Max[1])
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("POISCAN_GOOGLE_API_KEY", "env-key")
	t.Setenv("POISCAN_DENUE_TOKEN", "env-token")
	t.Setenv("POISCAN_AREA_RADIUS_METERS", "1500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Google.APIKey)
	assert.Equal(t, "env-token", cfg.Denue.Token)
	assert.Equal(t, 1500, cfg.Area.RadiusMeters)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Area.LatMin, cfg.Area.LatMax = 20, 19
	cfg.Area.GridStepDeg = 0
	cfg.Output.Dir = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lat_min")
	assert.Contains(t, err.Error(), "grid_step_deg")
	assert.Contains(t, err.Error(), "output.dir")
}

func TestValidateAcceptsZeroDelay(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scan.ZoneDelayMS = 0
	assert.NoError(t, cfg.Validate())
}
