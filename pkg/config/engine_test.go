package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfigValidates(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadEngineConfigAppliesOverride(t *testing.T) {
	t.Setenv("ORCH_WEAKNESS_THRESHOLD", "0.35")
	t.Setenv("ORCH_CB_FAILURE_THRESHOLD", "8")

	cfg, err := LoadEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.35, cfg.WeaknessThreshold)
	assert.Equal(t, 8, cfg.CBFailureThreshold)
}

func TestLoadEngineConfigRejectsBadOverride(t *testing.T) {
	t.Setenv("ORCH_WEAKNESS_THRESHOLD", "not-a-float")

	_, err := LoadEngineConfig()
	assert.Error(t, err)
}

func TestEngineConfigValidateRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.WeaknessThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultEngineConfig()
	cfg.CriticalThreshold = cfg.WeaknessThreshold
	assert.Error(t, cfg.Validate())
}
