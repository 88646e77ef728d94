package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleRegistryGet(t *testing.T) {
	reg := NewModuleRegistry()

	m, err := reg.Get("dsa_practice")
	require.NoError(t, err)
	assert.Equal(t, "DSA Practice", m.Label)
	assert.Equal(t, []string{"dsa_predict_skill"}, m.RemediationSkills)

	_, err = reg.Get("nonexistent")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestModuleRegistryGetAllIsDefensiveCopy(t *testing.T) {
	reg := NewModuleRegistry()

	all := reg.GetAll()
	require.Equal(t, reg.Len(), len(all))

	all[0].Label = "mutated"

	again := reg.GetAll()
	assert.NotEqual(t, "mutated", again[0].Label)
}

func TestModuleRegistryHas(t *testing.T) {
	reg := NewModuleRegistry()
	assert.True(t, reg.Has("onboarding"))
	assert.False(t, reg.Has("not-a-module"))
}

func TestGoalWeightRegistryFallsBackToDefault(t *testing.T) {
	reg := NewGoalWeightRegistry()

	backend := reg.Get("backend_engineer")
	assert.Equal(t, 1.3, backend["tradeoff_avg"])

	unknown := reg.Get("astronaut")
	assert.Equal(t, reg.Get("default"), unknown)
}
