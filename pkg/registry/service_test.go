package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAvailabilityPct(t *testing.T) {
	s := Status{UptimeChecks: 0}
	assert.Equal(t, 100.0, s.AvailabilityPct())

	s = Status{UptimeChecks: 10, HealthyChecks: 7}
	assert.Equal(t, 70.0, s.AvailabilityPct())

	s = Status{UptimeChecks: 3, HealthyChecks: 1}
	assert.InDelta(t, 33.3, s.AvailabilityPct(), 0.01)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("dsa_practice", "http://127.0.0.1:8004", 8004)

	st, ok := r.Get("dsa_practice")
	require.True(t, ok)
	assert.Equal(t, "unknown", st.Status)
	assert.False(t, st.IsEmbedded)
	assert.Equal(t, 8004, st.Port)
}

func TestRegistryGetUnknownService(t *testing.T) {
	r := NewRegistry(nil)
	_, ok := r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistrySkipsModulesWithoutURL(t *testing.T) {
	r := NewRegistry([]ModuleService{{Name: "onboarding", URL: ""}})
	_, ok := r.Get("onboarding")
	assert.False(t, ok)
}

func TestRegistryAllStatusIncludesEmbeddedAndRegistered(t *testing.T) {
	r := NewRegistry([]ModuleService{{Name: "dsa_practice", URL: "http://127.0.0.1:8004"}})
	all := r.AllStatus()

	assert.Contains(t, all, "dsa_practice")
	for _, name := range EmbeddedServices {
		assert.Contains(t, all, name)
		assert.True(t, all[name].IsEmbedded)
		assert.Equal(t, "healthy", all[name].Status)
	}
}

func TestServiceRecordSuccessThenDegradedThenUnhealthy(t *testing.T) {
	r := NewRegistry([]ModuleService{{Name: "dsa_practice", URL: "http://127.0.0.1:8004"}})
	svcs := r.Probeable()
	require.Len(t, svcs, 1)
	svc := svcs[0]

	svc.recordSuccess(12.5)
	st, _ := r.Get("dsa_practice")
	assert.Equal(t, "healthy", st.Status)
	assert.Equal(t, int64(1), st.UptimeChecks)
	assert.Equal(t, int64(1), st.HealthyChecks)
	require.NotNil(t, st.LastResponseTimeMs)
	assert.Equal(t, 12.5, *st.LastResponseTimeMs)

	svc.recordDegraded("HTTP 503", 30.0)
	st, _ = r.Get("dsa_practice")
	assert.Equal(t, "degraded", st.Status)
	assert.Equal(t, 1, st.ConsecutiveFailures)
	assert.Equal(t, "HTTP 503", st.LastError)
	require.NotNil(t, st.LastResponseTimeMs)
	assert.Equal(t, 30.0, *st.LastResponseTimeMs)

	svc.recordUnhealthy("connection refused")
	st, _ = r.Get("dsa_practice")
	assert.Equal(t, "unhealthy", st.Status)
	assert.Equal(t, 2, st.ConsecutiveFailures)

	svc.recordSuccess(5.0)
	st, _ = r.Get("dsa_practice")
	assert.Equal(t, 0, st.ConsecutiveFailures)
	assert.Equal(t, "", st.LastError)
}
