package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// decisionsHandler handles GET /api/orchestrator/decisions?user_id=….
func (s *Server) decisionsHandler(c *echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return s.mapReadError(errMissingUserID)
	}

	history := s.stateMgr.GetDecisionHistory(c.Request().Context(), userID, 10)
	entries := make([]DecisionEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, DecisionEntry{
			ID:            h.ID,
			NextModule:    h.NextModule,
			Depth:         h.Depth,
			Reason:        h.Reason,
			CreatedAt:     h.CreatedAt,
			InputSnapshot: h.InputSnapshot,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

// orchestratorMetricsHandler handles GET /api/orchestrator/metrics.
func (s *Server) orchestratorMetricsHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.metrics.Summary())
}

// circuitBreakersHandler handles GET /api/orchestrator/circuit-breakers.
func (s *Server) circuitBreakersHandler(c *echo.Context) error {
	snapshots := s.breakers.AllSnapshots()
	out := make([]BreakerStatsResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, BreakerStatsResponse{
			Name:        snap.Name,
			State:       string(snap.State),
			IsAvailable: snap.IsAvailable,
			Stats: BreakerStatsFields{
				TotalCalls:          snap.TotalCalls,
				TotalSuccesses:      snap.TotalSuccesses,
				TotalFailures:       snap.TotalFailures,
				TotalRejections:     snap.TotalRejections,
				ConsecutiveFailures: snap.ConsecutiveFailures,
				SuccessRate:         snap.SuccessRate,
			},
			Config: BreakerConfigFields{
				FailureThreshold: snap.FailureThreshold,
				RecoveryTimeoutS: snap.RecoveryTimeoutS,
				HalfOpenMaxCalls: snap.HalfOpenMaxCalls,
			},
		})
	}
	return c.JSON(http.StatusOK, out)
}

// servicesHandler handles GET /api/orchestrator/services.
func (s *Server) servicesHandler(c *echo.Context) error {
	statuses := s.services.AllStatus()
	out := make([]ServiceStatusResponse, 0, len(statuses))
	for name, st := range statuses {
		resp := ServiceStatusResponse{
			Name:                name,
			Status:              st.Status,
			IsEmbedded:          st.IsEmbedded,
			URL:                 st.URL,
			Port:                st.Port,
			LatencyMs:           st.LastResponseTimeMs,
			AvailabilityPct:     st.AvailabilityPct(),
			ConsecutiveFailures: st.ConsecutiveFailures,
			LastError:           st.LastError,
		}
		if !st.IsEmbedded {
			if b := s.breakers.Get(name); b != nil {
				resp.CircuitBreakerState = string(b.State())
			}
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}
