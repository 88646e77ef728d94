package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/pathwright/pkg/database"
)

// healthHandler handles GET /health: a database ping bounded by
// healthProbeTimeout, plus each service's last status as recorded in the
// service registry (embedded components always report healthy). No
// downstream service is probed by this handler; statuses come from the
// background health monitor.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	dbStatus := "connected"
	if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
		dbStatus = "disconnected"
	}

	services := make(map[string]string)
	for name, st := range s.services.AllStatus() {
		services[name] = st.Status
	}

	status := "healthy"
	if dbStatus == "disconnected" {
		status = "unhealthy"
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Database:  dbStatus,
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
