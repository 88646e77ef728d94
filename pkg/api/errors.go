package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/pathwright/pkg/breaker"
)

// errMissingUserID is returned when a required user_id query parameter is
// absent.
var errMissingUserID = errors.New("user_id is required")

// mapReadError maps a state/registry read-path error to an HTTP error
// response, recording it under its category in the metrics collector.
// Admin/read endpoints surface errors directly, unlike the evaluator and
// /api/next which always degrade gracefully.
func (s *Server) mapReadError(err error) *echo.HTTPError {
	if errors.Is(err, errMissingUserID) {
		s.metrics.RecordError("bad_request")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, breaker.ErrCircuitOpen) {
		s.metrics.RecordError("circuit_open")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "downstream service unavailable")
	}

	s.metrics.RecordError("internal")
	slog.Error("unexpected API error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
