package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// stateHandler handles GET /api/state/:user_id.
func (s *Server) stateHandler(c *echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return s.mapReadError(errMissingUserID)
	}

	userState := s.stateMgr.GetUserState(c.Request().Context(), userID)
	depth := s.engine.DetermineDepth(userState)

	recent := userState.RecentModules
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return c.JSON(http.StatusOK, StateResponse{
		UserID:        userID,
		Scores:        userState.Scores.AsMap(),
		NextModule:    userState.NextModule,
		TargetRole:    userState.TargetRole,
		RecentModules: recent,
		Depth:         string(depth),
	})
}
