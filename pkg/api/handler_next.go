package api

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/pathwright/pkg/decision"
)

// nextHandler handles GET /api/next?user_id=…. Always returns a module
// recommendation — DB or LLM hiccups degrade gracefully rather than
// failing the request.
func (s *Server) nextHandler(c *echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return s.mapReadError(errMissingUserID)
	}

	start := time.Now()
	ctx := c.Request().Context()

	userState := s.stateMgr.GetUserState(ctx, userID)
	serviceHealth := s.monitor.HealthMap()

	d := s.engine.Decide(userState, decision.MemoryContext{}, serviceHealth)
	d.Reason = decorateReason(ctx, s.reasonLLM, d.RuleReason, d.NextModule, s.reasonTimeout, s.metrics)

	var decisionID *string
	if id := s.stateMgr.RecordDecision(ctx, d); id != "" {
		decisionID = &id
	}
	_ = s.stateMgr.UpdateNextModule(ctx, userID, d.NextModule)

	s.metrics.RecordDecision(userID, d.NextModule, string(d.Depth), float64(time.Since(start).Milliseconds()), d.Confidence)

	description := ""
	if mod, err := s.modules.Get(d.NextModule); err == nil {
		description = mod.Description
	}

	var weaknessTrigger *string
	if d.WeaknessTrigger != "" {
		weaknessTrigger = &d.WeaknessTrigger
	}

	return c.JSON(http.StatusOK, NextResponse{
		NextModule:      d.NextModule,
		Reason:          d.Reason,
		Description:     description,
		WeaknessTrigger: weaknessTrigger,
		Scores:          userState.Scores.AsMap(),
		Confidence:      d.Confidence,
		Depth:           string(d.Depth),
		DecisionID:      decisionID,
	})
}
