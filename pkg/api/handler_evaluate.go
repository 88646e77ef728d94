package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/pathwright/pkg/evaluator"
)

// evaluateHandler handles POST /api/evaluate. Always returns 200, even when
// internal scoring or persistence fails — fire-and-forget per the spec's
// evaluator contract.
func (s *Server) evaluateHandler(c *echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.evaluator.Evaluate(c.Request().Context(), evaluator.EvaluationRequest{
		UserID:   req.UserID,
		Module:   req.Module,
		Question: req.Question,
		Answer:   req.Answer,
	})

	return c.JSON(http.StatusOK, EvaluateResponse{Status: "ok"})
}
