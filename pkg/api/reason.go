package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/codeready-toolchain/pathwright/pkg/metrics"
)

const reasonDecorationMaxTokens = 200

// decorateReason turns the engine's terse rule_reason into a short
// human-readable explanation via an LLM call. On any failure — no model
// configured, timeout, provider error — the original rule_reason is
// returned unchanged, since /api/next must always return a usable reason.
// timeout is the server's configured ORCH_LLM_TIMEOUT; mcollector may be
// nil in tests that don't care about metrics.
func decorateReason(ctx context.Context, model llms.Model, ruleReason, nextModule string, timeout time.Duration, mcollector *metrics.Collector) string {
	if model == nil {
		return ruleReason
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Rewrite this routing explanation as one or two friendly sentences for a learner. "+
			"Keep every fact, do not invent new ones. Recommended module: %s. Reason: %s",
		nextModule, ruleReason,
	)

	start := time.Now()
	completion, err := llms.GenerateFromSinglePrompt(callCtx, model, prompt,
		llms.WithTemperature(0.3),
		llms.WithMaxTokens(reasonDecorationMaxTokens),
	)
	if mcollector != nil {
		mcollector.RecordLLMCall(float64(time.Since(start).Milliseconds()), err == nil)
	}
	if err != nil {
		slog.Info("reason decoration failed, falling back to rule reason", "error", err)
		return ruleReason
	}
	return completion
}
