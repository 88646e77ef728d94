package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/codeready-toolchain/pathwright/pkg/metrics"
)

const scoringModel = "llama-3.3-70b-versatile"

// ScoringTimeout is the hard timeout for the LLM scoring call, kept separate
// from the reasoning-decoration timeout (pkg/api/reason.go) since scoring
// sits on the /api/evaluate path, decoration on /api/next, and the two tune
// independently.
const ScoringTimeout = 20 * time.Second

var errNoProvider = errors.New("evaluator: no LLM provider configured")

// Scorer calls an LLM to judge the quality of a user's reasoning, with a
// primary provider and a same-contract fallback. Both providers speak the
// OpenAI chat-completions wire format — Groq and OpenRouter both expose
// OpenAI-compatible endpoints, so a single client type serves both.
type Scorer struct {
	primary  llms.Model
	fallback llms.Model
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Collector
}

// NewScorer builds a Scorer. Either client may be nil (e.g. missing API
// key), in which case that provider is skipped. mcollector may be nil in
// tests that don't care about metrics.
func NewScorer(primary, fallback llms.Model, timeout time.Duration, mcollector *metrics.Collector) *Scorer {
	return &Scorer{primary: primary, fallback: fallback, timeout: timeout, logger: slog.Default(), metrics: mcollector}
}

// NewGroqModel builds the primary Groq-backed model client, an
// OpenAI-compatible endpoint.
func NewGroqModel(apiKey string) (llms.Model, error) {
	if apiKey == "" {
		return nil, nil
	}
	return openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(scoringModel),
		openai.WithBaseURL("https://api.groq.com/openai/v1"),
	)
}

// NewOpenRouterModel builds the fallback OpenRouter-backed model client.
func NewOpenRouterModel(apiKey string) (llms.Model, error) {
	if apiKey == "" {
		return nil, nil
	}
	return openai.New(
		openai.WithToken(apiKey),
		openai.WithModel("meta-llama/"+scoringModel),
		openai.WithBaseURL("https://openrouter.ai/api/v1"),
	)
}

// Score judges a user's answer to a question, always returning a Scores
// value — every dimension is nil when both providers fail or are unset, or
// when the response holds no parsable JSON object.
func (s *Scorer) Score(ctx context.Context, question, answer string) Scores {
	start := time.Now()
	prompt := buildScoringPrompt(question, answer)

	content, err := s.call(ctx, s.primary, prompt)
	if err != nil {
		s.logger.Info("primary scoring provider failed, trying fallback", "error", err)
		content, err = s.call(ctx, s.fallback, prompt)
	}

	if s.metrics != nil {
		s.metrics.RecordLLMCall(float64(time.Since(start).Milliseconds()), err == nil)
	}

	if err != nil {
		s.logger.Error("both scoring providers failed, returning null scores", "error", err)
		return nullScores()
	}

	return parseScores(content)
}

func (s *Scorer) call(ctx context.Context, model llms.Model, prompt string) (string, error) {
	if model == nil {
		return "", errNoProvider
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(callCtx, model, prompt,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(500),
	)
	if err != nil {
		return "", err
	}
	return completion, nil
}
