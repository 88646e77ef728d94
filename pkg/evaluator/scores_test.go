package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScoringPromptIncludesQuestionAndAnswer(t *testing.T) {
	p := buildScoringPrompt("What is a hash map?", "A key-value store.")
	assert.Contains(t, p, "What is a hash map?")
	assert.Contains(t, p, "A key-value store.")
	assert.Contains(t, p, `"dsa_predict":null`)
}

func TestParseScoresDirectJSON(t *testing.T) {
	content := `{"clarity":0.80,"tradeoffs":0.70,"adaptability":0.90,"failure_awareness":0.60,"dsa_predict":null}`
	s := parseScores(content)
	require.NotNil(t, s.Clarity)
	assert.Equal(t, 0.8, *s.Clarity)
	assert.Equal(t, 0.7, *s.Tradeoffs)
	assert.Nil(t, s.DsaPredict)
}

func TestParseScoresExtractsFromSurroundingText(t *testing.T) {
	content := "Here is my evaluation:\n```json\n{\"clarity\":0.5,\"tradeoffs\":0.5,\"adaptability\":0.5,\"failure_awareness\":0.5,\"dsa_predict\":0.3}\n```\nThanks."
	s := parseScores(content)
	require.NotNil(t, s.Clarity)
	assert.Equal(t, 0.5, *s.Clarity)
	require.NotNil(t, s.DsaPredict)
	assert.Equal(t, 0.3, *s.DsaPredict)
}

func TestParseScoresTotalFailureReturnsAllNil(t *testing.T) {
	s := parseScores("I cannot evaluate this.")
	assert.Nil(t, s.Clarity)
	assert.Nil(t, s.Tradeoffs)
	assert.Nil(t, s.Adaptability)
	assert.Nil(t, s.FailureAwareness)
	assert.Nil(t, s.DsaPredict)
}

func TestParseScoresTreatsExplicitNullAsNil(t *testing.T) {
	content := `{"clarity":0.9,"tradeoffs":0.9,"adaptability":0.9,"failure_awareness":0.9,"dsa_predict":null}`
	s := parseScores(content)
	assert.Nil(t, s.DsaPredict)
	require.NotNil(t, s.Clarity)
}
