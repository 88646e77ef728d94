package evaluator

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Scores is the parsed LLM output for one evaluation: five dimensions, each
// nil when the model omitted or nulled the field.
type Scores struct {
	Clarity          *float64
	Tradeoffs        *float64
	Adaptability     *float64
	FailureAwareness *float64
	DsaPredict       *float64
}

func nullScores() Scores { return Scores{} }

var jsonBlockWithClarity = regexp.MustCompile(`\{[^{}]*"clarity"[^{}]*\}`)
var anyJSONBlock = regexp.MustCompile(`(?s)\{.*?\}`)

// parseScores implements the JSON-then-regex-extract parsing strategy: try
// a direct parse of the trimmed content, then try to pull the first
// JSON-looking block out of it and parse that. Total failure returns all
// nulls.
func parseScores(content string) Scores {
	if s, ok := tryParseJSON(content); ok {
		return s
	}

	for _, re := range []*regexp.Regexp{jsonBlockWithClarity, anyJSONBlock} {
		if block := re.FindString(content); block != "" {
			if s, ok := tryParseJSON(block); ok {
				return s
			}
		}
	}

	return nullScores()
}

func tryParseJSON(s string) (Scores, bool) {
	var raw map[string]*float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &raw); err != nil {
		return Scores{}, false
	}

	scores := Scores{}
	if v, ok := raw["clarity"]; ok {
		scores.Clarity = v
	}
	if v, ok := raw["tradeoffs"]; ok {
		scores.Tradeoffs = v
	}
	if v, ok := raw["adaptability"]; ok {
		scores.Adaptability = v
	}
	if v, ok := raw["failure_awareness"]; ok {
		scores.FailureAwareness = v
	}
	if v, ok := raw["dsa_predict"]; ok {
		scores.DsaPredict = v
	}
	return scores, true
}
