package evaluator

import "fmt"

// scoringPromptTemplate is the exact wire-contract prompt sent to the LLM
// for every evaluation. Its text and the JSON example below are part of
// the fixed contract between the evaluator and any provider — changing
// either requires a compatibility plan.
const scoringPromptTemplate = "You are evaluating a user's answer to a technical reasoning question. " +
	"Your job is to judge the user's thinking quality, not correctness. " +
	"Question: %s User Answer: %s " +
	"Evaluate across 5 dimensions (clarity, tradeoffs, adaptability, failure_awareness, dsa_predict). " +
	"Each in [0,1] to two decimals. dsa_predict is null if irrelevant. " +
	"Output JSON only: `{\"clarity\":0.00,\"tradeoffs\":0.00,\"adaptability\":0.00,\"failure_awareness\":0.00,\"dsa_predict\":null}`"

func buildScoringPrompt(question, answer string) string {
	return fmt.Sprintf(scoringPromptTemplate, question, answer)
}
