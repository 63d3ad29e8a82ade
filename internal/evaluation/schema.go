package evaluation

import "github.com/educoach-ai/educoach/internal/llm"

// ScoresSchema is the shape accepted from the LLM. It is loose:
// every field is optional and scores may arrive as numbers or numeric strings.
var ScoresSchema = &llm.Schema{
	Name:        "answer-scores",
	Description: "Per-area scores for a student's reading answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reading_comprehension": scoreProperty("Understanding of the passage"),
			"grammar":               scoreProperty("Grammatical accuracy of the answers"),
			"vocabulary":            scoreProperty("Range and precision of vocabulary"),
			"feedback": map[string]any{
				"type":        []any{"string", "null"},
				"description": "Overall comment, 2-3 sentences",
			},
		},
	},
}

func scoreProperty(desc string) map[string]any {
	return map[string]any{
		"type":        []any{"number", "string"},
		"description": desc + " (0-100)",
	}
}
