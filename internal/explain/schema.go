package explain

import "github.com/eiken-drill/eiken/internal/llm"

// ExplanationSchema is the structured reply expected from the tutor.
var ExplanationSchema = &llm.Schema{
	Name:        "question-explanation",
	Description: "Japanese explanation of an Eiken multiple-choice vocabulary or grammar question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{
				"type":        "string",
				"description": "2-4 sentences in Japanese explaining why the answer fits the blank",
			},
			"vocabulary": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "One entry per option, formatted as 'word: Japanese meaning'",
			},
			"translation": map[string]any{
				"type":        "string",
				"description": "Japanese translation of the completed sentence",
			},
		},
		"required":             []any{"reason", "vocabulary", "translation"},
		"additionalProperties": false,
	},
}
