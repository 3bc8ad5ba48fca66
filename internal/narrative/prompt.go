package narrative

import (
	"encoding/json"
	"strings"

	"github.com/yourusername/betting-tracker/internal/analytics"
)

const (
	// historyLimit is the number of prior exchanges forwarded to the model.
	historyLimit = 6
	// minDecidedBets below which the model is told the sample is too small.
	minDecidedBets = 3
	// maxFollowUps caps the suggested follow-up questions.
	maxFollowUps = 5
)

var systemPrompt = strings.Join([]string{
	"You are the analyst for a sports betting tracker. The user provides a data summary JSON describing their bets.",
	"Use only the provided numbers and never invent data. Call out limitations when sample sizes are small.",
	"When datasetTooSmall is true, say that the insights may not be statistically significant and suggest a broader scope.",
	"If issues are listed, acknowledge them in the answer.",
	"Give practical suggestions grounded in the numbers and trends.",
	"Always respond with JSON that follows the supplied schema.",
	"Keep the narrative concise and reference concrete values from the summary.",
}, " ")

// Message is one turn of a prior conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type userContent struct {
	Question        string             `json:"question"`
	Summary         *analytics.Summary `json:"summary"`
	DatasetTooSmall bool               `json:"datasetTooSmall"`
}

// DatasetTooSmall reports whether the summary has too few decided bets for
// the model to draw conclusions from.
func DatasetTooSmall(s *analytics.Summary) bool {
	return s.Metrics.DecidedBets < minDecidedBets
}

// trimHistory keeps the last historyLimit turns. Any role other than
// assistant is sent as user.
func trimHistory(history []Message) []Message {
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	out := make([]Message, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		out = append(out, Message{Role: role, Content: m.Content})
	}
	return out
}

func buildMessages(req Request) ([]Message, error) {
	content, err := json.Marshal(userContent{
		Question:        req.Question,
		Summary:         req.Summary,
		DatasetTooSmall: DatasetTooSmall(req.Summary),
	})
	if err != nil {
		return nil, err
	}

	history := trimHistory(req.History)
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: string(content)})
	return messages, nil
}

type object = map[string]any

func nullable(t string) []string {
	return []string{t, "null"}
}

// replySchema is the JSON schema the model is asked to answer with.
func replySchema() object {
	point := object{
		"type": "object",
		"properties": object{
			"x": object{"type": []string{"string", "number"}},
			"y": object{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
	return object{
		"name": "AnalysisReply",
		"schema": object{
			"type": "object",
			"properties": object{
				"answer": object{"type": "string", "description": "Narrative response for the user in plain text."},
				"chart": object{
					"type": nullable("object"),
					"properties": object{
						"type":   object{"type": "string", "enum": []string{"line", "bar", "area"}},
						"title":  object{"type": "string"},
						"yLabel": object{"type": nullable("string")},
						"series": object{
							"type": "array",
							"items": object{
								"type": "object",
								"properties": object{
									"name":   object{"type": "string"},
									"points": object{"type": "array", "items": point},
								},
								"required": []string{"name", "points"},
							},
						},
					},
				},
				"followUps": object{
					"type":     "array",
					"items":    object{"type": "string"},
					"minItems": 0,
					"maxItems": maxFollowUps,
				},
			},
			"required":             []string{"answer"},
			"additionalProperties": true,
		},
	}
}
