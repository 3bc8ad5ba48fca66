package narrative

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Reply is the model's answer. Chart is passed through unchanged.
type Reply struct {
	Answer    string          `json:"answer"`
	Chart     json.RawMessage `json:"chart,omitempty"`
	FollowUps []string        `json:"followUps"`
	// Structured is false when the model ignored the schema and its raw
	// content was used as the answer.
	Structured bool `json:"-"`
}

// parseReply decodes the model content. Content that is not a JSON object
// becomes the answer verbatim.
func parseReply(content string) Reply {
	if strings.TrimSpace(content) == "" {
		return Reply{FollowUps: []string{}}
	}

	var decoded struct {
		Answer    string          `json:"answer"`
		Chart     json.RawMessage `json:"chart"`
		FollowUps []any           `json:"followUps"`
	}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return Reply{Answer: content, FollowUps: []string{}}
	}

	reply := Reply{Answer: decoded.Answer, FollowUps: []string{}, Structured: true}
	if len(decoded.Chart) > 0 && !bytes.Equal(bytes.TrimSpace(decoded.Chart), []byte("null")) {
		reply.Chart = decoded.Chart
	}
	for _, f := range decoded.FollowUps {
		s, ok := f.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		reply.FollowUps = append(reply.FollowUps, s)
		if len(reply.FollowUps) == maxFollowUps {
			break
		}
	}
	return reply
}
