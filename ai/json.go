package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a JSON document out of a model response. Models tend to
// wrap output in markdown code fences or narrative preamble; this trims the
// response down to the outermost JSON object before decoding.
func DecodeJSON(response string, out interface{}) error {
	cleaned := ExtractJSONObject(response)
	if cleaned == "" {
		return fmt.Errorf("no JSON object found in model response")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to decode model response: %w", err)
	}
	return nil
}

// ExtractJSONObject returns the outermost {...} span of a model response,
// stripping code fences and surrounding narrative text.
func ExtractJSONObject(response string) string {
	s := strings.TrimSpace(response)

	// Strip markdown code fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
