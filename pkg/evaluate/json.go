package evaluate

import (
	"encoding/json"
	"strings"

	"greenroom/pkg/utils"
)

// ExtractJSON pulls a JSON object out of model output. It strips
// markdown fences first, then falls back to the span between the first
// '{' and the last '}'. The second return reports whether anything
// parseable was found.
func ExtractJSON(s string) (string, bool) {
	s = utils.CleanJSON(s)
	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return s, true
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}
