package compose

import (
	"fmt"
	"regexp"
	"strings"

	"greenroom/pkg/schema"
)

// Scene blocks in an assembled script are delimited by a header line
// carrying the display id. Content lines that happen to match the header
// shape would confuse SplitScript; screenplay text does not produce them.
var sceneHeaderRe = regexp.MustCompile(`(?m)^=== (.+) ===$`)

// AssembleScript renders an episode's scenes as one continuous script,
// each scene under its display id header.
func AssembleScript(scenes []*schema.Scene) string {
	blocks := make([]string, 0, len(scenes))
	for _, sc := range scenes {
		blocks = append(blocks, fmt.Sprintf("=== %s ===\n%s", sc.DisplayID, sc.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// ScriptBlock is one scene's slice of an assembled script.
type ScriptBlock struct {
	DisplayID string `json:"scene_id"`
	Content   string `json:"content"`
}

// SplitScript inverts AssembleScript exactly: splitting an assembled
// script yields the original display ids and contents byte for byte.
func SplitScript(script string) []ScriptBlock {
	matches := sceneHeaderRe.FindAllStringSubmatchIndex(script, -1)
	out := make([]ScriptBlock, 0, len(matches))
	for i, m := range matches {
		displayID := script[m[2]:m[3]]
		start := m[1]
		if start < len(script) && script[start] == '\n' {
			start++
		}
		end := len(script)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := script[start:end]
		if i+1 < len(matches) {
			content = strings.TrimSuffix(content, "\n\n")
		}
		out = append(out, ScriptBlock{DisplayID: displayID, Content: content})
	}
	return out
}
