package description

import "strings"

const (
	startMarker = "[[START]]"
	endMarker   = "[[END]]"
)

// SpecSheet is generated text split for display.
type SpecSheet struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// ParseSpecSheet cleans model output for display. Text before [[START]] is
// dropped, [[END]] markers and code fence lines are removed, and * emphasis is
// stripped. The first non-blank line becomes the title and the remaining
// non-blank lines the details.
func ParseSpecSheet(text string) SpecSheet {
	if _, after, ok := strings.Cut(text, startMarker); ok {
		text = after
	}
	text = strings.ReplaceAll(text, endMarker, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return SpecSheet{}
	}
	return SpecSheet{Title: lines[0], Details: lines[1:]}
}
