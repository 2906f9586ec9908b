// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at compile time.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed prompts/spec-sheet.txt
var specSheetTemplate string

// Parsed at init; a malformed prompt file panics on startup.
var specSheetTmpl = template.Must(template.New("spec-sheet").Parse(specSheetTemplate))

// PromptData holds the dynamic data injected into prompt templates.
type PromptData struct {
	// RecordJSON is the matched spreadsheet row as indented JSON, keys in
	// column order.
	RecordJSON string
}

// RenderSpecSheetPrompt renders the gemologist spec sheet prompt for one
// inventory record.
func RenderSpecSheetPrompt(recordJSON string) string {
	var buf bytes.Buffer
	_ = specSheetTmpl.Execute(&buf, PromptData{RecordJSON: recordJSON})
	return buf.String()
}
