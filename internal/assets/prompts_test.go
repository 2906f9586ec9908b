package assets

import (
	"strings"
	"testing"
)

func TestRenderSpecSheetPrompt(t *testing.T) {
	record := `{
  "LOTE": "2976",
  "Gema": "Zafiro"
}`
	prompt := RenderSpecSheetPrompt(record)

	if !strings.Contains(prompt, record) {
		t.Errorf("prompt does not contain the record JSON:\n%s", prompt)
	}
	for _, want := range []string{"[[START]]", "[[END]]", "🔖 Ref:", "DE CULTIVO"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Error("prompt still contains template actions")
	}
}
