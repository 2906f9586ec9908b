package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/idrisgemas/gemlookup/internal/lookup"
)

// FormatResult writes a human-readable rendering of res.
func FormatResult(w io.Writer, res *lookup.Result) {
	fmt.Fprintf(w, "Référence: %s\n\n", res.Reference)

	switch {
	case res.SpecSheet != nil && res.SpecSheet.Title != "":
		fmt.Fprintln(w, res.SpecSheet.Title)
		for _, line := range res.SpecSheet.Details {
			fmt.Fprintf(w, "  %s\n", line)
		}
	case res.Description != "":
		fmt.Fprintln(w, res.Description)
		if res.ConfigurationRequired {
			fmt.Fprintf(w, "  (%s: set GEMINI_API_KEY)\n", lookup.ConfigurationRequiredMessage)
		}
	}

	headers := res.Record.Headers()
	if len(headers) > 0 {
		fmt.Fprintln(w)
		width := 0
		for _, h := range headers {
			if len(h) > width {
				width = len(h)
			}
		}
		for _, h := range headers {
			v := res.Record.Get(h)
			if strings.TrimSpace(v) == "" {
				continue
			}
			fmt.Fprintf(w, "  %-*s  %s\n", width, h, v)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Image: %s\n", res.Media.ImageURL)
	fmt.Fprintf(w, "Video: %s\n", res.Media.VideoURL)
}
