package render

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/forge/pkg/core"
)

// PreviewOptions controls terminal rendering.
type PreviewOptions struct {
	Style  string // glamour style name or path: "dark", "light", "notty", "auto"...
	Width  int    // word wrap width; zero means 80
	Labels Labels
}

// Preview renders doc as Markdown and then styles it for the terminal.
// If the terminal renderer cannot be built or fails, the raw Markdown is
// returned along with the error so callers can still show something.
func Preview(doc core.UseCase, opts PreviewOptions) (string, error) {
	labels := opts.Labels
	if labels.TitlePrefix == "" {
		labels = English
	}
	md := New(labels).Render(doc)

	style := opts.Style
	if style == "" {
		style = "dark"
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	var styleOpt glamour.TermRendererOption
	if style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	} else {
		styleOpt = glamour.WithStylePath(style)
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return md, err
	}

	out, err := r.Render(md)
	if err != nil {
		return md, err
	}
	return strings.TrimSpace(out) + "\n", nil
}
