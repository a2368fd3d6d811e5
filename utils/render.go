package utils

import "github.com/charmbracelet/glamour"

// RenderMarkdown styles a markdown document for the terminal, wrapping at width when positive
func RenderMarkdown(doc string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(doc)
}
