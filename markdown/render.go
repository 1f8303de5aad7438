package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns converted Markdown Extra into HTML for previews.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with the Markdown Extra features the
// converter emits: pipe tables, definition lists and footnotes.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.DefinitionList,
				extension.Footnote,
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts markdown to HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Render converts markdown to HTML with a default Renderer.
func Render(markdown string) (string, error) {
	return NewRenderer().Render(markdown)
}
