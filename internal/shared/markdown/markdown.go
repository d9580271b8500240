// Package markdown renders model-authored Markdown as HTML fragments.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// Raw HTML in the source is replaced by an omission comment.
	safeRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	rawRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
)

// ToHTML converts Markdown source to an HTML fragment, dropping any raw HTML.
func ToHTML(src string) (string, error) {
	return convert(safeRenderer, src)
}

// ToHTMLWithRawHTML converts Markdown source to an HTML fragment, passing raw HTML through.
// Use it only for output the model was explicitly asked to write as HTML.
func ToHTMLWithRawHTML(src string) (string, error) {
	return convert(rawRenderer, src)
}

func convert(md goldmark.Markdown, src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
