// Package templates renders the catalog page shell and exposes documents and fragments as
// templ components.
package templates

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"finitefield.org/podcast-catalog/internal/dom"
)

var (
	//go:embed shell.html
	shellSource string
	//go:embed intro.md
	defaultIntro []byte

	shellTemplate = template.Must(template.New("shell").Parse(shellSource))

	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Typographer))
)

// ShellData fills the page shell.
type ShellData struct {
	Title         string
	StylesheetURL string
	HTMXSrc       string
	CloseURL      string
	Intro         template.HTML
}

// DefaultIntro returns the built-in intro markdown.
func DefaultIntro() []byte {
	return append([]byte(nil), defaultIntro...)
}

// RenderIntro converts intro markdown to sanitised HTML.
func RenderIntro(source []byte) (template.HTML, error) {
	if len(bytes.TrimSpace(source)) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("templates: render intro: %w", err)
	}
	safe := bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes())
	return template.HTML(bytes.TrimSpace(safe)), nil
}

// RenderShell executes the page shell. The result is parsed into a fresh document per request.
func RenderShell(data ShellData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Podcasts"
	}
	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("templates: render shell: %w", err)
	}
	return buf.Bytes(), nil
}

// Document renders a whole dom.Document.
func Document(doc *dom.Document) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if doc == nil {
			return fmt.Errorf("templates: nil document")
		}
		return doc.Render(w)
	})
}

// Fragment renders a single node and its subtree, for htmx swaps.
func Fragment(n *html.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if n == nil {
			return fmt.Errorf("templates: nil fragment")
		}
		return dom.RenderNode(w, n)
	})
}
