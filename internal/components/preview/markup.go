package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

var (
	//go:embed styles/preview.css
	previewCSS string
	//go:embed styles/card.css
	cardCSS string
)

const previewMarkup = `<style>{{.Styles}}</style>
<div class="card" part="card">
  {{- if .Image}}
  <img src="{{.Image}}" alt="{{.Title}}" class="card-image" loading="lazy">
  {{- else}}
  <div class="card-image" role="img" aria-label="{{.Title}}"></div>
  {{- end}}
  <h3 class="card-title">{{.Title}}</h3>
  <p class="card-seasons">Seasons: {{.Seasons}}</p>
  <div class="tags">{{range .Genres}}<span class="tag">{{.}}</span>{{end}}</div>
  {{- if .Updated}}
  <p class="updated-text">{{.Updated}}</p>
  {{- end}}
</div>`

const cardMarkup = `<style>{{.Styles}}</style>
<article class="card" part="card">
  {{- if .Image}}
  <img src="{{.Image}}" alt="{{.Title}}" class="card-image" loading="lazy">
  {{- else}}
  <div class="card-image" role="img" aria-label="{{.Title}}"></div>
  {{- end}}
  <div class="card-body">
    <h3 class="card-title">{{.Title}}</h3>
    <p class="card-meta card-seasons">{{.SeasonsLabel}}</p>
    {{- if .Updated}}
    <p class="card-meta updated-text">{{.Updated}}</p>
    {{- end}}
    <div class="tags">{{range .Genres}}<span class="tag">{{.}}</span>{{end}}</div>
  </div>
</article>`

var markupTemplates = map[string]*template.Template{
	TagPreview: template.Must(template.New(TagPreview).Parse(previewMarkup)),
	TagCard:    template.Must(template.New(TagCard).Parse(cardMarkup)),
}

var variantStyles = map[string]template.CSS{
	TagPreview: template.CSS(previewCSS),
	TagCard:    template.CSS(cardCSS),
}

// view is the render projection of a card's attributes.
type view struct {
	Styles       template.CSS
	Title        string
	Image        string
	Seasons      int
	SeasonsLabel string
	Genres       []string
	Updated      string
}

func renderMarkup(variant string, v view) (string, error) {
	tmpl, ok := markupTemplates[variant]
	if !ok {
		return "", fmt.Errorf("preview: no markup for variant %q", variant)
	}
	v.Styles = variantStyles[variant]
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("preview: render %s: %w", variant, err)
	}
	return buf.String(), nil
}

func seasonsLabel(n int) string {
	if n == 1 {
		return "1 season"
	}
	return fmt.Sprintf("%d seasons", n)
}
