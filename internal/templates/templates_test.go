package templates_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/podcast-catalog/internal/dom"
	"finitefield.org/podcast-catalog/internal/modal"
	"finitefield.org/podcast-catalog/internal/templates"
	"finitefield.org/podcast-catalog/internal/testutil"
)

func TestRenderShellContainsAnchors(t *testing.T) {
	t.Parallel()

	intro, err := templates.RenderIntro(templates.DefaultIntro())
	require.NoError(t, err)

	body, err := templates.RenderShell(templates.ShellData{
		Title:         "Podcast Catalog",
		StylesheetURL: "/public/static/app.css",
		HTMXSrc:       "https://unpkg.com/htmx.org@2.0.4",
		CloseURL:      "/fragments/modal/close",
		Intro:         intro,
	})
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Podcast Catalog", doc.Find("title").Text())
	require.Equal(t, 1, doc.Find("main#podcastGrid").Length())
	for _, id := range []string{modal.IDRoot, modal.IDTitle, modal.IDImage, modal.IDDesc, modal.IDGenres, modal.IDUpdated, modal.IDSeasons} {
		require.Equal(t, 1, doc.Find("#"+id).Length(), "missing anchor %s", id)
	}
	require.True(t, doc.Find("#modal").HasClass("hidden"))
	require.Equal(t, "/fragments/modal/close", doc.Find(".modal-close").AttrOr("hx-get", ""))
	require.Equal(t, 1, doc.Find(".intro p").Length())
}

func TestRenderShellDefaultsTitleAndSkipsEmptyParts(t *testing.T) {
	t.Parallel()

	body, err := templates.RenderShell(templates.ShellData{})
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Podcasts", doc.Find("title").Text())
	require.Zero(t, doc.Find("script").Length())
	require.Zero(t, doc.Find(".intro").Length())
}

func TestRenderIntroSanitises(t *testing.T) {
	t.Parallel()

	out, err := templates.RenderIntro([]byte("# Hello\n\n<script>alert(1)</script>\n\n[docs](https://example.com)"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<h1")
	require.Contains(t, string(out), `href="https://example.com"`)
	require.NotContains(t, string(out), "<script")

	empty, err := templates.RenderIntro([]byte("  \n"))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestFragmentRendersNode(t *testing.T) {
	t.Parallel()

	n := dom.NewElement("div", "id", "modal", "class", "modal")
	dom.SetText(n, "<hi>")

	var buf bytes.Buffer
	require.NoError(t, templates.Fragment(n).Render(context.Background(), &buf))
	require.Equal(t, `<div id="modal" class="modal">&lt;hi&gt;</div>`, buf.String())

	require.Error(t, templates.Fragment(nil).Render(context.Background(), &buf))
}

func TestDocumentRendersWholeTree(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(strings.NewReader(`<p id="x">hi</p>`), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, templates.Document(doc).Render(context.Background(), &buf))
	require.Contains(t, buf.String(), `<body><p id="x">hi</p></body>`)
}
