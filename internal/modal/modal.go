// Package modal drives the podcast detail overlay bound to fixed anchor elements.
package modal

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"finitefield.org/podcast-catalog/internal/dateutil"
	"finitefield.org/podcast-catalog/internal/dom"
	"finitefield.org/podcast-catalog/internal/genres"
	"finitefield.org/podcast-catalog/internal/podcasts"
)

// Anchor ids the modal binds to.
const (
	IDRoot     = "modal"
	IDTitle    = "modalTitle"
	IDImage    = "modalImage"
	IDDesc     = "modalDesc"
	IDGenres   = "modalGenres"
	IDUpdated  = "modalUpdated"
	IDSeasons  = "seasonList"
	HiddenFlag = "hidden"
)

// NoSeasonsText is the placeholder entry shown for podcasts without season data.
const NoSeasonsText = "No season information available."

// LastUpdatedLabel precedes the modal date unless the date formatter has a prefix.
const LastUpdatedLabel = "Last updated: "

// Option customises a Modal.
type Option func(*Modal)

// WithLogger overrides the document logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Modal) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Modal is the single detail view of a document. Open and Closed are explicit states; the
// content of a closed modal is left in place but hidden.
type Modal struct {
	doc    *dom.Document
	genres *genres.Service
	dates  *dateutil.Formatter
	logger *zap.Logger

	open         bool
	current      *podcasts.Podcast
	prevOverflow string
}

// New binds a modal to doc. Anchors are resolved on every call.
func New(doc *dom.Document, genreService *genres.Service, dates *dateutil.Formatter, opts ...Option) *Modal {
	if dates == nil {
		dates = dateutil.Default()
	}
	m := &Modal{
		doc:    doc,
		genres: genreService,
		dates:  dates,
		logger: doc.Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("component", "modal"))
	return m
}

// IsOpen reports whether the modal is in the open state.
func (m *Modal) IsOpen() bool { return m.open }

// Current returns the podcast shown while open.
func (m *Modal) Current() (podcasts.Podcast, bool) {
	if !m.open || m.current == nil {
		return podcasts.Podcast{}, false
	}
	return *m.current, true
}

// Root returns the modal root element, or nil when the document has none.
func (m *Modal) Root() *html.Node { return m.doc.GetElementByID(IDRoot) }

// Open fills every present anchor from p, then shows the modal and locks body scrolling.
// Without a root element it logs and does nothing.
func (m *Modal) Open(p podcasts.Podcast) {
	root := m.Root()
	if root == nil {
		m.logger.Error("modal container not found", zap.String("id", IDRoot))
		return
	}

	m.populate(p)

	dom.RemoveClass(root, HiddenFlag)
	dom.SetAttr(root, "aria-hidden", "false")
	if body := m.doc.Body(); body != nil {
		if !m.open {
			m.prevOverflow = dom.StyleProperty(body, "overflow")
		}
		dom.SetStyleProperty(body, "overflow", "hidden")
	}

	record := p
	m.current = &record
	m.open = true
	m.logger.Debug("modal opened", zap.String("podcast_id", p.ID))
}

// Close hides the modal and restores the body overflow seen at open time. Closing a modal
// that is not open does nothing.
func (m *Modal) Close() {
	root := m.Root()
	if root == nil {
		m.logger.Error("modal container not found", zap.String("id", IDRoot))
		return
	}
	if !m.open {
		return
	}

	dom.AddClass(root, HiddenFlag)
	dom.SetAttr(root, "aria-hidden", "true")
	if body := m.doc.Body(); body != nil {
		dom.SetStyleProperty(body, "overflow", m.prevOverflow)
	}

	m.open = false
	m.current = nil
	m.prevOverflow = ""
}

func (m *Modal) populate(p podcasts.Podcast) {
	if n := m.anchor(IDTitle); n != nil {
		dom.SetText(n, p.Title)
	}
	if n := m.anchor(IDImage); n != nil {
		dom.SetAttr(n, "src", p.Image)
		dom.SetAttr(n, "alt", p.Title+" cover")
	}
	if n := m.anchor(IDDesc); n != nil {
		dom.SetText(n, p.Description)
	}
	if n := m.anchor(IDGenres); n != nil {
		tags := make([]*html.Node, 0, len(p.Genres))
		for _, name := range m.genres.Names(p.Genres) {
			tag := dom.NewElement("span", "class", "tag")
			dom.SetText(tag, name)
			tags = append(tags, tag)
		}
		m.doc.ReplaceChildren(n, tags...)
	}
	if n := m.anchor(IDUpdated); n != nil {
		dom.SetText(n, m.dates.Label(m.dates.Date(p.Updated), LastUpdatedLabel))
	}
	if n := m.anchor(IDSeasons); n != nil {
		m.doc.ReplaceChildren(n, seasonItems(p.Seasons)...)
	}
}

func (m *Modal) anchor(id string) *html.Node {
	n := m.doc.GetElementByID(id)
	if n == nil {
		m.logger.Warn("modal anchor not found", zap.String("id", id))
	}
	return n
}

func seasonItems(seasons []podcasts.Season) []*html.Node {
	if len(seasons) == 0 {
		li := dom.NewElement("li", "class", "season-empty")
		dom.SetText(li, NoSeasonsText)
		return []*html.Node{li}
	}
	items := make([]*html.Node, 0, len(seasons))
	for i, s := range seasons {
		li := dom.NewElement("li", "class", "season-item")

		number := dom.NewElement("strong", "class", "season-number")
		dom.SetText(number, fmt.Sprintf("Season %d", i+1))
		li.AppendChild(number)

		if title := strings.TrimSpace(s.Title); title != "" {
			span := dom.NewElement("span", "class", "season-title")
			dom.SetText(span, title)
			li.AppendChild(span)
		}

		episodes := dom.NewElement("span", "class", "season-episodes")
		dom.SetText(episodes, EpisodeLabel(s.Episodes))
		li.AppendChild(episodes)

		items = append(items, li)
	}
	return items
}

// EpisodeLabel returns "1 episode" or "N episodes". Negative counts read as zero.
func EpisodeLabel(n int) string {
	if n < 0 {
		n = 0
	}
	if n == 1 {
		return "1 episode"
	}
	return fmt.Sprintf("%d episodes", n)
}
