// Package grid renders podcast records as preview cards inside a container element.
package grid

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"finitefield.org/podcast-catalog/internal/components/preview"
	"finitefield.org/podcast-catalog/internal/dateutil"
	"finitefield.org/podcast-catalog/internal/dom"
	"finitefield.org/podcast-catalog/internal/genres"
	"finitefield.org/podcast-catalog/internal/podcasts"
)

// DefaultContainerID is the id of the grid container in the page shell.
const DefaultContainerID = "podcastGrid"

// Handler receives the full record of a selected podcast.
type Handler func(podcasts.Podcast)

// Decorator adjusts a card host before it is attached, e.g. to add request attributes.
type Decorator func(card *preview.Card, p podcasts.Podcast)

// Option customises a Grid.
type Option func(*Grid)

// WithVariant selects the card tag; it must be defined in the document registry.
func WithVariant(tag string) Option {
	return func(g *Grid) {
		if tag != "" {
			g.variant = tag
		}
	}
}

// WithLogger overrides the document logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDecorator installs a hook that runs for every card before it is attached.
func WithDecorator(fn Decorator) Option {
	return func(g *Grid) {
		g.decorate = fn
	}
}

type entry struct {
	record      podcasts.Podcast
	card        *preview.Card
	unsubscribe func()
}

// Grid owns one container element. Render always clears before rebuilding, so the container
// never holds two cards for the same podcast id.
type Grid struct {
	doc         *dom.Document
	containerID string
	genres      *genres.Service
	dates       *dateutil.Formatter
	handler     Handler
	variant     string
	decorate    Decorator
	logger      *zap.Logger

	entries map[string]*entry
}

// New binds a grid to the element with containerID in doc. The container is resolved on each
// call, so it may be added to the document later.
func New(doc *dom.Document, containerID string, genreService *genres.Service, dates *dateutil.Formatter, handler Handler, opts ...Option) *Grid {
	if containerID == "" {
		containerID = DefaultContainerID
	}
	if dates == nil {
		dates = dateutil.Default()
	}
	g := &Grid{
		doc:         doc,
		containerID: containerID,
		genres:      genreService,
		dates:       dates,
		handler:     handler,
		variant:     preview.TagPreview,
		logger:      doc.Logger(),
		entries:     map[string]*entry{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(zap.String("component", "grid"), zap.String("container", containerID))
	return g
}

// Render replaces the grid contents with one card per podcast, in list order. A missing
// container is logged and nothing happens. A card that fails to build is logged and skipped.
func (g *Grid) Render(list []podcasts.Podcast) {
	container := g.container()
	if container == nil {
		g.logger.Error("grid container not found")
		return
	}
	if list == nil {
		g.logger.Warn("render called with nil podcast list")
	}

	g.clear(container)
	for i, p := range list {
		g.renderOne(container, i, p)
	}
	g.logger.Debug("grid rendered", zap.Int("cards", len(g.entries)))
}

// Clear removes every card. It is safe on an empty grid.
func (g *Grid) Clear() {
	container := g.container()
	if container == nil {
		g.logger.Error("grid container not found")
		g.dropEntries()
		return
	}
	g.clear(container)
}

// Len returns the number of rendered cards.
func (g *Grid) Len() int { return len(g.entries) }

// Card returns the rendered card for id.
func (g *Grid) Card(id string) (*preview.Card, bool) {
	e, ok := g.entries[id]
	if !ok {
		return nil, false
	}
	return e.card, true
}

// IDs returns the podcast ids of the rendered cards in display order.
func (g *Grid) IDs() []string {
	container := g.container()
	if container == nil {
		return nil
	}
	ids := make([]string, 0, len(g.entries))
	for _, child := range dom.ElementChildren(container) {
		ids = append(ids, dom.AttrOr(child, preview.AttrPodcastID, ""))
	}
	return ids
}

func (g *Grid) container() *html.Node {
	if g == nil || g.doc == nil {
		return nil
	}
	return g.doc.GetElementByID(g.containerID)
}

func (g *Grid) clear(container *html.Node) {
	g.doc.ReplaceChildren(container)
	g.dropEntries()
}

func (g *Grid) dropEntries() {
	for id, e := range g.entries {
		e.unsubscribe()
		delete(g.entries, id)
	}
}

func (g *Grid) renderOne(container *html.Node, position int, p podcasts.Podcast) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("render podcast card",
				zap.String("podcast_id", p.ID),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()

	host, err := g.doc.CreateElement(g.variant)
	if err != nil {
		g.logger.Error("create podcast card", zap.String("podcast_id", p.ID), zap.Error(err))
		return
	}
	card, ok := preview.FromHost(g.doc, host)
	if !ok {
		g.logger.Error("element is not a podcast card", zap.String("tag", g.variant))
		return
	}

	card.SetData(preview.Data{
		ID:      p.ID,
		Title:   p.Title,
		Image:   p.Image,
		Genres:  g.genres.Names(p.Genres),
		Seasons: len(p.Seasons),
		Updated: g.dates.Date(p.Updated),
	})
	if g.decorate != nil {
		g.decorate(card, p)
	}

	key := p.ID
	if strings.TrimSpace(p.ID) == "" {
		g.logger.Warn("podcast without id, keyed by position", zap.Int("position", position), zap.String("title", p.Title))
		key = positionKey(position)
	}
	if prev, exists := g.entries[key]; exists {
		g.logger.Warn("duplicate podcast id, replacing earlier card", zap.String("podcast_id", p.ID))
		prev.unsubscribe()
		g.doc.RemoveChild(container, prev.card.Host())
	}

	e := &entry{record: p, card: card}
	e.unsubscribe = g.doc.AddEventListener(host, preview.EventPodcastSelected, func(ev *dom.Event) {
		g.onSelected(e, ev)
	})
	g.entries[key] = e
	g.doc.AppendChild(container, host)
}

// positionKey cannot collide with a dataset id, which never contains NUL.
func positionKey(position int) string {
	return "\x00position-" + strconv.Itoa(position)
}

// onSelected forwards the record the card was built from; the event itself only carries the id.
func (g *Grid) onSelected(e *entry, ev *dom.Event) {
	if _, ok := preview.SelectedID(ev); !ok {
		return
	}
	if g.handler == nil {
		return
	}
	g.handler(e.record)
}
