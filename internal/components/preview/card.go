// Package preview implements the podcast preview custom elements. Both variants,
// <podcast-preview> and <podcast-card>, render the same fields into an open shadow root
// and announce clicks with a podcast-selected event.
package preview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"finitefield.org/podcast-catalog/internal/dateutil"
	"finitefield.org/podcast-catalog/internal/dom"
)

const (
	// TagPreview is the compact variant.
	TagPreview = "podcast-preview"
	// TagCard is the horizontal variant.
	TagCard = "podcast-card"

	// EventPodcastSelected is dispatched from the host when the card surface is clicked.
	EventPodcastSelected = "podcast-selected"

	// DefaultTitle is rendered when the title attribute is missing or blank.
	DefaultTitle = "Untitled Podcast"
	// UpdatedLabel precedes the card date unless the date formatter has a prefix.
	UpdatedLabel = "Updated: "
)

// Attribute names on the host element.
const (
	AttrPodcastID = "podcast-id"
	AttrTitle     = "title"
	AttrImage     = "image"
	AttrGenres    = "genres"
	AttrSeasons   = "seasons"
	AttrUpdated   = "updated"
)

var observedAttributes = []string{AttrTitle, AttrImage, AttrGenres, AttrSeasons, AttrUpdated}

// cardSurface is the clickable element inside the shadow root.
var cardSurface = cascadia.MustCompile(".card")

// Variants lists the tag names this package can define.
func Variants() []string { return []string{TagPreview, TagCard} }

// IsVariant reports whether tag is one of Variants.
func IsVariant(tag string) bool {
	return tag == TagPreview || tag == TagCard
}

// SelectionDetail is the payload of EventPodcastSelected. It carries the id only; listeners
// resolve the full record themselves.
type SelectionDetail struct {
	PodcastID string
}

// SelectedID extracts the podcast id from a podcast-selected event.
func SelectedID(ev *dom.Event) (string, bool) {
	if ev == nil || ev.Type != EventPodcastSelected {
		return "", false
	}
	detail, ok := ev.Detail.(SelectionDetail)
	if !ok {
		return "", false
	}
	return detail.PodcastID, true
}

// Data is the full set of card inputs applied by SetData.
type Data struct {
	ID    string
	Title string
	Image string
	// Genres are display names, already resolved.
	Genres  []string
	Seasons int
	// Updated is either display text or an ISO-8601 timestamp.
	Updated string
}

// Option configures cards created by a Constructor.
type Option func(*options)

type options struct {
	dates  *dateutil.Formatter
	logger *zap.Logger
}

// WithDateFormatter formats ISO values of the updated attribute.
func WithDateFormatter(f *dateutil.Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.dates = f
		}
	}
}

// WithLogger overrides the document logger for cards.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Card is one podcast card bound to a host element. Its rendered output depends only on the
// host attributes at render time.
type Card struct {
	doc     *dom.Document
	host    *html.Node
	variant string
	dates   *dateutil.Formatter
	logger  *zap.Logger

	root *html.Node
}

var _ dom.Element = (*Card)(nil)

// Constructor returns a dom.Constructor for variant.
func Constructor(variant string, opts ...Option) dom.Constructor {
	o := options{dates: dateutil.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return func(doc *dom.Document, host *html.Node) dom.Element {
		logger := o.logger
		if logger == nil {
			logger = doc.Logger()
		}
		return &Card{
			doc:     doc,
			host:    host,
			variant: variant,
			dates:   o.dates,
			logger:  logger.With(zap.String("element", variant)),
		}
	}
}

// Define registers both variants on reg.
func Define(reg *dom.Registry, opts ...Option) error {
	for _, tag := range Variants() {
		if err := reg.Define(tag, Constructor(tag, opts...)); err != nil {
			return err
		}
	}
	return nil
}

// FromHost returns the Card bound to host.
func FromHost(doc *dom.Document, host *html.Node) (*Card, bool) {
	el, ok := doc.ElementFor(host)
	if !ok {
		return nil, false
	}
	card, ok := el.(*Card)
	return card, ok
}

// Host implements dom.Element.
func (c *Card) Host() *html.Node { return c.host }

// Variant returns the tag name the card was created for.
func (c *Card) Variant() string { return c.variant }

// ID returns the podcast-id attribute.
func (c *Card) ID() string { return dom.AttrOr(c.host, AttrPodcastID, "") }

// ShadowRoot returns the card's shadow root, nil before the first connect.
func (c *Card) ShadowRoot() *html.Node { return c.root }

// ObservedAttributes implements dom.Element.
func (c *Card) ObservedAttributes() []string { return observedAttributes }

// Connected attaches the shadow root and renders on the first connect only.
func (c *Card) Connected() {
	if c.root != nil {
		return
	}
	root, err := c.doc.AttachShadow(c.host)
	if err != nil {
		c.logger.Error("attach shadow root", zap.Error(err))
		return
	}
	c.root = root
	c.doc.AddEventListener(root, "click", c.onClick)
	c.render()
}

// Disconnected implements dom.Element. The shadow root survives a move.
func (c *Card) Disconnected() {}

// AttributeChanged re-renders when an observed value really changed.
func (c *Card) AttributeChanged(name, oldValue, newValue string) {
	if oldValue == newValue || c.root == nil {
		return
	}
	c.render()
}

// SetData writes every field to the host attributes and re-renders once if any observed
// attribute changed. The id alone never triggers a render.
func (c *Card) SetData(d Data) {
	if c == nil || c.host == nil {
		return
	}
	dom.SetAttr(c.host, AttrPodcastID, d.ID)

	next := map[string]string{
		AttrTitle:   d.Title,
		AttrImage:   d.Image,
		AttrGenres:  strings.Join(d.Genres, ", "),
		AttrSeasons: strconv.Itoa(d.Seasons),
		AttrUpdated: d.Updated,
	}
	changed := false
	for _, name := range observedAttributes {
		old, had := dom.Attr(c.host, name)
		if had && old == next[name] {
			continue
		}
		dom.SetAttr(c.host, name, next[name])
		changed = true
	}
	if changed && c.root != nil {
		c.render()
	}
}

// Data reads the current inputs back from the host attributes.
func (c *Card) Data() Data {
	return Data{
		ID:      c.ID(),
		Title:   dom.AttrOr(c.host, AttrTitle, ""),
		Image:   dom.AttrOr(c.host, AttrImage, ""),
		Genres:  SplitGenres(dom.AttrOr(c.host, AttrGenres, "")),
		Seasons: parseSeasons(dom.AttrOr(c.host, AttrSeasons, "")),
		Updated: dom.AttrOr(c.host, AttrUpdated, ""),
	}
}

// Click simulates a pointer click on the card surface. Before the first render there is no
// surface and Click does nothing.
func (c *Card) Click() {
	surface := dom.Query(c.root, cardSurface)
	if surface == nil {
		c.logger.Debug("click on unrendered card", zap.String("podcast_id", c.ID()))
		return
	}
	c.doc.DispatchEvent(surface, &dom.Event{Type: "click", Bubbles: true, Composed: true})
}

func (c *Card) onClick(ev *dom.Event) {
	for n := ev.Target; n != nil && n != c.root; n = n.Parent {
		if dom.HasClass(n, "card") {
			c.dispatchSelected()
			return
		}
	}
}

func (c *Card) dispatchSelected() {
	c.doc.DispatchEvent(c.host, &dom.Event{
		Type:     EventPodcastSelected,
		Detail:   SelectionDetail{PodcastID: c.ID()},
		Bubbles:  true,
		Composed: true,
	})
}

func (c *Card) render() {
	markup, err := renderMarkup(c.variant, c.view())
	if err != nil {
		c.logger.Error("render card", zap.Error(err))
		return
	}
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		c.logger.Error("parse card markup", zap.Error(err))
		return
	}
	c.doc.ReplaceChildren(c.root, nodes...)
}

func (c *Card) view() view {
	title := strings.TrimSpace(dom.AttrOr(c.host, AttrTitle, ""))
	if title == "" {
		title = DefaultTitle
	}
	seasons := parseSeasons(dom.AttrOr(c.host, AttrSeasons, ""))
	return view{
		Title:        title,
		Image:        strings.TrimSpace(dom.AttrOr(c.host, AttrImage, "")),
		Seasons:      seasons,
		SeasonsLabel: seasonsLabel(seasons),
		Genres:       SplitGenres(dom.AttrOr(c.host, AttrGenres, "")),
		Updated:      c.displayDate(dom.AttrOr(c.host, AttrUpdated, "")),
	}
}

// displayDate formats ISO input and passes anything else through as display text. The
// formatter's prefix, when set, replaces UpdatedLabel.
func (c *Card) displayDate(raw string) string {
	text := strings.TrimSpace(raw)
	if date := c.dates.Date(text); date != "" {
		text = date
	}
	return c.dates.Label(text, UpdatedLabel)
}

// SplitGenres splits a comma-joined genre list, trimming entries and dropping empty ones.
// Order and duplicates are kept.
func SplitGenres(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func parseSeasons(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (c *Card) String() string {
	return fmt.Sprintf("<%s podcast-id=%q>", c.variant, c.ID())
}
