// Package dom is a small server-side document model over golang.org/x/net/html: custom
// element lifecycle, declarative shadow roots and event dispatch.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrShadowRootExists is returned when attaching a second shadow root to a host.
var ErrShadowRootExists = errors.New("dom: shadow root already attached")

var bodySelector = cascadia.MustCompile("body")

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is a parsed HTML tree plus the custom elements and listeners bound to its nodes.
// A Document is not safe for concurrent use.
type Document struct {
	root     *html.Node
	registry *Registry
	logger   *zap.Logger

	elements       map[*html.Node]Element
	connected      map[*html.Node]bool
	shadowRoots    map[*html.Node]*html.Node
	listeners      map[*html.Node]map[string][]registeredListener
	nextListenerID int
}

// DocumentOption customises a Document.
type DocumentOption func(*Document)

// WithLogger routes document diagnostics to logger.
func WithLogger(logger *zap.Logger) DocumentOption {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Parse reads a full HTML document. registry may be nil when no custom elements are used.
func Parse(r io.Reader, registry *Registry, opts ...DocumentOption) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	if registry == nil {
		registry = NewRegistry()
	}
	d := &Document{
		root:        root,
		registry:    registry,
		logger:      zap.NewNop(),
		elements:    map[*html.Node]Element{},
		connected:   map[*html.Node]bool{},
		shadowRoots: map[*html.Node]*html.Node{},
		listeners:   map[*html.Node]map[string][]registeredListener{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// New returns an empty html/head/body document.
func New(registry *Registry, opts ...DocumentOption) *Document {
	d, err := Parse(strings.NewReader(emptyDocument), registry, opts...)
	if err != nil {
		// The constant document always parses.
		panic(err)
	}
	return d
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Logger returns the document logger.
func (d *Document) Logger() *zap.Logger { return d.logger }

// Registry returns the custom element registry.
func (d *Document) Registry() *Registry { return d.registry }

// Body returns the <body> element.
func (d *Document) Body() *html.Node {
	return Query(d.root, bodySelector)
}

// GetElementByID searches the light tree for id. Shadow roots are not searched.
func (d *Document) GetElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	byID := MatchFunc(func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return n.Type == html.ElementNode && ok && v == id
	})
	for _, n := range QueryAll(d.root, byID) {
		if !InShadowRoot(n) {
			return n
		}
	}
	return nil
}

// CreateElement makes a detached element. Tags defined in the registry get their Element
// constructed immediately; tags containing a hyphen that are not defined are rejected.
func (d *Document) CreateElement(tag string) (*html.Node, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	host := NewElement(tag)
	if ctor, ok := d.registry.Lookup(tag); ok {
		d.elements[host] = ctor(d, host)
		return host, nil
	}
	if strings.Contains(tag, "-") {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, tag)
	}
	return host, nil
}

// ElementFor returns the custom element bound to host.
func (d *Document) ElementFor(host *html.Node) (Element, bool) {
	el, ok := d.elements[host]
	return el, ok
}

// IsConnected reports whether n is attached to the document, directly or through shadow hosts.
func (d *Document) IsConnected(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == d.root {
			return true
		}
	}
	return false
}

// AppendChild moves child under parent. Custom elements in child's subtree receive
// Connected when parent is connected.
func (d *Document) AppendChild(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	if child.Parent != nil {
		d.RemoveChild(child.Parent, child)
	}
	parent.AppendChild(child)
	if d.IsConnected(parent) {
		d.connectSubtree(child)
	}
}

// RemoveChild detaches child from parent and runs Disconnected on connected custom elements.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
	d.disconnectSubtree(child)
}

// ReplaceChildren removes every child of parent, then appends children in order.
func (d *Document) ReplaceChildren(parent *html.Node, children ...*html.Node) {
	if parent == nil {
		return
	}
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		d.RemoveChild(parent, c)
		c = next
	}
	for _, child := range children {
		d.AppendChild(parent, child)
	}
}

// SetAttribute sets an attribute and notifies the custom element bound to n when the name
// is observed. The element receives the change even when the value did not change and is
// responsible for ignoring no-op updates.
func (d *Document) SetAttribute(n *html.Node, name, value string) {
	if n == nil {
		return
	}
	old, _ := Attr(n, name)
	SetAttr(n, name, value)
	el, ok := d.elements[n]
	if !ok {
		return
	}
	for _, observed := range el.ObservedAttributes() {
		if observed == name {
			el.AttributeChanged(name, old, value)
			return
		}
	}
}

// AttachShadow gives host an open shadow root, serialised as a declarative
// <template shadowrootmode="open">. It is always the first child of host.
func (d *Document) AttachShadow(host *html.Node) (*html.Node, error) {
	if host == nil || host.Type != html.ElementNode {
		return nil, errors.New("dom: shadow host must be an element")
	}
	if root, ok := d.shadowRoots[host]; ok {
		return root, ErrShadowRootExists
	}
	root := NewElement("template", "shadowrootmode", "open")
	if host.FirstChild != nil {
		host.InsertBefore(root, host.FirstChild)
	} else {
		host.AppendChild(root)
	}
	d.shadowRoots[host] = root
	return root, nil
}

// ShadowRoot returns the shadow root of host, if any.
func (d *Document) ShadowRoot(host *html.Node) *html.Node {
	return d.shadowRoots[host]
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// RenderNode writes n and its subtree.
func RenderNode(w io.Writer, n *html.Node) error {
	if n == nil {
		return nil
	}
	return html.Render(w, n)
}

// OuterHTML returns the serialised form of n.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := RenderNode(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// ParseFragment parses markup in the context of a <div>.
func ParseFragment(markup string) ([]*html.Node, error) {
	context := NewElement("div")
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

func (d *Document) connectSubtree(n *html.Node) {
	if el, ok := d.elements[n]; ok && !d.connected[n] {
		d.connected[n] = true
		d.safeLifecycle("connected", el.Connected)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.connectSubtree(c)
	}
}

func (d *Document) disconnectSubtree(n *html.Node) {
	if el, ok := d.elements[n]; ok && d.connected[n] {
		d.connected[n] = false
		d.safeLifecycle("disconnected", el.Disconnected)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.disconnectSubtree(c)
	}
}

func (d *Document) safeLifecycle(phase string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("custom element lifecycle panicked",
				zap.String("phase", phase),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()
	fn()
}
