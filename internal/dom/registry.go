package dom

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

var (
	// ErrAlreadyDefined is returned when a tag name is registered twice.
	ErrAlreadyDefined = errors.New("dom: custom element already defined")
	// ErrInvalidName is returned for tag names that are not valid custom element names.
	ErrInvalidName = errors.New("dom: invalid custom element name")
	// ErrUnknownElement is returned when creating a custom element that was never defined.
	ErrUnknownElement = errors.New("dom: unknown custom element")
)

// Element is the lifecycle contract of a custom element instance bound to a host node.
type Element interface {
	// Host returns the light-DOM node the element is bound to.
	Host() *html.Node
	// Connected runs each time the host becomes connected to its document.
	Connected()
	// Disconnected runs each time the host is removed from a connected tree.
	Disconnected()
	// ObservedAttributes lists attribute names that trigger AttributeChanged.
	ObservedAttributes() []string
	// AttributeChanged runs after an observed attribute is set through Document.SetAttribute.
	AttributeChanged(name, oldValue, newValue string)
}

// Constructor builds an Element for a freshly created host node.
type Constructor func(doc *Document, host *html.Node) Element

// Registry maps custom element tag names to constructors. Definitions are meant to be made
// once at startup; after that the registry is only read and may be shared between documents.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]Constructor{}}
}

// Define registers ctor under tag. Redefinition is a configuration error.
func (r *Registry) Define(tag string, ctor Constructor) error {
	name := strings.TrimSpace(tag)
	if !validCustomElementName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, tag)
	}
	if ctor == nil {
		return fmt.Errorf("dom: nil constructor for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, name)
	}
	r.defs[name] = ctor
	return nil
}

// MustDefine is Define for startup code; it panics on error.
func (r *Registry) MustDefine(tag string, ctor Constructor) {
	if err := r.Define(tag, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the constructor registered for tag.
func (r *Registry) Lookup(tag string) (Constructor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.defs[tag]
	return ctor, ok
}

// validCustomElementName applies the practical subset of the HTML rules: lowercase ASCII,
// starts with a letter, contains a hyphen.
func validCustomElementName(name string) bool {
	if name == "" || !strings.Contains(name, "-") {
		return false
	}
	if name[0] < 'a' || name[0] > 'z' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '.', c == '_':
		default:
			return false
		}
	}
	return true
}
