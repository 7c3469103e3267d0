package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"
)

type recordingElement struct {
	host        *html.Node
	connects    int
	disconnects int
	changes     []string
}

func (e *recordingElement) Host() *html.Node             { return e.host }
func (e *recordingElement) Connected()                   { e.connects++ }
func (e *recordingElement) Disconnected()                { e.disconnects++ }
func (e *recordingElement) ObservedAttributes() []string { return []string{"title"} }
func (e *recordingElement) AttributeChanged(name, oldValue, newValue string) {
	e.changes = append(e.changes, name+":"+oldValue+"->"+newValue)
}

func newRecordingRegistry(t *testing.T) (*Registry, *[]*recordingElement) {
	t.Helper()

	var made []*recordingElement
	reg := NewRegistry()
	require.NoError(t, reg.Define("x-record", func(_ *Document, host *html.Node) Element {
		el := &recordingElement{host: host}
		made = append(made, el)
		return el
	}))
	return reg, &made
}

func TestRegistryRejectsDuplicateAndInvalidNames(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	ctor := func(_ *Document, host *html.Node) Element { return &recordingElement{host: host} }

	require.NoError(t, reg.Define("podcast-preview", ctor))
	require.ErrorIs(t, reg.Define("podcast-preview", ctor), ErrAlreadyDefined)
	require.ErrorIs(t, reg.Define("preview", ctor), ErrInvalidName)
	require.ErrorIs(t, reg.Define("Podcast-Card", ctor), ErrInvalidName)
	require.Panics(t, func() { reg.MustDefine("podcast-preview", ctor) })
	_, ok := reg.Lookup("podcast-preview")
	require.True(t, ok)
	_, ok = reg.Lookup("preview")
	require.False(t, ok)
}

func TestCreateElementUnknownCustomTag(t *testing.T) {
	t.Parallel()

	doc := New(nil)
	_, err := doc.CreateElement("x-missing")
	require.True(t, errors.Is(err, ErrUnknownElement))

	div, err := doc.CreateElement("div")
	require.NoError(t, err)
	require.Equal(t, "div", div.Data)
}

func TestLifecycleCallbacks(t *testing.T) {
	t.Parallel()

	reg, made := newRecordingRegistry(t)
	doc := New(reg)

	host, err := doc.CreateElement("x-record")
	require.NoError(t, err)
	require.Len(t, *made, 1)
	el := (*made)[0]

	wrapper := NewElement("section")
	doc.AppendChild(wrapper, host)
	require.Zero(t, el.connects, "detached parent must not connect")

	doc.AppendChild(doc.Body(), wrapper)
	require.Equal(t, 1, el.connects)

	doc.RemoveChild(doc.Body(), wrapper)
	require.Equal(t, 1, el.disconnects)

	doc.AppendChild(doc.Body(), wrapper)
	require.Equal(t, 2, el.connects)

	doc.ReplaceChildren(doc.Body())
	require.Equal(t, 2, el.disconnects)
	require.Nil(t, doc.Body().FirstChild)
}

func TestSetAttributeNotifiesObservedOnly(t *testing.T) {
	t.Parallel()

	reg, made := newRecordingRegistry(t)
	doc := New(reg)
	host, err := doc.CreateElement("x-record")
	require.NoError(t, err)

	doc.SetAttribute(host, "title", "One")
	doc.SetAttribute(host, "image", "cover.png")
	doc.SetAttribute(host, "title", "Two")

	require.Equal(t, []string{"title:->One", "title:One->Two"}, (*made)[0].changes)
	require.Equal(t, "cover.png", AttrOr(host, "image", ""))
}

func TestGetElementByIDSkipsShadowRoots(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(`<body><div id="host"></div><p id="outer"></p></body>`), nil)
	require.NoError(t, err)

	host := doc.GetElementByID("host")
	require.NotNil(t, host)

	root, err := doc.AttachShadow(host)
	require.NoError(t, err)
	doc.AppendChild(root, NewElement("span", "id", "inner"))

	require.Nil(t, doc.GetElementByID("inner"))
	require.NotNil(t, doc.GetElementByID("outer"))
	require.Same(t, root, host.FirstChild)

	again, err := doc.AttachShadow(host)
	require.ErrorIs(t, err, ErrShadowRootExists)
	require.Same(t, root, again)

	out := OuterHTML(host)
	require.Contains(t, out, `<template shadowrootmode="open"><span id="inner"></span></template>`)

	inner := Query(host, cascadia.MustCompile("#inner"))
	require.NotNil(t, inner)
	require.True(t, InShadowRoot(inner))
	require.False(t, InShadowRoot(doc.GetElementByID("outer")))
	require.Len(t, QueryAll(doc.Root(), MatchFunc(IsShadowRoot)), 1)
	require.Nil(t, Query(nil, MatchFunc(IsShadowRoot)))
}

func TestDispatchEventBubblesAcrossComposedShadowBoundary(t *testing.T) {
	t.Parallel()

	doc := New(nil)
	host := NewElement("div", "id", "host")
	doc.AppendChild(doc.Body(), host)
	root, err := doc.AttachShadow(host)
	require.NoError(t, err)
	inner := NewElement("button")
	doc.AppendChild(root, inner)

	var seen []*html.Node
	doc.AddEventListener(doc.Root(), "ping", func(ev *Event) {
		seen = append(seen, ev.Target)
	})

	doc.DispatchEvent(inner, &Event{Type: "ping", Bubbles: true})
	require.Empty(t, seen, "non-composed event must stay inside the shadow root")

	doc.DispatchEvent(inner, &Event{Type: "ping", Bubbles: true, Composed: true})
	require.Len(t, seen, 1)
	require.Same(t, host, seen[0], "target is retargeted to the host")
}

func TestDispatchEventStopPropagationAndRemoval(t *testing.T) {
	t.Parallel()

	doc := New(nil)
	child := NewElement("span")
	doc.AppendChild(doc.Body(), child)

	calls := 0
	remove := doc.AddEventListener(doc.Body(), "tap", func(*Event) { calls++ })
	stop := doc.AddEventListener(child, "tap", func(ev *Event) {
		ev.StopPropagation()
		ev.PreventDefault()
	})

	require.False(t, doc.DispatchEvent(child, &Event{Type: "tap", Bubbles: true}))
	require.Zero(t, calls)

	stop()
	require.True(t, doc.DispatchEvent(child, &Event{Type: "tap", Bubbles: true}))
	require.Equal(t, 1, calls)

	remove()
	doc.DispatchEvent(child, &Event{Type: "tap", Bubbles: true})
	require.Equal(t, 1, calls)
	require.Zero(t, doc.ListenerCount(doc.Body(), "tap"))
}

func TestPanickingListenerIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	doc := New(nil, WithLogger(zap.New(core)))

	after := 0
	doc.AddEventListener(doc.Body(), "boom", func(*Event) { panic("bad listener") })
	doc.AddEventListener(doc.Body(), "boom", func(*Event) { after++ })

	require.NotPanics(t, func() {
		doc.DispatchEvent(doc.Body(), &Event{Type: "boom"})
	})
	require.Equal(t, 1, after)
	require.Equal(t, 1, logs.FilterMessage("event listener panicked").Len())
}

func TestStyleProperty(t *testing.T) {
	t.Parallel()

	n := NewElement("body", "style", "color: red; overflow: auto")
	require.Equal(t, "auto", StyleProperty(n, "overflow"))

	SetStyleProperty(n, "overflow", "hidden")
	require.Equal(t, "color: red; overflow: hidden;", AttrOr(n, "style", ""))

	SetStyleProperty(n, "color", "")
	SetStyleProperty(n, "overflow", "")
	_, ok := Attr(n, "style")
	require.False(t, ok)
}

func TestClassAndTextHelpers(t *testing.T) {
	t.Parallel()

	n := NewElement("div", "class", "modal hidden")
	RemoveClass(n, "hidden")
	require.Equal(t, []string{"modal"}, Classes(n))
	AddClass(n, "hidden")
	AddClass(n, "hidden")
	require.Equal(t, "modal hidden", AttrOr(n, "class", ""))

	SetText(n, "<b>plain</b>")
	require.Equal(t, "<b>plain</b>", TextContent(n))
	require.Contains(t, OuterHTML(n), "&lt;b&gt;plain&lt;/b&gt;")
}
