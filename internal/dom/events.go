package dom

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Event is dispatched along a node's ancestor chain.
type Event struct {
	Type string
	// Detail carries the event payload.
	Detail any
	// Bubbles lets ancestors of the target observe the event.
	Bubbles bool
	// Composed lets the event leave a shadow root and continue from its host.
	Composed bool

	// Target is the dispatch target as seen by the running listener; it is retargeted to
	// the shadow host once the event leaves a shadow tree.
	Target *html.Node
	// CurrentTarget is the node whose listener is running.
	CurrentTarget *html.Node

	stopped          bool
	defaultPrevented bool
}

// StopPropagation prevents listeners on further nodes from running.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles an event.
type Listener func(*Event)

type registeredListener struct {
	id int
	fn Listener
}

// AddEventListener registers fn for events of type typ reaching target. Passing the
// document root listens at document level. The returned func removes the listener.
func (d *Document) AddEventListener(target *html.Node, typ string, fn Listener) (remove func()) {
	if target == nil || fn == nil {
		return func() {}
	}
	d.nextListenerID++
	id := d.nextListenerID

	byType, ok := d.listeners[target]
	if !ok {
		byType = map[string][]registeredListener{}
		d.listeners[target] = byType
	}
	byType[typ] = append(byType[typ], registeredListener{id: id, fn: fn})

	return func() { d.removeListener(target, typ, id) }
}

func (d *Document) removeListener(target *html.Node, typ string, id int) {
	byType, ok := d.listeners[target]
	if !ok {
		return
	}
	list := byType[typ]
	for i, l := range list {
		if l.id == id {
			byType[typ] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(byType[typ]) == 0 {
		delete(byType, typ)
	}
	if len(byType) == 0 {
		delete(d.listeners, target)
	}
}

// ListenerCount returns the number of listeners for typ on target.
func (d *Document) ListenerCount(target *html.Node, typ string) int {
	return len(d.listeners[target][typ])
}

// DispatchEvent runs listeners for ev on target and, when ev bubbles, on each ancestor up to
// the document root. A non-composed event stops at the shadow root containing target. A
// panicking listener is logged and does not stop the remaining listeners. The return value
// is false when a listener called PreventDefault.
func (d *Document) DispatchEvent(target *html.Node, ev *Event) bool {
	if target == nil || ev == nil {
		return true
	}
	ev.stopped = false

	visible := target
	for n := target; n != nil; {
		ev.Target = visible
		ev.CurrentTarget = n
		d.invoke(n, ev)

		if ev.stopped || !ev.Bubbles {
			break
		}
		if IsShadowRoot(n) {
			if !ev.Composed || n.Parent == nil {
				break
			}
			// Listeners outside the shadow tree see the host as the target.
			visible = n.Parent
		}
		n = n.Parent
	}

	ev.CurrentTarget = nil
	ev.Target = visible
	return !ev.defaultPrevented
}

func (d *Document) invoke(n *html.Node, ev *Event) {
	list := d.listeners[n][ev.Type]
	if len(list) == 0 {
		return
	}
	snapshot := make([]registeredListener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		d.safeCall(l.fn, ev)
	}
}

func (d *Document) safeCall(fn Listener, ev *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("event listener panicked",
				zap.String("event", ev.Type),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()
	fn(ev)
}
