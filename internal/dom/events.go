package dom

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Event types dispatched by the helpers in this package
const (
	EventClick   = "click"
	EventSubmit  = "submit"
	EventFocus   = "focus"
	EventBlur    = "blur"
	EventKeyDown = "keydown"
	EventKeyUp   = "keyup"
	EventChange  = "change"
	EventInput   = "input"
)

// Key names carried by keyboard events
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// nonBubbling lists event types delivered to the target only
var nonBubbling = map[string]bool{
	EventFocus: true,
	EventBlur:  true,
}

// Event is delivered to listeners along the target's ancestor path
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	Key           string
	Detail        any

	defaultPrevented bool
	stopped          bool
}

// PreventDefault suppresses the default action
func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// StopPropagation keeps the event from reaching further ancestors
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// Listener handles an event
type Listener func(*Event)

type listener struct {
	id uint64
	fn Listener
}

// On registers fn for events of type typ reaching e.
// The returned function removes the registration.
func (e *Element) On(typ string, fn Listener) func() {
	d := e.doc
	d.nextID++
	id := d.nextID

	byType := d.listeners[e.node]
	if byType == nil {
		byType = make(map[string][]*listener)
		d.listeners[e.node] = byType
	}
	byType[typ] = append(byType[typ], &listener{id: id, fn: fn})

	node := e.node
	return func() {
		byType := d.listeners[node]
		if byType == nil {
			return
		}
		ls := byType[typ]
		for i, l := range ls {
			if l.id == id {
				byType[typ] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to e and, for bubbling types, its ancestors.
// It returns false when a listener prevented the default action.
func (e *Element) Dispatch(ev *Event) bool {
	d := e.doc
	ev.Target = e

	path := []*html.Node{e.node}
	if !nonBubbling[ev.Type] {
		for p := e.node.Parent; p != nil; p = p.Parent {
			path = append(path, p)
		}
	}

	d.logger.Debug("dispatch",
		zap.String("type", ev.Type),
		zap.String("target", e.Tag()),
		zap.String("key", ev.Key))

	for _, n := range path {
		byType := d.listeners[n]
		if byType == nil {
			continue
		}
		ls := append([]*listener(nil), byType[ev.Type]...)
		if len(ls) == 0 {
			continue
		}
		ev.CurrentTarget = d.wrap(n)
		for _, l := range ls {
			l.fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

// Trigger dispatches a custom event carrying detail
func (e *Element) Trigger(typ string, detail any) bool {
	return e.Dispatch(&Event{Type: typ, Detail: detail})
}

// Click simulates a pointer click: focus moves to e (or away from the active
// element when e is not focusable), click is dispatched, and a submit button
// submits its form.
func (e *Element) Click() {
	if e.focusable() {
		e.Focus()
	} else if d := e.doc; d.active != nil && d.active != e.node {
		d.Blur()
	}

	if !e.Dispatch(&Event{Type: EventClick}) {
		return
	}
	if e.isSubmitButton() {
		if form := e.Form(); form != nil {
			form.Submit()
		}
	}
}

// Submit dispatches submit on a form element
func (e *Element) Submit() bool {
	return e.Dispatch(&Event{Type: EventSubmit})
}

// Press simulates a key press: keydown, the implicit form submission for
// Enter in a text input, then keyup.
func (e *Element) Press(key string) {
	if e.Dispatch(&Event{Type: EventKeyDown, Key: key}) && key == KeyEnter && e.isTextInput() {
		if form := e.Form(); form != nil {
			form.Submit()
		}
	}
	// A submit handler may have detached the control.
	if e.Attached() {
		e.Dispatch(&Event{Type: EventKeyUp, Key: key})
	}
}

// Change dispatches change
func (e *Element) Change() {
	e.Dispatch(&Event{Type: EventChange})
}

// Type sets the control value as if typed and dispatches input
func (e *Element) Type(value string) {
	e.SetValue(value)
	e.Dispatch(&Event{Type: EventInput})
}

// Form returns the form owning e, or nil
func (e *Element) Form() *Element {
	for el := e; el != nil; el = el.Parent() {
		if el.Tag() == "form" {
			return el
		}
	}
	return nil
}

func (e *Element) focusable() bool {
	switch e.Tag() {
	case "input", "textarea", "select", "button", "a":
		return true
	}
	_, ok := e.Attr("tabindex")
	return ok
}

func (e *Element) isSubmitButton() bool {
	typ, _ := e.Attr("type")
	switch e.Tag() {
	case "input":
		return typ == "submit"
	case "button":
		return typ == "" || typ == "submit"
	}
	return false
}

func (e *Element) isTextInput() bool {
	if e.Tag() != "input" {
		return false
	}
	typ, _ := e.Attr("type")
	return typ == "" || typ == "text"
}
