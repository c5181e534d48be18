package inplace

import (
	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/types"
)

// form renders and reads the control of one field kind.
// Implementations are stateless; per-activation state lives in activation.
type form interface {
	render(e *Editor, a *activation)
	value(e *Editor, a *activation) string
	commitsOnActivate() bool
}

func formFor(kind types.Kind) form {
	switch kind {
	case types.KindTextarea:
		return textareaForm{}
	case types.KindSelect:
		return selectForm{}
	case types.KindCheckbox:
		return checkboxForm{}
	}
	return inputForm{}
}

// formInPlaceClass marks the inline form of text controls
const formInPlaceClass = "form_in_place"

func (e *Editor) newShell(class string) *dom.Element {
	attrs := []string{"action", "javascript:void(0)", "style", "display:inline"}
	if class != "" {
		attrs = append(attrs, "class", class)
	}
	return e.env.doc.CreateElement("form", attrs...)
}

// mount swaps the field content for shell wrapping control
func (e *Editor) mount(a *activation, shell, control *dom.Element) {
	if e.opts.InnerClass != "" {
		control.AddClass(e.opts.InnerClass)
	}
	shell.AppendChild(control)
	e.el.ReplaceChildren(shell)
	for _, attr := range e.opts.HTMLAttrs {
		control.SetAttr(attr.Name, attr.Value)
	}
	a.form = shell
	a.control = control
}

// addButtons appends the configured OK and Cancel buttons to the form
func (e *Editor) addButtons(a *activation, cancel func()) {
	doc := e.env.doc
	if e.opts.OkButton != "" {
		ok := doc.CreateElement("input", "type", "submit", "value", e.opts.OkButton)
		if e.opts.OkButtonClass != "" {
			ok.AddClass(e.opts.OkButtonClass)
		}
		a.form.AppendChild(ok)
		// The submit default action then commits through the form.
		ok.On(dom.EventClick, func(*dom.Event) { a.registerClick() })
	}
	if e.opts.CancelButton != "" {
		btn := doc.CreateElement("input", "type", "button", "value", e.opts.CancelButton)
		if e.opts.CancelButtonClass != "" {
			btn.AddClass(e.opts.CancelButtonClass)
		}
		a.form.AppendChild(btn)
		btn.On(dom.EventClick, func(ev *dom.Event) {
			a.registerClick()
			ev.StopPropagation()
			cancel()
			if e.act == a {
				// still editing: the user declined to discard
				a.clicked = false
			}
		})
	}
}

func (e *Editor) onSubmit(a *activation) dom.Listener {
	return func(ev *dom.Event) {
		ev.PreventDefault()
		if e.act == a {
			e.Commit()
		}
	}
}

// onBlur implements the blur policy of text controls. Without buttons a blur
// commits. With only Cancel it commits after the grace delay, and with OK it
// calls fallback after the delay, unless a button was clicked meanwhile.
func (e *Editor) onBlur(a *activation, fallback func()) dom.Listener {
	return func(*dom.Event) {
		if e.act != a {
			return
		}
		switch {
		case e.opts.OkButton != "":
			e.afterGrace(a, fallback)
		case e.opts.CancelButton != "":
			e.afterGrace(a, e.Commit)
		default:
			e.Commit()
		}
	}
}

func (e *Editor) afterGrace(a *activation, fn func()) {
	if a.blurTimer != nil {
		a.blurTimer.Stop()
	}
	a.clicked = false
	a.blurTimer = e.env.sched.AfterFunc(e.env.defaults.BlurDelay, func() {
		if e.act != a || a.clicked {
			return
		}
		fn()
	})
}

func onEscape(fn func()) dom.Listener {
	return func(ev *dom.Event) {
		if ev.Key == dom.KeyEscape {
			fn()
		}
	}
}
