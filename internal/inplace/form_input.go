package inplace

import (
	"strings"

	"github.com/studiowebux/inplace/internal/dom"
)

// inputForm edits a single line of text
type inputForm struct{}

func (inputForm) render(e *Editor, a *activation) {
	shell := e.newShell(formInPlaceClass)
	input := e.env.doc.CreateElement("input",
		"type", "text",
		"name", e.opts.AttributeName,
		"value", a.display)
	e.mount(a, shell, input)
	e.addButtons(a, e.Abort)

	shell.On(dom.EventSubmit, e.onSubmit(a))
	input.On(dom.EventBlur, e.onBlur(a, e.Abort))
	input.On(dom.EventKeyUp, onEscape(e.Abort))
	input.Select()
}

func (inputForm) value(_ *Editor, a *activation) string {
	return strings.TrimSpace(a.control.Value())
}

func (inputForm) commitsOnActivate() bool { return false }
