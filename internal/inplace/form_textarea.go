package inplace

import (
	"strconv"
	"strings"

	"github.com/studiowebux/inplace/internal/dom"
)

// textareaForm edits multi-line text. Discarding asks for confirmation.
type textareaForm struct{}

func (textareaForm) render(e *Editor, a *activation) {
	width, height := e.el.Style("width"), e.el.Style("height")

	shell := e.newShell(formInPlaceClass)
	area := e.env.doc.CreateElement("textarea", "name", e.opts.AttributeName)
	area.SetValue(strings.TrimSpace(a.display))
	e.mount(a, shell, area)

	if width != "" {
		area.SetStyle("min-width", width)
	}
	if height != "" {
		area.SetStyle("min-height", height)
	}
	autosize(area)

	cancel := func() { e.AbortIfConfirm() }
	e.addButtons(a, cancel)

	shell.On(dom.EventSubmit, e.onSubmit(a))
	area.On(dom.EventInput, func(*dom.Event) { autosize(area) })
	area.On(dom.EventBlur, e.onBlur(a, cancel))
	area.On(dom.EventKeyUp, onEscape(cancel))
	area.Focus()
}

func (textareaForm) value(_ *Editor, a *activation) string {
	return strings.TrimSpace(a.control.Value())
}

func (textareaForm) commitsOnActivate() bool { return false }

// autosize fits the visible rows to the line count
func autosize(area *dom.Element) {
	rows := strings.Count(area.Value(), "\n") + 1
	area.SetAttr("rows", strconv.Itoa(rows))
}
