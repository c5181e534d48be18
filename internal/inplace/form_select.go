package inplace

import (
	"strings"

	"github.com/studiowebux/inplace/internal/dom"
)

// selectForm picks one entry of the collection; any change commits
type selectForm struct{}

func (selectForm) render(e *Editor, a *activation) {
	doc := e.env.doc
	shell := e.newShell("")
	sel := doc.CreateElement("select", "name", e.opts.AttributeName)
	for _, p := range e.opts.Collection {
		opt := doc.CreateElement("option", "value", p.Key)
		if err := opt.SetInnerHTML(p.Label); err != nil {
			opt.SetText(p.Label)
		}
		if p.Key == e.opts.CollectionValue {
			opt.SetAttr("selected", "selected")
		}
		sel.AppendChild(opt)
	}
	e.mount(a, shell, sel)

	commit := func(*dom.Event) {
		if e.act == a {
			e.Commit()
		}
	}
	sel.On(dom.EventChange, commit)
	sel.On(dom.EventBlur, commit)
	sel.On(dom.EventKeyUp, onEscape(e.Abort))
	sel.Focus()
}

func (selectForm) value(_ *Editor, a *activation) string {
	return strings.TrimSpace(a.control.Value())
}

func (selectForm) commitsOnActivate() bool { return false }
