package dom

import (
	"strings"
)

// Value returns the current value of a form control
func (e *Element) Value() string {
	switch e.Tag() {
	case "input", "option":
		if v, ok := e.Attr("value"); ok {
			return v
		}
		if e.Tag() == "option" {
			return e.Text()
		}
		return ""
	case "textarea":
		return e.Text()
	case "select":
		if opt := e.SelectedOption(); opt != nil {
			return opt.Value()
		}
		return ""
	}
	return ""
}

// SetValue sets the value of a form control
func (e *Element) SetValue(v string) {
	switch e.Tag() {
	case "input", "option":
		e.SetAttr("value", v)
	case "textarea":
		e.SetText(v)
	case "select":
		for _, opt := range e.Options() {
			if opt.Value() == v {
				opt.SetAttr("selected", "selected")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	}
}

// Options returns the option children of a select
func (e *Element) Options() []*Element {
	opts, _ := e.QueryAll("option")
	return opts
}

// SelectedOption returns the selected option of a select, defaulting to the first
func (e *Element) SelectedOption() *Element {
	opts := e.Options()
	for _, opt := range opts {
		if _, ok := opt.Attr("selected"); ok {
			return opt
		}
	}
	if len(opts) > 0 {
		return opts[0]
	}
	return nil
}

// Style returns an inline style property
func (e *Element) Style(prop string) string {
	for _, decl := range parseStyle(e.styleAttr()) {
		if decl[0] == prop {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets an inline style property; an empty value removes it
func (e *Element) SetStyle(prop, value string) {
	decls := parseStyle(e.styleAttr())
	found := false
	out := decls[:0]
	for _, decl := range decls {
		if decl[0] == prop {
			found = true
			if value == "" {
				continue
			}
			decl[1] = value
		}
		out = append(out, decl)
	}
	if !found && value != "" {
		out = append(out, [2]string{prop, value})
	}

	parts := make([]string, 0, len(out))
	for _, decl := range out {
		parts = append(parts, decl[0]+": "+decl[1])
	}
	if len(parts) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", strings.Join(parts, "; "))
}

func (e *Element) styleAttr() string {
	v, _ := e.Attr("style")
	return v
}

func parseStyle(s string) [][2]string {
	var out [][2]string
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, [2]string{prop, strings.TrimSpace(value)})
	}
	return out
}
