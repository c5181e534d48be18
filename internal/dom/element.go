package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// DataPrefix is the attribute prefix read by Data
const DataPrefix = "data-"

// Element wraps an element node of a Document
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying node
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owning document
func (e *Element) Document() *Document {
	return e.doc
}

// Tag returns the lower-case tag name
func (e *Element) Tag() string {
	if e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// ID returns the id attribute
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Attr returns an attribute value and whether it is present
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, adding it when missing
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute
func (e *Element) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Key != name {
			attrs = append(attrs, a)
		}
	}
	e.node.Attr = attrs
}

// Data returns the data-<key> attribute
func (e *Element) Data(key string) (string, bool) {
	return e.Attr(DataPrefix + key)
}

// SetData sets the data-<key> attribute
func (e *Element) SetData(key, value string) {
	e.SetAttr(DataPrefix+key, value)
}

// Attrs returns a copy of all attributes as a map
func (e *Element) Attrs() map[string]string {
	out := make(map[string]string, len(e.node.Attr))
	for _, a := range e.node.Attr {
		out[a.Key] = a.Val
	}
	return out
}

// Classes returns the class list
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether name is in the class list
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends names missing from the class list
func (e *Element) AddClass(names ...string) {
	classes := e.Classes()
	for _, name := range names {
		for _, n := range strings.Fields(name) {
			if !e.HasClass(n) {
				classes = append(classes, n)
			}
		}
	}
	if len(classes) > 0 {
		e.SetAttr("class", strings.Join(classes, " "))
	}
}

// InnerHTML serializes the children
func (e *Element) InnerHTML() string {
	return htmlquery.OutputHTML(e.node, false)
}

// SetInnerHTML replaces the children with the parsed fragment
func (e *Element) SetInnerHTML(s string) error {
	ctx := e.node
	if ctx.Type != html.ElementNode {
		ctx = nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return fmt.Errorf("failed to parse HTML fragment: %w", err)
	}
	e.clear()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Text returns the concatenated text of all descendants
func (e *Element) Text() string {
	return htmlquery.InnerText(e.node)
}

// SetText replaces the children with a single text node
func (e *Element) SetText(s string) {
	e.clear()
	if s != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
}

// ReplaceChildren replaces the children with the given elements
func (e *Element) ReplaceChildren(children ...*Element) {
	e.clear()
	for _, c := range children {
		e.AppendChild(c)
	}
}

// AppendChild moves child under e
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

func (e *Element) clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
}

// Parent returns the parent element, or nil at the top
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Ancestors returns the element ancestors, nearest first
func (e *Element) Ancestors() []*Element {
	var out []*Element
	for p := e.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// Contains reports whether other is e or one of its descendants
func (e *Element) Contains(other *Element) bool {
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Attached reports whether the element is part of the document tree
func (e *Element) Attached() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// Query returns the first descendant matching selector, or nil
func (e *Element) Query(selector string) (*Element, error) {
	all, err := e.QueryAll(selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// QueryAll returns the descendants matching selector in document order
func (e *Element) QueryAll(selector string) ([]*Element, error) {
	xpath, err := ToXPath(selector)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(e.node, scoped(xpath))
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n != e.node {
			out = append(out, e.doc.wrap(n))
		}
	}
	return out, nil
}

// Matches reports whether the element is selected by selector
func (e *Element) Matches(selector string) (bool, error) {
	xpath, err := ToXPath(selector)
	if err != nil {
		return false, err
	}
	top := e.node
	for top.Parent != nil {
		top = top.Parent
	}
	nodes, err := htmlquery.QueryAll(top, scoped(xpath))
	if err != nil {
		return false, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	for _, n := range nodes {
		if n == e.node {
			return true, nil
		}
	}
	return false, nil
}

// Closest returns the nearest of e and its ancestors matching selector
func (e *Element) Closest(selector string) (*Element, error) {
	for el := e; el != nil; el = el.Parent() {
		ok, err := el.Matches(selector)
		if err != nil {
			return nil, err
		}
		if ok {
			return el, nil
		}
	}
	return nil, nil
}

// Focused reports whether e is the active element
func (e *Element) Focused() bool {
	return e.doc.active == e.node
}

// Focus makes e the active element
func (e *Element) Focus() {
	e.doc.Focus(e)
}

// Blur removes focus from e when it is active
func (e *Element) Blur() {
	if e.Focused() {
		e.doc.Blur()
	}
}

// Select focuses e and marks its whole content as selected
func (e *Element) Select() {
	e.Focus()
	e.doc.selected = e.node
}

// String renders the element itself
func (e *Element) String() string {
	return htmlquery.OutputHTML(e.node, true)
}
