package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document with event and focus state
type Document struct {
	root     *html.Node
	location *url.URL
	logger   *zap.Logger

	elements  map[*html.Node]*Element
	listeners map[*html.Node]map[string][]*listener
	nextID    uint64

	active   *html.Node
	selected *html.Node
}

// Option configures a Document
type Option func(*Document) error

// WithLocation sets the document URL used to resolve relative links
func WithLocation(raw string) Option {
	return func(d *Document) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid document location %q: %w", raw, err)
		}
		d.location = u
		return nil
	}
}

// WithLogger sets the document logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) error {
		if logger != nil {
			d.logger = logger
		}
		return nil
	}
}

// Parse reads an HTML document
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	d := &Document{
		root:      root,
		location:  &url.URL{Path: "/"},
		logger:    zap.NewNop(),
		elements:  make(map[*html.Node]*Element),
		listeners: make(map[*html.Node]map[string][]*listener),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.Named("dom")
	return d, nil
}

// ParseString reads an HTML document from a string
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// Root returns the document node
func (d *Document) Root() *Element {
	return d.wrap(d.root)
}

// Body returns the body element, or nil
func (d *Document) Body() *Element {
	return d.wrap(htmlquery.FindOne(d.root, "//body"))
}

// Location returns the document URL
func (d *Document) Location() *url.URL {
	return d.location
}

// Resolve resolves ref against the document location
func (d *Document) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	return d.location.ResolveReference(u).String(), nil
}

// Query returns the first element matching selector, or nil
func (d *Document) Query(selector string) (*Element, error) {
	return d.Root().Query(selector)
}

// QueryAll returns every element matching selector in document order
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	return d.Root().QueryAll(selector)
}

// ByID returns the element with the given id, or nil
func (d *Document) ByID(id string) *Element {
	if strings.Contains(id, "'") {
		return nil
	}
	return d.wrap(htmlquery.FindOne(d.root, fmt.Sprintf("//*[@id='%s']", id)))
}

// Meta returns the content of <meta name="name">
func (d *Document) Meta(name string) (string, bool) {
	if strings.Contains(name, "'") {
		return "", false
	}
	n := htmlquery.FindOne(d.root, fmt.Sprintf("//meta[@name='%s']", name))
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == "content" {
			return a.Val, true
		}
	}
	return "", false
}

// CreateElement returns a detached element. attrs are key/value pairs.
func (d *Document) CreateElement(tag string, attrs ...string) *Element {
	n := &html.Node{
		Type: html.ElementNode,
		Data: strings.ToLower(tag),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return d.wrap(n)
}

// ActiveElement returns the focused element, or nil
func (d *Document) ActiveElement() *Element {
	return d.wrap(d.active)
}

// Selected returns the element whose content was last selected with Element.Select
func (d *Document) Selected() *Element {
	return d.wrap(d.selected)
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// HTML returns the document as an HTML string
func (d *Document) HTML() string {
	return htmlquery.OutputHTML(d.root, true)
}

// Focus moves focus to el, blurring the previously focused element
func (d *Document) Focus(el *Element) {
	if el == nil {
		d.blurActive()
		return
	}
	if d.active == el.node {
		return
	}
	d.blurActive()
	d.active = el.node
	el.Dispatch(&Event{Type: EventFocus})
}

// Blur removes focus from the active element
func (d *Document) Blur() {
	d.blurActive()
}

func (d *Document) blurActive() {
	if d.active == nil {
		return
	}
	prev := d.wrap(d.active)
	d.active = nil
	if d.selected == prev.node {
		d.selected = nil
	}
	if prev.Attached() {
		prev.Dispatch(&Event{Type: EventBlur})
	}
}

// wrap returns the unique Element for n
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// forget drops state held for a removed subtree. Removed nodes lose focus
// without a blur event and lose their listeners.
func (d *Document) forget(n *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == d.active {
			d.active = nil
		}
		if n == d.selected {
			d.selected = nil
		}
		delete(d.listeners, n)
		delete(d.elements, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
}
