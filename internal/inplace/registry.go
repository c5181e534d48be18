package inplace

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/loop"
)

// env is shared by every editor of a registry
type env struct {
	doc      *dom.Document
	sched    loop.Scheduler
	updater  Updater
	confirm  Confirmer
	defaults config.Defaults
	logger   *zap.Logger
}

// Registry owns the editors of one document
type Registry struct {
	env     *env
	editors map[*html.Node]*Editor
}

// RegistryOption configures a Registry
type RegistryOption func(*env)

// WithDefaults replaces the built-in defaults
func WithDefaults(d config.Defaults) RegistryOption {
	return func(e *env) {
		e.defaults = d
	}
}

// WithConfirmer sets the discard prompt. Without one every discard is accepted.
func WithConfirmer(c Confirmer) RegistryOption {
	return func(e *env) {
		if c != nil {
			e.confirm = c
		}
	}
}

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(e *env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewRegistry creates a registry for doc. Timers and update completions run on sched.
func NewRegistry(doc *dom.Document, sched loop.Scheduler, updater Updater, opts ...RegistryOption) *Registry {
	e := &env{
		doc:      doc,
		sched:    sched,
		updater:  updater,
		confirm:  ConfirmFunc(func(string) bool { return true }),
		defaults: config.DefaultDefaults(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("inplace")

	return &Registry{
		env:     e,
		editors: make(map[*html.Node]*Editor),
	}
}

// Defaults returns the defaults shared by the editors
func (r *Registry) Defaults() config.Defaults {
	return r.env.defaults
}

// AttachAll attaches an editor to every marked element under root, root
// included. Elements already attached are skipped. Fields with a bad
// configuration are left alone and their errors are returned joined.
func (r *Registry) AttachAll(root *dom.Element) ([]*Editor, error) {
	if root == nil {
		root = r.env.doc.Root()
	}
	selector := r.env.defaults.MarkerSelector

	candidates, err := root.QueryAll(selector)
	if err != nil {
		return nil, err
	}
	if self, err := root.Matches(selector); err == nil && self {
		candidates = append([]*dom.Element{root}, candidates...)
	}

	var attached []*Editor
	var errs []error
	for _, el := range candidates {
		if _, ok := r.editors[el.Node()]; ok {
			continue
		}
		ed, err := r.Attach(el)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		attached = append(attached, ed)
	}

	r.env.logger.Info("attached fields",
		zap.Int("attached", len(attached)),
		zap.Int("failed", len(errs)),
		zap.Int("total", len(r.editors)))
	return attached, errors.Join(errs...)
}

// Attach attaches an editor to el, or returns the one already attached
func (r *Registry) Attach(el *dom.Element) (*Editor, error) {
	if ed, ok := r.editors[el.Node()]; ok {
		return ed, nil
	}

	var ancestors []Attrs
	for _, a := range el.Ancestors() {
		ancestors = append(ancestors, DataAttrs(a))
	}
	opts, err := ResolveOptions(DataAttrs(el), ancestors, r.env.defaults, r.env.doc.Location().Path)
	if err != nil {
		r.env.logger.Warn("invalid field", zap.String("field", describe(el)), zap.Error(err))
		return nil, &ConfigError{Element: el, Err: err}
	}

	ed, err := newEditor(r.env, el, opts)
	if err != nil {
		r.env.logger.Warn("invalid field", zap.String("field", describe(el)), zap.Error(err))
		return nil, &ConfigError{Element: el, Err: err}
	}
	r.editors[el.Node()] = ed
	return ed, nil
}

// Delegate attaches marked fields lazily: a click under root on an element
// matching selector attaches it, if needed, and activates it.
// The returned function stops delegating.
func (r *Registry) Delegate(root *dom.Element, selector string) (func(), error) {
	if _, err := dom.ToXPath(selector); err != nil {
		return nil, err
	}
	if root == nil {
		root = r.env.doc.Root()
	}

	return root.On(dom.EventClick, func(ev *dom.Event) {
		el, err := ev.Target.Closest(selector)
		if err != nil || el == nil || !root.Contains(el) {
			return
		}
		if _, ok := r.editors[el.Node()]; ok {
			return
		}
		ed, err := r.Attach(el)
		if err != nil {
			return
		}
		ev.PreventDefault()
		ed.Activate()
	}), nil
}

// Editor returns the editor attached to el, or nil
func (r *Registry) Editor(el *dom.Element) *Editor {
	if el == nil {
		return nil
	}
	return r.editors[el.Node()]
}

// Editors returns the editors whose element is still in the document, in
// document order
func (r *Registry) Editors() []*Editor {
	out := make([]*Editor, 0, len(r.editors))
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if ed, ok := r.editors[n]; ok {
			out = append(out, ed)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(r.env.doc.Root().Node())
	return out
}
