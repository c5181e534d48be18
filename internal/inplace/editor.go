package inplace

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/loop"
	"github.com/studiowebux/inplace/internal/transport"
	"github.com/studiowebux/inplace/internal/types"
)

// Updater sends a field update. done must be called exactly once, on the
// scheduler goroutine, with the reply body or the transport error.
type Updater interface {
	Update(req *types.UpdateRequest, done func(body string, err error))
}

// Confirmer asks the user whether in-progress changes may be discarded
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(message string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

// State is the lifecycle state of an Editor
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Editor drives one editable field
type Editor struct {
	env    *env
	el     *dom.Element
	opts   Options
	form   form
	logger *zap.Logger

	state State
	// prior is the inner HTML shown before activation, "" when it showed the placeholder
	prior    string
	pending  string
	inflight string
	checked  bool
	act      *activation

	activators []*dom.Element
	unbind     []func()
}

// activation holds what exists only while Editing
type activation struct {
	display   string
	form      *dom.Element
	control   *dom.Element
	blurTimer loop.Timer
	clicked   bool
}

// registerClick marks a button press so a pending blur fallback does nothing
func (a *activation) registerClick() {
	a.clicked = true
	if a.blurTimer != nil {
		a.blurTimer.Stop()
	}
}

func newEditor(env *env, el *dom.Element, opts Options) (*Editor, error) {
	e := &Editor{
		env:     env,
		el:      el,
		opts:    opts,
		form:    formFor(opts.Kind),
		checked: opts.CollectionValue == "true",
		logger:  env.logger.With(zap.String("field", describe(el)), zap.String("kind", string(opts.Kind))),
	}

	if opts.Activator == "" {
		e.activators = []*dom.Element{el}
	} else {
		found, err := env.doc.QueryAll(opts.Activator)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, ErrActivatorNotFound
		}
		e.activators = found
	}

	if strings.TrimSpace(el.InnerHTML()) == "" {
		e.setContent("")
	}
	e.bindActivator()
	return e, nil
}

// Element returns the field element
func (e *Editor) Element() *dom.Element {
	return e.el
}

// Options returns the resolved configuration
func (e *Editor) Options() Options {
	return e.opts
}

// Kind returns the field kind
func (e *Editor) Kind() types.Kind {
	return e.opts.Kind
}

// State returns the lifecycle state
func (e *Editor) State() State {
	return e.state
}

// Control returns the rendered control while Editing, or nil
func (e *Editor) Control() *dom.Element {
	if e.act == nil {
		return nil
	}
	return e.act.control
}

// Checked returns the current checkbox value
func (e *Editor) Checked() bool {
	return e.checked
}

// Info summarizes the field as it currently stands. While Editing, text
// kinds report the live control value.
func (e *Editor) Info() types.FieldInfo {
	info := types.FieldInfo{
		ID:      e.el.ID(),
		Field:   e.opts.ObjectName + "[" + e.opts.AttributeName + "]",
		Kind:    e.opts.Kind,
		URL:     e.opts.URL,
		State:   e.state.String(),
		Display: strings.TrimSpace(e.el.Text()),
		Nil:     e.isNil(),
		Options: e.opts.Collection,
	}
	switch e.opts.Kind {
	case types.KindSelect:
		info.Value = e.opts.CollectionValue
	case types.KindCheckbox:
		info.Value = strconv.FormatBool(e.checked)
	default:
		info.Value = e.displayValue()
		if e.act != nil {
			info.Value = e.act.display
			if e.act.control != nil {
				info.Value = e.act.control.Value()
			}
		}
	}
	if e.act != nil {
		info.Display = strings.TrimSpace(e.act.display)
		info.Nil = e.prior == ""
	}
	return info
}

// Activate switches the field to edit mode. It does nothing unless Idle.
func (e *Editor) Activate() {
	if e.state != StateIdle {
		return
	}

	display := e.displayValue()
	if e.isNil() {
		e.prior = ""
	} else {
		e.prior = e.el.InnerHTML()
	}

	e.unbindActivator()
	e.state = StateEditing
	e.act = &activation{display: display}
	e.form.render(e, e.act)

	e.logger.Debug("activate")
	e.el.Trigger(EventActivate, nil)

	if e.form.commitsOnActivate() {
		e.Commit()
	}
}

// Abort leaves edit mode and restores the content shown before activation
func (e *Editor) Abort() {
	if e.state != StateEditing {
		return
	}
	e.endActivation()
	e.setContent(e.prior)
	e.state = StateIdle
	e.bindActivator()

	e.logger.Debug("abort")
	e.el.Trigger(EventAbort, nil)
	e.el.Trigger(EventDeactivate, nil)
}

// AbortIfConfirm aborts when discarding needs no confirmation or the user
// confirms. It reports whether the field left edit mode.
func (e *Editor) AbortIfConfirm() bool {
	if e.state != StateEditing {
		return false
	}
	if e.opts.UseConfirm && !e.env.confirm.Confirm(e.env.defaults.ConfirmMessage) {
		return false
	}
	e.Abort()
	return true
}

// Commit submits the edited value. Unchanged text is treated as Abort.
func (e *Editor) Commit() {
	if e.state != StateEditing {
		return
	}

	a := e.act
	value := e.form.value(e, a)
	if e.opts.Kind.IsText() && e.unchanged(value, a) {
		e.Abort()
		return
	}

	e.endActivation()
	e.state = StateSubmitting
	e.pending = value
	if e.opts.Kind == types.KindCheckbox {
		e.checked = value == "true"
	}

	req := e.request(value)
	e.inflight = req.ID
	e.renderOptimistic(value)

	e.logger.Info("commit", zap.String("request_id", req.ID), zap.String("url", req.URL))
	e.el.Trigger(EventUpdate, value)

	e.env.updater.Update(req, func(body string, err error) {
		e.complete(req.ID, body, err)
	})
}

func (e *Editor) complete(id, body string, err error) {
	if e.state != StateSubmitting || e.inflight != id {
		e.logger.Warn("stale update completion", zap.String("request_id", id))
		return
	}
	e.inflight = ""

	if err != nil {
		e.fail(err)
		return
	}
	resp, err := transport.DecodeResponse(body)
	if err != nil {
		e.fail(err)
		return
	}
	e.succeed(body, resp)
}

func (e *Editor) succeed(body string, resp transport.Response) {
	switch {
	case resp.DisplayAs != nil:
		e.opts.OriginalContent = *resp.DisplayAs
		e.el.SetData(AttrOriginalContent, *resp.DisplayAs)
		e.setContent(*resp.DisplayAs)
	case e.opts.OriginalContent != "" && e.opts.Kind.IsText():
		// A stale override would be offered on the next activation.
		e.opts.OriginalContent = e.pending
		e.el.SetData(AttrOriginalContent, e.pending)
	}

	switch e.opts.Kind {
	case types.KindSelect:
		e.opts.CollectionValue = e.pending
		e.el.SetData(AttrValue, e.pending)
	case types.KindCheckbox:
		e.opts.CollectionValue = strconv.FormatBool(e.checked)
		e.el.SetData(AttrValue, e.opts.CollectionValue)
	}

	e.state = StateIdle
	e.logger.Info("update succeeded")
	e.el.Trigger(EventSuccess, body)
	e.el.Trigger(EventAjaxSuccess, body)
	e.bindActivator()
	e.el.Trigger(EventDeactivate, nil)
}

func (e *Editor) fail(err error) {
	e.setContent(e.prior)
	if e.opts.Kind == types.KindCheckbox {
		e.checked = !e.checked
	}

	e.state = StateIdle
	e.logger.Warn("update failed", zap.Error(err))
	e.el.Trigger(EventError, err)
	e.el.Trigger(EventAjaxError, err)
	e.bindActivator()
	e.el.Trigger(EventDeactivate, nil)
}

func (e *Editor) request(value string) *types.UpdateRequest {
	doc := e.env.doc
	target, err := doc.Resolve(e.opts.URL)
	if err != nil {
		target = e.opts.URL
	}

	req := &types.UpdateRequest{
		ID:            uuid.NewString(),
		URL:           target,
		Method:        e.env.defaults.Method,
		ObjectName:    e.opts.ObjectName,
		AttributeName: e.opts.AttributeName,
		Value:         value,
	}
	if param, ok := doc.Meta("csrf-param"); ok {
		if token, ok := doc.Meta("csrf-token"); ok {
			req.CSRFParam = param
			req.CSRFToken = token
		}
	}
	return req
}

// displayValue is the initial content of the control
func (e *Editor) displayValue() string {
	switch {
	case e.isNil():
		return ""
	case e.opts.OriginalContent != "":
		return e.opts.OriginalContent
	case e.opts.Sanitize:
		return e.el.Text()
	}
	return strings.ReplaceAll(e.el.InnerHTML(), "&amp;", "&")
}

func (e *Editor) isNil() bool {
	inner := strings.TrimSpace(e.el.InnerHTML())
	return inner == "" || inner == e.opts.Nil || e.el.Text() == e.opts.Nil
}

func (e *Editor) unchanged(value string, a *activation) bool {
	return value == e.prior || value == strings.TrimSpace(a.display)
}

func (e *Editor) renderOptimistic(value string) {
	switch e.opts.Kind {
	case types.KindSelect:
		if label, ok := e.opts.Collection.Label(value); ok {
			e.setContent(label)
		} else {
			e.el.SetText(value)
		}
	case types.KindCheckbox:
		e.setContent(e.opts.Collection.BoolLabel(e.checked))
	default:
		if value != "" && e.opts.Sanitize {
			e.el.SetText(value)
		} else {
			e.setContent(value)
		}
	}
}

// setContent replaces the field content with markup, or the placeholder when empty
func (e *Editor) setContent(markup string) {
	if markup == "" {
		markup = e.opts.Nil
	}
	if err := e.el.SetInnerHTML(markup); err != nil {
		e.logger.Warn("content is not valid HTML, rendering as text", zap.Error(err))
		e.el.SetText(markup)
	}
}

func (e *Editor) endActivation() {
	if e.act != nil && e.act.blurTimer != nil {
		e.act.blurTimer.Stop()
	}
	e.act = nil
}

func (e *Editor) bindActivator() {
	e.unbindActivator()
	for _, el := range e.activators {
		e.unbind = append(e.unbind, el.On(dom.EventClick, e.onActivatorClick))
	}
}

func (e *Editor) unbindActivator() {
	for _, off := range e.unbind {
		off()
	}
	e.unbind = nil
}

func (e *Editor) onActivatorClick(ev *dom.Event) {
	ev.PreventDefault()
	e.Activate()
}
