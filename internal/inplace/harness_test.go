package inplace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/loop"
	"github.com/studiowebux/inplace/internal/types"
)

// fakeUpdater records update requests; tests complete them by hand
type fakeUpdater struct {
	calls []*updateCall
}

type updateCall struct {
	req  *types.UpdateRequest
	done func(string, error)
}

func (f *fakeUpdater) Update(req *types.UpdateRequest, done func(string, error)) {
	f.calls = append(f.calls, &updateCall{req: req, done: done})
}

func (f *fakeUpdater) last(t *testing.T) *updateCall {
	t.Helper()
	require.NotEmpty(t, f.calls, "no update was sent")
	return f.calls[len(f.calls)-1]
}

func (c *updateCall) respond(body string) { c.done(body, nil) }
func (c *updateCall) fail(err error)      { c.done("", err) }

type harness struct {
	t        *testing.T
	doc      *dom.Document
	sched    *loop.Manual
	up       *fakeUpdater
	reg      *Registry
	answer   bool
	confirms []string
	events   []string
}

var allEvents = []string{
	EventActivate, EventUpdate, EventSuccess, EventAbort,
	EventError, EventDeactivate, EventAjaxSuccess, EventAjaxError,
}

func newHarness(t *testing.T, body string, opts ...RegistryOption) *harness {
	t.Helper()
	page := `<!DOCTYPE html><html><head>
<meta name="csrf-param" content="authenticity_token">
<meta name="csrf-token" content="s3cr3t">
</head><body>` + body + `</body></html>`

	doc, err := dom.ParseString(page, dom.WithLocation("http://example.test/users/1"))
	require.NoError(t, err)

	h := &harness{t: t, doc: doc, sched: loop.NewManual(), up: &fakeUpdater{}, answer: true}
	confirm := WithConfirmer(ConfirmFunc(func(msg string) bool {
		h.confirms = append(h.confirms, msg)
		return h.answer
	}))
	h.reg = NewRegistry(doc, h.sched, h.up, append([]RegistryOption{confirm}, opts...)...)

	for _, typ := range allEvents {
		typ := typ
		doc.Body().On(typ, func(*dom.Event) { h.events = append(h.events, typ) })
	}
	return h
}

// attached builds a harness and attaches every field
func attached(t *testing.T, body string, opts ...RegistryOption) *harness {
	t.Helper()
	h := newHarness(t, body, opts...)
	_, err := h.reg.AttachAll(nil)
	require.NoError(t, err)
	return h
}

func (h *harness) field(id string) (*dom.Element, *Editor) {
	h.t.Helper()
	el := h.doc.ByID(id)
	require.NotNil(h.t, el, "no element #%s", id)
	ed := h.reg.Editor(el)
	require.NotNil(h.t, ed, "no editor on #%s", id)
	return el, ed
}

// activate clicks the field and returns its control
func (h *harness) activate(id string) (*Editor, *dom.Element) {
	h.t.Helper()
	el, ed := h.field(id)
	el.Click()
	require.Equal(h.t, StateEditing, ed.State())
	require.NotNil(h.t, ed.Control())
	return ed, ed.Control()
}

func (h *harness) button(el *dom.Element, typ string) *dom.Element {
	h.t.Helper()
	btn, err := el.Query("input[type='" + typ + "']")
	require.NoError(h.t, err)
	require.NotNil(h.t, btn, "no %s button", typ)
	return btn
}
