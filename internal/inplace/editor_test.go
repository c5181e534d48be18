package inplace

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/transport"
)

const nameField = `<span id="name" class="best_in_place" data-bip-object="user" data-bip-attribute="name">Lucia</span>`

const notesField = `<div id="notes" class="best_in_place" data-bip-type="textarea" data-bip-object="note"
	data-bip-attribute="body" style="width: 300px; height: 60px">First line</div>`

const priorityField = `<span id="prio" class="best_in_place" data-bip-type="select" data-bip-object="task"
	data-bip-attribute="priority" data-bip-collection='[["1","Low"],["2","High"]]' data-bip-value="1">Low</span>`

const doneField = `<span id="done" class="best_in_place" data-bip-type="checkbox" data-bip-object="task"
	data-bip-attribute="done" data-bip-collection='["No","Yes"]' data-bip-value="false">No</span>`

func TestEditor_EmptyFieldShowsPlaceholder(t *testing.T) {
	h := attached(t, `<span id="empty" class="best_in_place" data-bip-object="user" data-bip-attribute="bio"></span>`)
	el, _ := h.field("empty")
	require.Equal(t, "—", el.Text())

	_, control := h.activate("empty")
	require.Equal(t, "", control.Value())
}

func TestEditor_InputActivation(t *testing.T) {
	h := attached(t, nameField)
	el, _ := h.field("name")

	ed, control := h.activate("name")
	require.Equal(t, "input", control.Tag())
	require.Equal(t, "Lucia", control.Value())
	require.Same(t, control, h.doc.Selected())

	form := control.Form()
	require.NotNil(t, form)
	require.True(t, form.HasClass("form_in_place"))
	require.True(t, el.Contains(form))
	require.Equal(t, []string{EventActivate}, h.events)

	// The trigger is unbound while editing.
	el.Dispatch(&dom.Event{Type: dom.EventClick})
	require.Same(t, control, ed.Control())
	require.Equal(t, []string{EventActivate}, h.events)
}

func TestEditor_InfoWhileEditingReportsControlValue(t *testing.T) {
	h := attached(t, nameField)

	ed, control := h.activate("name")
	info := ed.Info()
	require.Equal(t, "Lucia", info.Value)
	require.Equal(t, "Lucia", info.Display)
	require.False(t, info.Nil)
	require.Equal(t, StateEditing.String(), info.State)

	control.SetValue("Lucy")
	require.Equal(t, "Lucy", ed.Info().Value)

	ed.Abort()
	require.Equal(t, "Lucia", ed.Info().Value)
}

func TestEditor_AbortRestoresContentAndRebinds(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		id     string
		cancel func(h *harness, control *dom.Element)
	}{
		{"input escape", nameField, "name", func(_ *harness, c *dom.Element) { c.Press(dom.KeyEscape) }},
		{"textarea escape", notesField, "notes", func(_ *harness, c *dom.Element) { c.Press(dom.KeyEscape) }},
		{"select escape", priorityField, "prio", func(_ *harness, c *dom.Element) { c.Press(dom.KeyEscape) }},
		{"input cancel button", `<span id="name" class="best_in_place" data-bip-object="user"
			data-bip-attribute="name" data-bip-cancel-button="Cancel">Lucia <b>R.</b></span>`, "name",
			func(h *harness, c *dom.Element) { h.button(c.Form(), "button").Click() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := attached(t, tt.field)
			el, ed := h.field(tt.id)
			before := el.InnerHTML()

			_, control := h.activate(tt.id)
			control.SetValue("changed")
			tt.cancel(h, control)

			require.Equal(t, StateIdle, ed.State())
			require.Equal(t, before, el.InnerHTML())
			require.Nil(t, ed.Control())
			require.Empty(t, h.up.calls)
			require.Equal(t, []string{EventActivate, EventAbort, EventDeactivate}, h.events)

			h.sched.Advance(time.Second)
			require.Empty(t, h.up.calls)

			h.activate(tt.id)
		})
	}
}

func TestEditor_UnchangedTextAborts(t *testing.T) {
	for _, field := range []string{nameField, notesField} {
		h := attached(t, field)
		ed := h.reg.Editors()[0]
		ed.Element().Click()

		ed.Control().SetValue("  " + ed.Control().Value() + "  ")
		ed.Commit()

		require.Empty(t, h.up.calls)
		require.Equal(t, StateIdle, ed.State())
		require.Equal(t, []string{EventActivate, EventAbort, EventDeactivate}, h.events)
	}
}

func TestEditor_InputCommit(t *testing.T) {
	h := attached(t, nameField)
	el, ed := h.field("name")

	_, control := h.activate("name")
	control.SetValue(" Lucy & co ")
	control.Press(dom.KeyEnter)

	require.Equal(t, StateSubmitting, ed.State())
	require.Len(t, h.up.calls, 1)
	req := h.up.last(t).req
	require.Equal(t, "http://example.test/users/1", req.URL)
	require.Equal(t, "patch", req.Method)
	require.Equal(t, "user[name]", req.Field())
	require.Equal(t, "Lucy & co", req.Value)
	require.Equal(t, "authenticity_token", req.CSRFParam)
	require.Equal(t, "s3cr3t", req.CSRFToken)
	require.NotEmpty(t, req.ID)

	// Optimistic, sanitized rendering
	require.Equal(t, "Lucy &amp; co", el.InnerHTML())
	require.Nil(t, h.doc.ActiveElement())

	// No second activation while submitting
	el.Click()
	ed.Activate()
	require.Len(t, h.up.calls, 1)

	h.up.last(t).respond("")
	require.Equal(t, StateIdle, ed.State())
	require.Equal(t, "Lucy & co", el.Text())
	require.Equal(t, []string{
		EventActivate, EventUpdate, EventSuccess, EventAjaxSuccess, EventDeactivate,
	}, h.events)

	_, control = h.activate("name")
	require.Equal(t, "Lucy & co", control.Value())
}

func TestEditor_EmptyCommitShowsPlaceholder(t *testing.T) {
	h := attached(t, nameField)
	el, _ := h.field("name")

	_, control := h.activate("name")
	control.SetValue("")
	control.Form().Submit()

	require.Equal(t, "", h.up.last(t).req.Value)
	require.Equal(t, "—", el.Text())
}

func TestEditor_SelectRendersLabelBeforeResponse(t *testing.T) {
	h := attached(t, priorityField)
	el, ed := h.field("prio")

	_, control := h.activate("prio")
	require.Equal(t, "select", control.Tag())
	require.Equal(t, "1", control.Value())
	require.Len(t, control.Options(), 2)

	control.SetValue("2")
	control.Change()

	require.Len(t, h.up.calls, 1)
	require.Equal(t, "2", h.up.last(t).req.Value)
	require.Equal(t, "High", el.Text())
	require.Equal(t, "1", ed.Options().CollectionValue)

	h.up.last(t).respond(`{}`)
	require.Equal(t, "2", ed.Options().CollectionValue)
	v, _ := el.Data(AttrValue)
	require.Equal(t, "2", v)

	_, control = h.activate("prio")
	require.Equal(t, "2", control.Value())
}

func TestEditor_SelectFailureKeepsValue(t *testing.T) {
	h := attached(t, priorityField)
	el, ed := h.field("prio")

	_, control := h.activate("prio")
	control.SetValue("2")
	control.Blur()
	require.Equal(t, "High", el.Text())

	h.up.last(t).fail(errors.New("offline"))
	require.Equal(t, "Low", el.Text())
	require.Equal(t, "1", ed.Options().CollectionValue)
}

func TestEditor_CheckboxTogglesAndCommitsOnActivation(t *testing.T) {
	h := attached(t, doneField)
	el, ed := h.field("done")
	require.False(t, ed.Checked())

	el.Click()
	require.True(t, ed.Checked())
	require.Equal(t, "Yes", el.Text())
	require.Len(t, h.up.calls, 1)
	require.Equal(t, "true", h.up.last(t).req.Value)
	require.Equal(t, StateSubmitting, ed.State())
	require.Equal(t, []string{EventActivate, EventUpdate}, h.events)

	h.up.last(t).respond("")
	require.Equal(t, StateIdle, ed.State())
	v, _ := el.Data(AttrValue)
	require.Equal(t, "true", v)

	el.Click()
	require.Len(t, h.up.calls, 2)
	require.Equal(t, "false", h.up.last(t).req.Value)
	require.Equal(t, "No", el.Text())

	h.up.last(t).fail(errors.New("boom"))
	require.Equal(t, "Yes", el.Text())
	require.True(t, ed.Checked())
}

func TestEditor_DisplayAsBecomesOriginalContent(t *testing.T) {
	h := attached(t, nameField)
	el, _ := h.field("name")

	_, control := h.activate("name")
	control.SetValue("bob")
	control.Press(dom.KeyEnter)
	h.up.last(t).respond(`{"display_as":"Bob Smith"}`)

	require.Equal(t, "Bob Smith", el.Text())
	v, ok := el.Data(AttrOriginalContent)
	require.True(t, ok)
	require.Equal(t, "Bob Smith", v)

	_, control = h.activate("name")
	require.Equal(t, "Bob Smith", control.Value())
}

func TestEditor_OriginalContentOverride(t *testing.T) {
	h := attached(t, `<span id="price" class="best_in_place" data-bip-object="item"
		data-bip-attribute="price" data-bip-original-content="12.5">$12.50</span>`)
	el, _ := h.field("price")

	_, control := h.activate("price")
	require.Equal(t, "12.5", control.Value())

	control.SetValue("13")
	control.Press(dom.KeyEnter)
	h.up.last(t).respond("")
	require.Equal(t, "13", el.Text())

	_, control = h.activate("price")
	require.Equal(t, "13", control.Value())
}

func TestEditor_FailureRevertsExactly(t *testing.T) {
	field := `<span id="bio" class="best_in_place" data-bip-object="user" data-bip-attribute="bio"
		data-bip-sanitize="false">Hello <em>world</em> &amp; more</span>`

	failures := map[string]func(c *updateCall){
		"transport": func(c *updateCall) {
			c.fail(&transport.StatusError{Code: 422, Status: "422 Unprocessable Entity"})
		},
		"malformed": func(c *updateCall) { c.respond("<html>") },
	}
	for name, fail := range failures {
		t.Run(name, func(t *testing.T) {
			h := attached(t, field)
			el, ed := h.field("bio")
			before := el.InnerHTML()

			var got error
			el.On(EventError, func(ev *dom.Event) { got, _ = ev.Detail.(error) })

			_, control := h.activate("bio")
			require.Equal(t, "Hello <em>world</em> & more", control.Value())
			control.SetValue("<b>new</b>")
			control.Press(dom.KeyEnter)
			require.Equal(t, "<b>new</b>", el.InnerHTML())

			fail(h.up.last(t))
			require.Equal(t, before, el.InnerHTML())
			require.Equal(t, StateIdle, ed.State())
			require.Error(t, got)
			require.Equal(t, []string{
				EventActivate, EventUpdate, EventError, EventAjaxError, EventDeactivate,
			}, h.events)

			h.activate("bio")
		})
	}
}

func TestEditor_MalformedResponseError(t *testing.T) {
	h := attached(t, nameField)
	el, _ := h.field("name")

	var got error
	el.On(EventError, func(ev *dom.Event) { got, _ = ev.Detail.(error) })

	_, control := h.activate("name")
	control.SetValue("x")
	control.Press(dom.KeyEnter)
	h.up.last(t).respond("not json")

	require.ErrorIs(t, got, transport.ErrMalformedResponse)
	require.Equal(t, "Lucia", el.Text())
}

func TestEditor_EscapeNeverConfirmsOnInput(t *testing.T) {
	h := attached(t, nameField)
	h.answer = false

	ed, control := h.activate("name")
	control.SetValue("draft")
	control.Press(dom.KeyEscape)

	require.Equal(t, StateIdle, ed.State())
	require.Empty(t, h.confirms)
}

func TestEditor_TextareaEscapeDeclined(t *testing.T) {
	h := attached(t, notesField)
	el, ed := h.field("notes")
	h.answer = false

	_, control := h.activate("notes")
	control.Type("draft\ntext")
	control.Press(dom.KeyEscape)

	require.Equal(t, StateEditing, ed.State())
	require.Same(t, control, ed.Control())
	require.Equal(t, "draft\ntext", control.Value())
	require.Equal(t, []string{config.DefaultDefaults().ConfirmMessage}, h.confirms)

	h.answer = true
	control.Press(dom.KeyEscape)
	require.Equal(t, StateIdle, ed.State())
	require.Equal(t, "First line", el.Text())
	require.Len(t, h.confirms, 2)
}

func TestEditor_TextareaWithoutConfirm(t *testing.T) {
	h := attached(t, `<div id="notes" class="best_in_place" data-bip-type="textarea" data-bip-object="note"
		data-bip-attribute="body" data-bip-confirm="false">First line</div>`)
	h.answer = false

	ed, control := h.activate("notes")
	control.Type("draft")
	control.Press(dom.KeyEscape)

	require.Equal(t, StateIdle, ed.State())
	require.Empty(t, h.confirms)
}

func TestEditor_TextareaSizing(t *testing.T) {
	h := attached(t, notesField)

	_, control := h.activate("notes")
	require.Equal(t, "textarea", control.Tag())
	require.Equal(t, "First line", control.Value())
	require.True(t, control.Focused())
	require.Equal(t, "300px", control.Style("min-width"))
	require.Equal(t, "60px", control.Style("min-height"))

	rows, _ := control.Attr("rows")
	require.Equal(t, "1", rows)

	control.Type("a\nb\nc")
	rows, _ = control.Attr("rows")
	require.Equal(t, "3", rows)
}

func TestEditor_HTMLAttrsAndInnerClass(t *testing.T) {
	h := attached(t, `<span id="name" class="best_in_place" data-bip-object="user" data-bip-attribute="name"
		data-bip-inner-class="wide" data-bip-html-attrs='{"maxlength":"10","placeholder":"Name"}'>Lucia</span>`)

	_, control := h.activate("name")
	require.True(t, control.HasClass("wide"))
	v, _ := control.Attr("maxlength")
	require.Equal(t, "10", v)
	v, _ = control.Attr("placeholder")
	require.Equal(t, "Name", v)
}

func TestEditor_BlurWithoutButtonsCommits(t *testing.T) {
	h := attached(t, nameField)

	ed, control := h.activate("name")
	control.SetValue("Lucy")
	h.doc.Blur()

	require.Equal(t, StateSubmitting, ed.State())
	require.Len(t, h.up.calls, 1)
}

func TestEditor_BlurWithCancelCommitsAfterGrace(t *testing.T) {
	h := attached(t, `<span id="name" class="best_in_place" data-bip-object="user"
		data-bip-attribute="name" data-bip-cancel-button="Cancel">Lucia</span>`)

	ed, control := h.activate("name")
	control.SetValue("Lucy")
	h.doc.Blur()

	require.Equal(t, StateEditing, ed.State())
	h.sched.Advance(499 * time.Millisecond)
	require.Empty(t, h.up.calls)

	h.sched.Advance(time.Millisecond)
	require.Len(t, h.up.calls, 1)
	require.Equal(t, StateSubmitting, ed.State())
}

func TestEditor_CancelClickWinsOverBlurCommit(t *testing.T) {
	h := attached(t, `<span id="name" class="best_in_place" data-bip-object="user"
		data-bip-attribute="name" data-bip-cancel-button="Cancel" data-bip-cancel-button-class="btn">Lucia</span>`)
	el, ed := h.field("name")

	_, control := h.activate("name")
	control.SetValue("Lucy")
	cancel := h.button(control.Form(), "button")
	require.True(t, cancel.HasClass("btn"))

	// Focus moves to the button first, blurring the input.
	cancel.Click()
	h.sched.Advance(time.Second)

	require.Empty(t, h.up.calls)
	require.Equal(t, StateIdle, ed.State())
	require.Equal(t, "Lucia", el.Text())
	require.Zero(t, h.sched.PendingTimers())
}

func TestEditor_BlurWithOkAbortsAfterGrace(t *testing.T) {
	h := attached(t, `<span id="name" class="best_in_place" data-bip-object="user"
		data-bip-attribute="name" data-bip-ok-button="Save">Lucia</span>`)
	el, ed := h.field("name")

	_, control := h.activate("name")
	control.SetValue("Lucy")
	h.doc.Blur()

	h.sched.Advance(499 * time.Millisecond)
	require.Equal(t, StateEditing, ed.State())

	h.sched.Advance(time.Millisecond)
	require.Equal(t, StateIdle, ed.State())
	require.Equal(t, "Lucia", el.Text())
	require.Empty(t, h.up.calls)
	require.Contains(t, h.events, EventAbort)
}

func TestEditor_OkClickCommits(t *testing.T) {
	h := attached(t, `<span id="name" class="best_in_place" data-bip-object="user"
		data-bip-attribute="name" data-bip-ok-button="Save" data-bip-ok-button-class="primary">Lucia</span>`)
	el, ed := h.field("name")

	_, control := h.activate("name")
	control.SetValue("Lucy")
	ok := h.button(control.Form(), "submit")
	require.True(t, ok.HasClass("primary"))

	ok.Click()
	h.sched.Advance(time.Second)

	require.Len(t, h.up.calls, 1)
	require.Equal(t, StateSubmitting, ed.State())
	require.Equal(t, "Lucy", el.Text())
}

func TestEditor_TextareaBlurWithOkAsksBeforeDiscarding(t *testing.T) {
	h := attached(t, `<div id="notes" class="best_in_place" data-bip-type="textarea" data-bip-object="note"
		data-bip-attribute="body" data-bip-ok-button="Save">First line</div>`)
	h.answer = false

	ed, control := h.activate("notes")
	control.Type("draft")
	h.doc.Blur()
	h.sched.Advance(500 * time.Millisecond)

	require.Len(t, h.confirms, 1)
	require.Equal(t, StateEditing, ed.State())
	require.Equal(t, "draft", control.Value())
}

func TestEditor_CustomDefaults(t *testing.T) {
	d := config.DefaultDefaults()
	d.Method = "put"
	d.BlurDelay = 100 * time.Millisecond
	d.NilPlaceholder = "(none)"

	h := attached(t, `<span id="bio" class="best_in_place" data-bip-object="user" data-bip-attribute="bio"
		data-bip-cancel-button="Cancel"></span>`, WithDefaults(d))
	el, ed := h.field("bio")
	require.Equal(t, "(none)", el.Text())

	_, control := h.activate("bio")
	control.SetValue("hi")
	h.doc.Blur()
	h.sched.Advance(100 * time.Millisecond)

	require.Equal(t, StateSubmitting, ed.State())
	require.Equal(t, "put", h.up.last(t).req.Method)
}

func TestEditor_StaleCompletionIgnored(t *testing.T) {
	h := attached(t, nameField)
	el, ed := h.field("name")

	_, control := h.activate("name")
	control.SetValue("Lucy")
	control.Press(dom.KeyEnter)
	first := h.up.last(t)
	first.respond("")

	_, control = h.activate("name")
	control.SetValue("Lu")
	control.Press(dom.KeyEnter)

	first.fail(errors.New("late"))
	require.Equal(t, StateSubmitting, ed.State())
	require.Equal(t, "Lu", el.Text())
}
