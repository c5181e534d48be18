package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/inplace/internal/inplace"
	"github.com/studiowebux/inplace/internal/keybinds"
	"github.com/studiowebux/inplace/internal/session"
	"github.com/studiowebux/inplace/internal/transport"
	"github.com/studiowebux/inplace/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeInput
	ModeTextarea
	ModeSelect
	ModeConfirm
	ModeJournal
	ModeHelp
)

// context returns the key binding context of a mode
func (m Mode) context() keybinds.Context {
	switch m {
	case ModeSearch:
		return keybinds.ContextSearch
	case ModeInput:
		return keybinds.ContextInput
	case ModeTextarea:
		return keybinds.ContextTextarea
	case ModeSelect:
		return keybinds.ContextSelect
	case ModeConfirm:
		return keybinds.ContextConfirm
	case ModeJournal:
		return keybinds.ContextJournal
	case ModeHelp:
		return keybinds.ContextHelp
	}
	return keybinds.ContextBrowse
}

func (m Mode) editing() bool {
	return m == ModeInput || m == ModeTextarea || m == ModeSelect
}

// Model represents the TUI state
type Model struct {
	sess    *session.Session
	journal JournalStore
	keys    *keybinds.Registry
	outPath string

	mode     Mode
	prevMode Mode // mode restored after the confirm prompt
	width    int
	height   int

	// Field list
	fields  []types.FieldInfo
	markup  []string
	visible []int // indices into fields after the fuzzy filter
	cursor  int   // position in visible
	offset  int
	query   string
	search  textinput.Model

	// Open editor
	editing   int
	editInfo  types.FieldInfo
	input     textinput.Model
	area      textarea.Model
	optIndex  int
	confirm   *confirmMsg
	preview   viewport.Model
	modalView viewport.Model

	journalState *JournalState

	statusMsg string
	statusErr bool
	quitting  bool
}

// Messages

type fieldsLoadedMsg struct {
	fields []types.FieldInfo
	markup []string
}

type noticeMsg session.Notice

type editorOpenedMsg struct {
	index int
	info  types.FieldInfo
	ok    bool
}

type editorStateMsg struct {
	editing bool
}

type journalLoadedMsg struct {
	entries []types.JournalEntry
}

type statusMsg struct {
	text string
	err  error
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadFields(), m.waitNotice(), m.attachReport())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case fieldsLoadedMsg:
		m.fields = msg.fields
		m.markup = msg.markup
		m.applyFilter()
		m.updatePreview()

	case noticeMsg:
		cmd = tea.Batch(m.handleNotice(session.Notice(msg)), m.waitNotice())

	case editorOpenedMsg:
		m.openEditor(msg)

	case editorStateMsg:
		if !msg.editing && m.mode.editing() {
			m.closeEditor()
		}

	case confirmMsg:
		m.confirm = &msg
		if m.mode != ModeConfirm {
			m.prevMode = m.mode
		}
		m.mode = ModeConfirm

	case journalLoadedMsg:
		m.journalState.SetEntries(msg.entries)
		m.updateJournalView()

	case statusMsg:
		m.setStatus(msg.text, msg.err)
	}

	return m, cmd
}

// handleNotice reports widget events and refreshes the field list
func (m *Model) handleNotice(n session.Notice) tea.Cmd {
	switch n.Type {
	case inplace.EventSuccess:
		m.setStatus("Saved "+n.Field, nil)
	case inplace.EventError:
		m.setStatus("Update of "+n.Field+" failed", describeError(n.Err))
	case inplace.EventAbort:
		m.setStatus("Discarded changes to "+n.Field, nil)
	case inplace.EventUpdate:
		m.setStatus("Sending "+n.Field+"...", nil)
	case inplace.EventDeactivate:
		if m.mode.editing() && n.Field == m.editInfo.Field {
			m.closeEditor()
		}
	case inplace.EventActivate:
		return nil
	}
	return m.loadFields()
}

func describeError(err error) error {
	var status *transport.StatusError
	if errors.As(err, &status) {
		return fmt.Errorf("server replied %d", status.Code)
	}
	if errors.Is(err, transport.ErrMalformedResponse) {
		return fmt.Errorf("server reply is not JSON")
	}
	return err
}

func (m *Model) setStatus(text string, err error) {
	m.statusMsg = text
	m.statusErr = err != nil
	if err != nil {
		m.statusMsg = text + ": " + err.Error()
	}
}

// applyFilter recomputes the visible fields and keeps the cursor in range
func (m *Model) applyFilter() {
	m.visible = filterFields(m.fields, m.query)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the field index under the cursor, or -1
func (m *Model) selected() int {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return -1
	}
	return m.visible[m.cursor]
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.updatePreview()
}

// openEditor mirrors the control the widget rendered
func (m *Model) openEditor(msg editorOpenedMsg) {
	if !msg.ok {
		return
	}
	m.editing = msg.index
	m.editInfo = msg.info

	switch msg.info.Kind {
	case types.KindTextarea:
		m.area.SetValue(msg.info.Value)
		m.area.Focus()
		m.mode = ModeTextarea
	case types.KindSelect:
		m.optIndex = 0
		for i, p := range msg.info.Options {
			if p.Key == msg.info.Value {
				m.optIndex = i
			}
		}
		m.mode = ModeSelect
	default:
		m.input.SetValue(msg.info.Value)
		m.input.CursorEnd()
		m.input.Focus()
		m.mode = ModeInput
	}
}

func (m *Model) closeEditor() {
	m.input.Blur()
	m.area.Blur()
	m.mode = ModeBrowse
}

func (m *Model) answerConfirm(yes bool) {
	if m.confirm == nil {
		return
	}
	m.confirm.reply <- yes
	m.confirm = nil
	m.mode = m.prevMode
}
