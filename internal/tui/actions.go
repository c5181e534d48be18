package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/inplace/internal/types"
)

// loadFields reads the field summaries and their markup from the session
func (m *Model) loadFields() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		fields := sess.Fields()
		markup := make([]string, len(fields))
		for i := range fields {
			markup[i], _ = sess.Markup(i)
		}
		return fieldsLoadedMsg{fields: fields, markup: markup}
	}
}

// waitNotice delivers the next widget event
func (m *Model) waitNotice() tea.Cmd {
	notices := m.sess.Notices()
	return func() tea.Msg {
		n, ok := <-notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// attachReport surfaces fields skipped at attach time
func (m *Model) attachReport() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if err := sess.AttachErr(); err != nil {
			return statusMsg{text: "Some fields were skipped", err: err}
		}
		return nil
	}
}

// activate opens field i. Checkboxes commit straight away and open nothing.
func (m *Model) activate(i int) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if err := sess.Activate(i); err != nil {
			return statusMsg{text: "Cannot edit", err: err}
		}
		idx, info, ok := sess.Editing()
		return editorOpenedMsg{index: idx, info: info, ok: ok}
	}
}

// submit replays the value into the document control
func (m *Model) submit(value string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if err := sess.Submit(value); err != nil {
			return statusMsg{text: "Submit failed", err: err}
		}
		return editorState(sess.Editing())
	}
}

// cancel presses Escape in the document control. A textarea may ask first.
func (m *Model) cancel() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if err := sess.Cancel(); err != nil {
			return statusMsg{text: "Cancel failed", err: err}
		}
		return editorState(sess.Editing())
	}
}

// blur enters value into the document control and moves focus away, as
// clicking elsewhere on the page would
func (m *Model) blur(value string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if err := sess.Input(value); err != nil {
			return statusMsg{text: "Blur failed", err: err}
		}
		if err := sess.Blur(); err != nil {
			return statusMsg{text: "Blur failed", err: err}
		}
		return editorState(sess.Editing())
	}
}

func editorState(_ int, _ types.FieldInfo, editing bool) editorStateMsg {
	return editorStateMsg{editing: editing}
}

// save writes the document
func (m *Model) save() tea.Cmd {
	sess, path := m.sess, m.outPath
	return func() tea.Msg {
		if path == "" {
			return statusMsg{text: "Nowhere to write", err: fmt.Errorf("no output path")}
		}
		if err := sess.Save(path); err != nil {
			return statusMsg{text: "Write failed", err: err}
		}
		return statusMsg{text: "Wrote " + path}
	}
}

// yank copies the selected field value to the clipboard
func (m *Model) yank() tea.Cmd {
	i := m.selected()
	if i < 0 {
		return nil
	}
	field := m.fields[i]
	return func() tea.Msg {
		if err := clipboard.WriteAll(field.Value); err != nil {
			return statusMsg{text: "Copy failed", err: err}
		}
		return statusMsg{text: "Copied " + field.Field}
	}
}

// loadJournal reads journal entries of this document
func (m *Model) loadJournal() tea.Cmd {
	if m.journal == nil {
		return func() tea.Msg { return statusMsg{text: "Journal disabled"} }
	}
	journal, filter := m.journal, m.journalState.Filter(m.sess.Name())
	return func() tea.Msg {
		entries, err := journal.Load(filter)
		if err != nil {
			return statusMsg{text: "Journal unavailable", err: err}
		}
		return journalLoadedMsg{entries: entries}
	}
}

// clearJournal deletes every journal entry and reloads
func (m *Model) clearJournal() tea.Cmd {
	if m.journal == nil {
		return nil
	}
	journal := m.journal
	return tea.Sequence(func() tea.Msg {
		if err := journal.Clear(); err != nil {
			return statusMsg{text: "Clear failed", err: err}
		}
		return statusMsg{text: "Journal cleared"}
	}, m.loadJournal())
}
