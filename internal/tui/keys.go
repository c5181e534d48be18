package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/inplace/internal/keybinds"
)

// handleKeyPress resolves the key in the current mode's context. Keys
// without a binding go to the focused text component.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	ctx := m.mode.context()
	action, ok, partial := m.keys.MatchSequence(ctx, msg.String())
	if partial {
		return nil
	}
	if !ok {
		action = keybinds.ActionNoOp
	}

	if action == keybinds.ActionQuitForce {
		m.answerConfirm(false)
		m.quitting = true
		return tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(action, msg)
	case ModeInput, ModeTextarea:
		return m.handleTextKey(action, msg)
	case ModeSelect:
		return m.handleSelectKey(action)
	case ModeConfirm:
		switch action {
		case keybinds.ActionConfirmYes:
			m.answerConfirm(true)
		case keybinds.ActionConfirmNo:
			m.answerConfirm(false)
		}
		return nil
	case ModeJournal:
		return m.handleJournalKey(action)
	case ModeHelp:
		return m.handleHelpKey(action)
	}
	return m.handleBrowseKey(action)
}

func (m *Model) handleBrowseKey(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		m.quitting = true
		return tea.Quit
	case keybinds.ActionNavigateUp:
		m.moveCursor(-1)
	case keybinds.ActionNavigateDown:
		m.moveCursor(1)
	case keybinds.ActionPageUp:
		m.moveCursor(-m.listHeight())
	case keybinds.ActionPageDown:
		m.moveCursor(m.listHeight())
	case keybinds.ActionGoToTop:
		m.moveCursor(-len(m.visible))
	case keybinds.ActionGoToBottom:
		m.moveCursor(len(m.visible))
	case keybinds.ActionEdit:
		if i := m.selected(); i >= 0 {
			return m.activate(i)
		}
	case keybinds.ActionSearch:
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		m.search.Focus()
		m.mode = ModeSearch
	case keybinds.ActionClearSearch:
		m.query = ""
		m.applyFilter()
		m.updatePreview()
	case keybinds.ActionYank:
		return m.yank()
	case keybinds.ActionSave:
		return m.save()
	case keybinds.ActionRefresh:
		return m.loadFields()
	case keybinds.ActionOpenJournal:
		m.mode = ModeJournal
		return m.loadJournal()
	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp
		m.updateHelpView()
	}
	return nil
}

func (m *Model) handleSearchKey(action keybinds.Action, msg tea.KeyMsg) tea.Cmd {
	switch action {
	case keybinds.ActionSubmit:
		m.search.Blur()
		m.mode = ModeBrowse
		return nil
	case keybinds.ActionCancel:
		m.search.Blur()
		m.query = ""
		m.applyFilter()
		m.updatePreview()
		m.mode = ModeBrowse
		return nil
	case keybinds.ActionNavigateUp:
		m.moveCursor(-1)
		return nil
	case keybinds.ActionNavigateDown:
		m.moveCursor(1)
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.query {
		m.query = m.search.Value()
		m.cursor = 0
		m.applyFilter()
		m.updatePreview()
	}
	return cmd
}

func (m *Model) handleTextKey(action keybinds.Action, msg tea.KeyMsg) tea.Cmd {
	value := m.input.Value()
	if m.mode == ModeTextarea {
		value = m.area.Value()
	}

	switch action {
	case keybinds.ActionSubmit:
		return m.submit(value)
	case keybinds.ActionCancel:
		return m.cancel()
	case keybinds.ActionBlur:
		return m.blur(value)
	}

	var cmd tea.Cmd
	if m.mode == ModeTextarea {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

func (m *Model) handleSelectKey(action keybinds.Action) tea.Cmd {
	options := m.editInfo.Options
	switch action {
	case keybinds.ActionNavigateUp:
		if m.optIndex > 0 {
			m.optIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.optIndex < len(options)-1 {
			m.optIndex++
		}
	case keybinds.ActionSubmit:
		if m.optIndex < len(options) {
			return m.submit(options[m.optIndex].Key)
		}
	case keybinds.ActionCancel:
		return m.cancel()
	case keybinds.ActionBlur:
		if m.optIndex < len(options) {
			return m.blur(options[m.optIndex].Key)
		}
	}
	return nil
}

func (m *Model) handleJournalKey(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeBrowse
		return nil
	case keybinds.ActionNavigateUp:
		m.journalState.Move(-1)
	case keybinds.ActionNavigateDown:
		m.journalState.Move(1)
	case keybinds.ActionPageUp:
		m.journalState.Move(-m.modalView.Height)
	case keybinds.ActionPageDown:
		m.journalState.Move(m.modalView.Height)
	case keybinds.ActionGoToTop:
		m.journalState.Jump(false)
	case keybinds.ActionGoToBottom:
		m.journalState.Jump(true)
	case keybinds.ActionJournalFailed:
		if m.journalState.ToggleFailedOnly() {
			m.setStatus("Showing failed updates", nil)
		} else {
			m.setStatus("Showing all updates", nil)
		}
		return m.loadJournal()
	case keybinds.ActionJournalClear:
		return m.clearJournal()
	}
	m.updateJournalView()
	return nil
}

func (m *Model) handleHelpKey(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeBrowse
	case keybinds.ActionNavigateUp:
		m.modalView.ScrollUp(1)
	case keybinds.ActionNavigateDown:
		m.modalView.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.modalView.PageUp()
	case keybinds.ActionPageDown:
		m.modalView.PageDown()
	case keybinds.ActionGoToTop:
		m.modalView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.modalView.GotoBottom()
	}
	return nil
}
