package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/inplace/internal/keybinds"
	"github.com/studiowebux/inplace/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

func (m *Model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	switch m.mode {
	case ModeJournal:
		return m.renderModal("Update journal", m.modalView.View(), m.footer(keybinds.ContextJournal,
			keybinds.ActionJournalFailed, keybinds.ActionJournalClear, keybinds.ActionCloseModal))
	case ModeHelp:
		return m.renderModal("Key bindings", m.modalView.View(), m.footer(keybinds.ContextHelp, keybinds.ActionCloseModal))
	case ModeConfirm:
		return m.renderConfirm()
	}
	return m.renderMain()
}

// renderMain renders the field list and the preview or editor panel
func (m *Model) renderMain() string {
	sidebarWidth, panelWidth := m.columns()
	height := m.height - StatusBarHeight - PanelBorderWidth

	sidebarColor, panelColor := colorGreen, colorGray
	if m.mode.editing() {
		sidebarColor, panelColor = colorGray, colorGreen
	}

	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sidebarColor).
		Width(sidebarWidth).
		Height(height).
		Render(m.renderFieldList(sidebarWidth, height))

	var body string
	if m.mode.editing() {
		body = m.renderEditor(panelWidth)
	} else {
		body = m.preview.View()
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(panelColor).
		Width(panelWidth).
		Height(height).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, panel),
		m.renderStatusBar(),
	)
}

func (m *Model) renderFieldList(width, height int) string {
	var sb strings.Builder
	title := fmt.Sprintf("Fields (%d)", len(m.visible))
	if m.query != "" {
		title = fmt.Sprintf("Fields (%d/%d)", len(m.visible), len(m.fields))
	}
	sb.WriteString(styleTitle.Render(title) + "\n")
	if m.mode == ModeSearch {
		sb.WriteString(m.search.View() + "\n")
		height--
	}

	rows := height - 1
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if rows > 0 && m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}

	for pos := m.offset; pos < len(m.visible) && pos < m.offset+rows; pos++ {
		f := m.fields[m.visible[pos]]
		line := fieldLine(f, width-2)
		if pos == m.cursor {
			line = styleSelected.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}
	if len(m.visible) == 0 {
		sb.WriteString(styleSubtle.Render("  no fields") + "\n")
	}
	return sb.String()
}

// fieldLine renders "name  display" truncated to width
func fieldLine(f types.FieldInfo, width int) string {
	display := f.Display
	if f.Kind == types.KindCheckbox {
		box := "[ ] "
		if f.Value == "true" {
			box = "[x] "
		}
		display = box + display
	}
	line := fmt.Sprintf("%-20s %s", f.Field, display)
	if f.State != "idle" {
		line += " (" + f.State + ")"
	}
	return truncate(line, width)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func (m *Model) renderEditor(width int) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Editing "+m.editInfo.Field) + "\n\n")

	switch m.mode {
	case ModeInput:
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n" + m.footer(keybinds.ContextInput, keybinds.ActionSubmit, keybinds.ActionCancel, keybinds.ActionBlur))
	case ModeTextarea:
		sb.WriteString(m.area.View())
		sb.WriteString("\n\n" + m.footer(keybinds.ContextTextarea, keybinds.ActionSubmit, keybinds.ActionCancel, keybinds.ActionBlur))
	case ModeSelect:
		for i, p := range m.editInfo.Options {
			line := truncate(p.Label, width-4)
			if i == m.optIndex {
				sb.WriteString(styleSelected.Render("> "+line) + "\n")
			} else {
				sb.WriteString("  " + line + "\n")
			}
		}
		sb.WriteString("\n" + m.footer(keybinds.ContextSelect, keybinds.ActionSubmit, keybinds.ActionCancel))
	}
	return sb.String()
}

func (m *Model) renderStatusBar() string {
	style := styleSubtle
	switch {
	case m.statusErr:
		style = styleError
	case m.sess.Dirty():
		style = styleWarning
	case m.statusMsg != "":
		style = styleSuccess
	}

	text := m.statusMsg
	if m.sess.Dirty() {
		text = "[modified] " + text
	}
	if text == "" {
		text = m.footer(keybinds.ContextBrowse, keybinds.ActionEdit, keybinds.ActionSearch, keybinds.ActionSave, keybinds.ActionOpenHelp)
	}
	return style.Render(truncate(text, m.width))
}

func (m *Model) renderConfirm() string {
	message := ""
	if m.confirm != nil {
		message = m.confirm.message
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorYellow).
		Padding(1, 2).
		Render(styleWarning.Render(message) + "\n\n" +
			m.footer(keybinds.ContextConfirm, keybinds.ActionConfirmYes, keybinds.ActionConfirmNo))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderModal(title, body, footer string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Width(m.width - ModalWidthMargin).
		Height(m.height - ModalHeightMargin).
		Render(styleTitle.Render(title) + "\n\n" + body + "\n\n" + footer)
}

// footer lists the keys of actions, e.g. "enter: Submit  esc: Cancel"
func (m *Model) footer(ctx keybinds.Context, actions ...keybinds.Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, m.keys.GetBindingString(ctx, a)+": "+keybinds.GetActionInfo(a).Description)
	}
	return styleSubtle.Render(strings.Join(parts, "  "))
}

// columns splits the width between the field list and the panel
func (m *Model) columns() (int, int) {
	sidebar := max(SidebarMinWidth, m.width*SidebarPercent/100)
	if sidebar > m.width/2 && m.width < 2*SidebarMinWidth+PanelBorderWidth*2 {
		sidebar = m.width / 2
	}
	panel := m.width - sidebar - PanelBorderWidth*2
	return sidebar, max(panel, 0)
}

func (m *Model) listHeight() int {
	return max(m.height-StatusBarHeight-PanelBorderWidth-1, 1)
}

// resize fits the components to the window
func (m *Model) resize() {
	_, panel := m.columns()
	height := m.height - StatusBarHeight - PanelBorderWidth

	m.preview.Width = panel
	m.preview.Height = max(height, 1)
	m.input.Width = max(panel-4, 10)
	m.area.SetWidth(max(panel-2, 10))
	m.area.SetHeight(min(TextareaMaxHeight, max(height-6, 3)))
	m.modalView.Width = max(m.width-ModalWidthMargin-2, 10)
	m.modalView.Height = max(m.height-ModalHeightMargin-6, 3)

	m.updatePreview()
	m.updateJournalView()
	m.updateHelpView()
}

// updatePreview shows the highlighted markup and summary of the selected field
func (m *Model) updatePreview() {
	i := m.selected()
	if i < 0 || i >= len(m.markup) {
		m.preview.SetContent(styleSubtle.Render("Nothing selected"))
		return
	}
	f := m.fields[i]

	var sb strings.Builder
	sb.WriteString(styleTitle.Render(f.Field) + "\n")
	fmt.Fprintf(&sb, "kind: %s   state: %s\n", f.Kind, f.State)
	fmt.Fprintf(&sb, "url:  %s\n", f.URL)
	if f.Nil {
		sb.WriteString(styleSubtle.Render("(empty, showing placeholder)") + "\n")
	} else {
		fmt.Fprintf(&sb, "value: %s\n", f.Value)
	}
	for _, p := range f.Options {
		marker := "  "
		if p.Key == f.Value {
			marker = "* "
		}
		sb.WriteString(styleSubtle.Render(marker+p.Key+" = "+p.Label) + "\n")
	}
	sb.WriteString("\n" + highlight(m.markup[i], "html"))
	m.preview.SetContent(sb.String())
	m.preview.GotoTop()
}

func (m *Model) updateJournalView() {
	lines := m.journalState.Lines()
	if len(lines) == 0 {
		m.modalView.SetContent(styleSubtle.Render("No updates recorded"))
		return
	}
	idx := m.journalState.GetIndex()
	for i := range lines {
		if i == idx {
			lines[i] = styleSelected.Render(lines[i])
		}
	}

	content := strings.Join(lines, "\n")
	if e := m.journalState.GetCurrentEntry(); e != nil && e.Body != "" {
		content += "\n\n" + styleTitle.Render("Reply") + "\n" + highlight(e.Body, "json")
	}
	m.modalView.SetContent(content)

	if idx < m.modalView.YOffset {
		m.modalView.SetYOffset(idx)
	} else if idx >= m.modalView.YOffset+m.modalView.Height {
		m.modalView.SetYOffset(idx - m.modalView.Height + 1)
	}
}

func (m *Model) updateHelpView() {
	if m.mode != ModeHelp {
		return
	}
	var sb strings.Builder
	for _, ctx := range keybinds.Contexts {
		bindings := m.keys.ListBindings(ctx)
		if len(bindings) == 0 || ctx == keybinds.ContextGlobal {
			continue
		}
		sb.WriteString(styleTitle.Render(string(ctx)) + "\n")
		for _, b := range bindings {
			if b.Context != ctx || b.Action == keybinds.ActionGoToTopPrepare {
				continue
			}
			key := b.Key
			if key == " " {
				key = "space"
			}
			fmt.Fprintf(&sb, "  %-10s %s\n", key, keybinds.GetActionInfo(b.Action).Description)
		}
		sb.WriteString("\n")
	}
	m.modalView.SetContent(sb.String())
}
