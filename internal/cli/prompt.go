package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/inplace/internal/types"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type item struct {
	value    string
	label    string
	index    int
	isActive bool
}

func (i item) FilterValue() string {
	return i.value + " " + i.label
}

func (i item) Title() string {
	title := i.value
	if i.label != "" && i.label != i.value {
		title += fmt.Sprintf(" (%s)", i.label)
	}
	if i.isActive {
		title += " [current]"
	}
	return title
}

func (i item) Description() string { return "" }

type selectorModel struct {
	list     list.Model
	choice   int
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.choice = -1
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(item); ok {
				m.choice = i.index
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q/ctrl+c: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// selectItem shows an interactive list and returns the chosen item index
func selectItem(title string, items []list.Item, active int) (int, error) {
	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	if active >= 0 && active < len(items) {
		l.Select(active)
	}

	p := tea.NewProgram(selectorModel{list: l, choice: -1})
	finalModel, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice < 0 {
		return -1, fmt.Errorf("selection cancelled")
	}
	return result.choice, nil
}

// promptForField lets the user pick one of the document fields
func promptForField(fields []types.FieldInfo) (int, error) {
	items := make([]list.Item, 0, len(fields))
	for i, f := range fields {
		items = append(items, item{value: f.Field, label: f.Display, index: i})
	}
	return selectItem("Select a field", items, 0)
}

// promptForOption lets the user pick one of a select field's options
func promptForOption(field types.FieldInfo) (string, error) {
	items := make([]list.Item, 0, len(field.Options))
	active := 0
	for i, p := range field.Options {
		if p.Key == field.Value {
			active = i
		}
		items = append(items, item{value: p.Key, label: p.Label, index: i, isActive: p.Key == field.Value})
	}
	i, err := selectItem(fmt.Sprintf("Select value for %s", field.Field), items, active)
	if err != nil {
		return "", err
	}
	return field.Options[i].Key, nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// promptForValue reads a new value for a text field from stdin. An empty
// line keeps the current value.
func promptForValue(name, current string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter value for '%s' [%s]: ", name, current)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	value = strings.TrimRight(value, "\r\n")
	if value == "" {
		return current, nil
	}
	return value, nil
}
