package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/inplace/internal/keybinds"
	"github.com/studiowebux/inplace/internal/session"
)

// Options configures the TUI
type Options struct {
	// OutPath is where the save action writes the document. Empty disables it.
	OutPath string
	Journal JournalStore
	Keys    *keybinds.Registry
}

// New creates a new TUI model over a running session
func New(sess *session.Session, opts Options) Model {
	keys := opts.Keys
	if keys == nil {
		keys = keybinds.NewDefaultRegistry()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter fields"

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = InputCharLimit

	area := textarea.New()
	area.ShowLineNumbers = false
	area.CharLimit = 0

	return Model{
		sess:         sess,
		journal:      opts.Journal,
		keys:         keys,
		outPath:      opts.OutPath,
		mode:         ModeBrowse,
		editing:      -1,
		search:       search,
		input:        input,
		area:         area,
		preview:      viewport.New(80, 20),
		modalView:    viewport.New(80, 20),
		journalState: NewJournalState(),
	}
}

// Run shows the TUI until the user quits or ctx is done. The session must
// already be running. Discard prompts are answered in the TUI.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	m := New(sess, opts)

	// Update uses a pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	done := make(chan struct{})
	sess.SetConfirmer(promptConfirmer{program: p, done: done})
	defer func() {
		close(done)
		sess.SetConfirmer(nil)
	}()

	_, err := p.Run()
	return err
}
