package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/inplace/internal/history"
	"github.com/studiowebux/inplace/internal/mock"
	"github.com/studiowebux/inplace/internal/session"
	"github.com/studiowebux/inplace/internal/types"
)

const testPage = `<!DOCTYPE html><html><head></head><body>
<span class="best_in_place" data-bip-object="user" data-bip-attribute="name">Lucia</span>
<span class="best_in_place" data-bip-object="ticket" data-bip-attribute="priority" data-bip-type="select"
  data-bip-collection='[["1","Low"],["2","Medium"],["3","High"]]' data-bip-value="2">Medium</span>
<span class="best_in_place" data-bip-object="user" data-bip-attribute="admin" data-bip-type="checkbox" data-bip-value="false">No</span>
<span class="best_in_place" data-bip-object="user" data-bip-attribute="bio" data-bip-type="textarea">Hello</span>
</body></html>`

// fakeJournal remembers the last filter it was asked for
type fakeJournal struct {
	entries []types.JournalEntry
	filter  history.Filter
	cleared bool
}

func (j *fakeJournal) Load(f history.Filter) ([]types.JournalEntry, error) {
	j.filter = f
	return j.entries, nil
}

func (j *fakeJournal) Clear() error {
	j.cleared = true
	j.entries = nil
	return nil
}

// chanSender captures messages a confirmer sends to the program
type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

// startTestSession runs a session over testPage against the default mock endpoint
func startTestSession(t *testing.T) *session.Session {
	t.Helper()

	cfg := mock.DefaultConfig()
	cfg.Logging = false
	srv := httptest.NewServer(mock.NewServer(cfg, "", nil).Handler())
	t.Cleanup(srv.Close)

	sess, err := session.New(strings.NewReader(testPage), "page.html", session.Options{Location: srv.URL + "/pages/1"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return sess
}

// CreateTestModel creates a sized Model with its field list loaded
func CreateTestModel(t *testing.T, opts Options) (*Model, *session.Session) {
	t.Helper()
	sess := startTestSession(t)
	m := New(sess, opts)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	exec(t, &m, m.loadFields())
	return &m, sess
}

// exec runs cmd synchronously and feeds its message back into the model
func exec(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

// key builds the KeyMsg bubbletea delivers for a key name
func key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

// press sends a key and returns the resulting command
func press(m *Model, name string) tea.Cmd {
	_, cmd := m.Update(key(name))
	return cmd
}

// waitNotice blocks until the session reports typ
func waitNotice(t *testing.T, sess *session.Session, typ string) session.Notice {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case n := <-sess.Notices():
			if n.Type == typ {
				return n
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
