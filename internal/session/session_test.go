package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/studiowebux/inplace/internal/inplace"
	"github.com/studiowebux/inplace/internal/mock"
	"github.com/studiowebux/inplace/internal/transport"
	"github.com/studiowebux/inplace/internal/types"
)

const page = `<!DOCTYPE html><html><head>
<meta name="csrf-param" content="authenticity_token">
<meta name="csrf-token" content="s3cr3t">
</head><body>
<span id="name" class="best_in_place" data-bip-object="user" data-bip-attribute="name">Lucia</span>
<span id="priority" class="best_in_place" data-bip-object="ticket" data-bip-attribute="priority" data-bip-type="select"
  data-bip-collection='[["1","Low"],["2","Medium"],["3","High"]]' data-bip-value="2">Medium</span>
<span id="admin" class="best_in_place" data-bip-object="user" data-bip-attribute="admin" data-bip-type="checkbox" data-bip-value="false">No</span>
<span id="city" class="best_in_place" data-bip-object="user" data-bip-attribute="city" data-bip-url="/fail">Lyon</span>
<span id="bio" class="best_in_place" data-bip-object="user" data-bip-attribute="bio" data-bip-type="textarea">Hello</span>
<span id="broken" class="best_in_place" data-bip-object="user">?</span>
</body></html>`

type memJournal struct {
	mu      sync.Mutex
	entries []*types.UpdateRequest
}

func (j *memJournal) Record(req *types.UpdateRequest, _ *types.UpdateResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, req)
	return nil
}

func (j *memJournal) len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func startSession(t *testing.T) (*Session, *memJournal) {
	t.Helper()

	cfg := mock.DefaultConfig()
	cfg.Logging = false
	cfg.Routes = append([]mock.Route{
		{Name: "reject", Method: "PATCH", Path: "/fail", Status: 422, Body: `{"errors":["city is invalid"]}`},
	}, cfg.Routes...)
	srv := httptest.NewServer(mock.NewServer(cfg, "", nil).Handler())
	t.Cleanup(srv.Close)

	journal := &memJournal{}
	s, err := New(strings.NewReader(page), "users.html", Options{
		Location: srv.URL + "/users/1",
		Journal:  journal,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned %v", err)
		}
	})
	return s, journal
}

func waitFor(t *testing.T, s *Session, typ string) Notice {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case n := <-s.Notices():
			if n.Type == typ {
				return n
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func index(t *testing.T, s *Session, field string) int {
	t.Helper()
	for i, f := range s.Fields() {
		if f.Field == field {
			return i
		}
	}
	t.Fatalf("field %s not attached", field)
	return -1
}

func TestSession_AttachesValidFields(t *testing.T) {
	s, _ := startSession(t)

	fields := s.Fields()
	if len(fields) != 5 {
		t.Fatalf("Expected 5 attached fields, got %d", len(fields))
	}
	if s.AttachErr() == nil {
		t.Error("Expected the field without an attribute to be reported")
	}
	if fields[1].Kind != types.KindSelect || fields[1].Value != "2" {
		t.Errorf("Unexpected select summary %+v", fields[1])
	}
	if fields[2].Value != "false" {
		t.Errorf("Expected unchecked checkbox, got %+v", fields[2])
	}
}

func TestSession_InputCommitAndSave(t *testing.T) {
	s, journal := startSession(t)
	i := index(t, s, "user[name]")

	if err := s.Activate(i); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	got, info, ok := s.Editing()
	if !ok || got != i || info.Kind != types.KindInput {
		t.Fatalf("Expected field %d in edit mode, got %d %+v", i, got, info)
	}
	if err := s.Activate(i); err == nil {
		t.Error("Expected error activating a field twice")
	}

	if err := s.Submit("Lucy"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	n := waitFor(t, s, inplace.EventSuccess)
	if n.Field != "user[name]" {
		t.Errorf("Expected notice for user[name], got %s", n.Field)
	}
	if !s.Dirty() {
		t.Error("Expected session to be dirty after a successful update")
	}
	if journal.len() != 1 {
		t.Errorf("Expected 1 journal entry, got %d", journal.len())
	}

	markup, err := s.Markup(i)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(markup, ">Lucy</span>") {
		t.Errorf("Expected committed value in markup, got %s", markup)
	}

	out := filepath.Join(t.TempDir(), "users.html")
	if err := s.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if s.Dirty() {
		t.Error("Expected Save to clear dirty")
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "Lucy") {
		t.Error("Expected saved document to contain the new value")
	}
}

func TestSession_EditingReportsCurrentValue(t *testing.T) {
	s, journal := startSession(t)
	i := index(t, s, "user[name]")

	if err := s.Activate(i); err != nil {
		t.Fatal(err)
	}
	_, info, ok := s.Editing()
	if !ok {
		t.Fatal("Expected a field in edit mode")
	}
	if info.Value != "Lucia" {
		t.Errorf("Editing() value = %q, want %q", info.Value, "Lucia")
	}

	// Submitting what the editor was opened with is a no-op.
	if err := s.Submit(info.Value); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s, inplace.EventAbort)
	if journal.len() != 0 {
		t.Errorf("Expected no request for an unchanged value, got %d", journal.len())
	}
	if d := s.Fields()[i].Display; d != "Lucia" {
		t.Errorf("Expected Lucia to stay displayed, got %q", d)
	}
}

func TestSession_SelectAndCheckbox(t *testing.T) {
	s, _ := startSession(t)

	sel := index(t, s, "ticket[priority]")
	if err := s.Activate(sel); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit("3"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s, inplace.EventSuccess)
	if v := s.Fields()[sel].Value; v != "3" {
		t.Errorf("Expected select value 3, got %s", v)
	}
	if d := s.Fields()[sel].Display; d != "High" {
		t.Errorf("Expected the option label to stay displayed, got %q", d)
	}

	box := index(t, s, "user[admin]")
	if err := s.Activate(box); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s, inplace.EventSuccess)
	if v := s.Fields()[box].Value; v != "true" {
		t.Errorf("Expected checkbox to be checked, got %s", v)
	}
}

func TestSession_FailureReverts(t *testing.T) {
	s, _ := startSession(t)
	i := index(t, s, "user[city]")

	if err := s.Activate(i); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit("Paris"); err != nil {
		t.Fatal(err)
	}
	n := waitFor(t, s, inplace.EventError)

	var status *transport.StatusError
	if !errors.As(n.Err, &status) || status.Code != 422 {
		t.Errorf("Expected a 422 StatusError, got %v", n.Err)
	}
	if d := s.Fields()[i].Display; d != "Lyon" {
		t.Errorf("Expected original content restored, got %q", d)
	}
	if s.Dirty() {
		t.Error("A failed update must not mark the session dirty")
	}
}

func TestSession_CancelAsksBeforeDiscarding(t *testing.T) {
	s, _ := startSession(t)
	i := index(t, s, "user[bio]")

	answer := false
	var asked []string
	s.SetConfirmer(inplace.ConfirmFunc(func(msg string) bool {
		asked = append(asked, msg)
		return answer
	}))

	if err := s.Activate(i); err != nil {
		t.Fatal(err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Editing(); !ok {
		t.Fatal("Expected declined confirm to keep editing")
	}

	answer = true
	if err := s.Cancel(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s, inplace.EventAbort)
	if len(asked) != 2 {
		t.Errorf("Expected 2 prompts, got %d", len(asked))
	}
}

func TestSession_BlurUnchangedAborts(t *testing.T) {
	s, journal := startSession(t)

	if err := s.Activate(index(t, s, "user[name]")); err != nil {
		t.Fatal(err)
	}
	if err := s.Blur(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s, inplace.EventAbort)
	if journal.len() != 0 {
		t.Error("Expected no request for an unchanged value")
	}
}

func TestSession_ControlsRequireEditing(t *testing.T) {
	s, _ := startSession(t)

	if err := s.Submit("x"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Expected ErrNotEditing, got %v", err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Expected ErrNotEditing, got %v", err)
	}
	if err := s.Activate(99); err == nil {
		t.Error("Expected error for an out of range index")
	}
}

func TestSession_InputThenBlurCommits(t *testing.T) {
	s, journal := startSession(t)

	if err := s.Activate(index(t, s, "user[name]")); err != nil {
		t.Fatal(err)
	}
	if err := s.Input("Lucienne"); err != nil {
		t.Fatal(err)
	}
	if err := s.Blur(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s, inplace.EventSuccess)
	if journal.len() != 1 {
		t.Errorf("Expected blur to send one update, got %d", journal.len())
	}
}
