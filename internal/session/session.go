package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/inplace"
	"github.com/studiowebux/inplace/internal/loop"
	"github.com/studiowebux/inplace/internal/transport"
	"github.com/studiowebux/inplace/internal/types"
)

// ErrNotEditing is returned by control operations when no field is in edit mode
var ErrNotEditing = errors.New("no field is being edited")

// Notice reports a widget event on one field
type Notice struct {
	Field string
	Type  string
	Err   error
}

// Options configures a Session
type Options struct {
	// Location is the document URL. Relative update urls resolve against it.
	Location   string
	Defaults   config.Defaults
	Journal    transport.Journal
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Session is one HTML document opened for in-place editing. The document
// belongs to the session loop; every accessor hops onto it with Loop.Do and
// must not be called from a widget callback.
type Session struct {
	name     string
	doc      *dom.Document
	loop     *loop.Loop
	client   *transport.Client
	registry *inplace.Registry
	async    *transport.Async
	logger   *zap.Logger

	mu        sync.Mutex
	confirmer inplace.Confirmer

	notices   chan Notice
	dirty     atomic.Bool
	attachErr error
}

// Open reads an HTML file into a new session
func Open(path string, opts Options) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return New(f, path, opts)
}

// New reads an HTML document from r. name labels journal entries.
func New(r io.Reader, name string, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Defaults.MarkerSelector == "" {
		opts.Defaults = config.DefaultDefaults()
	}

	docOpts := []dom.Option{dom.WithLogger(logger)}
	if opts.Location != "" {
		docOpts = append(docOpts, dom.WithLocation(opts.Location))
	}
	doc, err := dom.Parse(r, docOpts...)
	if err != nil {
		return nil, err
	}

	s := &Session{
		name:    name,
		doc:     doc,
		loop:    loop.New(loop.WithLogger(logger)),
		logger:  logger.Named("session"),
		notices: make(chan Notice, 64),
	}

	clientOpts := []transport.ClientOption{
		transport.WithHTTPClient(opts.HTTPClient),
		transport.WithEmulatedMethod(opts.Defaults.EmulateMethod),
		transport.WithLogger(logger),
	}
	if opts.Defaults.Timeout > 0 {
		clientOpts = append(clientOpts, transport.WithTimeout(opts.Defaults.Timeout))
	}
	if opts.Journal != nil {
		clientOpts = append(clientOpts, transport.WithJournal(opts.Journal))
	}
	s.client = transport.NewClient(clientOpts...)

	s.registry = inplace.NewRegistry(doc, s.loop, s,
		inplace.WithDefaults(opts.Defaults),
		inplace.WithConfirmer(inplace.ConfirmFunc(s.confirm)),
		inplace.WithLogger(logger),
	)
	s.loop.Post(s.attach)
	return s, nil
}

// Name returns the document name given to New
func (s *Session) Name() string {
	return s.name
}

// SetConfirmer replaces the prompt used before discarding edits. The
// default accepts. It is called on the loop goroutine and may block it.
func (s *Session) SetConfirmer(c inplace.Confirmer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmer = c
}

func (s *Session) confirm(message string) bool {
	s.mu.Lock()
	c := s.confirmer
	s.mu.Unlock()
	if c == nil {
		return true
	}
	return c.Confirm(message)
}

// Update implements inplace.Updater
func (s *Session) Update(req *types.UpdateRequest, done func(body string, err error)) {
	s.async.Update(req, done)
}

// Run processes widget tasks until ctx is done or Stop is called. Fields
// are attached by the first task.
func (s *Session) Run(ctx context.Context) error {
	s.async = transport.NewAsync(ctx, s.client, s.loop)
	defer s.loop.Stop()

	err := s.loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, loop.ErrStopped) {
		return nil
	}
	return err
}

// Stop ends Run
func (s *Session) Stop() {
	s.loop.Stop()
}

func (s *Session) attach() {
	editors, err := s.registry.AttachAll(nil)
	s.attachErr = err
	if err != nil {
		s.logger.Warn("some fields were skipped", zap.Error(err))
	}
	s.logger.Info("attached", zap.Int("fields", len(editors)))

	watch := s.doc.Body()
	if watch == nil {
		watch = s.doc.Root()
	}
	for _, typ := range []string{
		inplace.EventActivate, inplace.EventUpdate, inplace.EventSuccess,
		inplace.EventAbort, inplace.EventError, inplace.EventDeactivate,
	} {
		watch.On(typ, s.relay)
	}
}

func (s *Session) relay(ev *dom.Event) {
	n := Notice{Type: ev.Type}
	if ed := s.registry.Editor(ev.Target); ed != nil {
		n.Field = ed.Info().Field
	}
	switch ev.Type {
	case inplace.EventSuccess:
		s.dirty.Store(true)
	case inplace.EventError:
		n.Err, _ = ev.Detail.(error)
	}
	select {
	case s.notices <- n:
	default:
		s.logger.Debug("notice dropped", zap.String("type", n.Type))
	}
}

// Notices delivers widget events. Events are dropped while the buffer is full.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// Dirty reports whether an update succeeded since the last Save
func (s *Session) Dirty() bool {
	return s.dirty.Load()
}

// AttachErr returns the configuration errors of fields skipped at attach time
func (s *Session) AttachErr() error {
	var err error
	s.loop.Do(func() { err = s.attachErr })
	return err
}

// Fields lists the attached fields in document order
func (s *Session) Fields() []types.FieldInfo {
	var out []types.FieldInfo
	s.loop.Do(func() {
		for _, ed := range s.registry.Editors() {
			out = append(out, ed.Info())
		}
	})
	return out
}

// Markup returns the outer HTML of field i
func (s *Session) Markup(i int) (string, error) {
	var out string
	err := s.withEditor(i, func(ed *inplace.Editor) error {
		out = ed.Element().String()
		return nil
	})
	return out, err
}

// Activate switches field i to edit mode. Checkboxes commit immediately.
func (s *Session) Activate(i int) error {
	return s.withEditor(i, func(ed *inplace.Editor) error {
		if ed.State() != inplace.StateIdle {
			return fmt.Errorf("field %s is %s", ed.Info().Field, ed.State())
		}
		ed.Activate()
		return nil
	})
}

// Editing returns the index and summary of the field in edit mode
func (s *Session) Editing() (int, types.FieldInfo, bool) {
	idx := -1
	var info types.FieldInfo
	s.loop.Do(func() {
		for i, ed := range s.registry.Editors() {
			if ed.State() == inplace.StateEditing {
				idx, info = i, ed.Info()
				return
			}
		}
	})
	return idx, info, idx >= 0
}

// Submit enters value into the active control and submits it the way a
// user would for that kind of field
func (s *Session) Submit(value string) error {
	return s.withControl(func(ed *inplace.Editor, ctl *dom.Element) error {
		switch ed.Kind() {
		case types.KindSelect:
			ctl.SetValue(value)
			ctl.Change()
		case types.KindTextarea:
			ctl.Type(value)
			if form := ctl.Form(); form != nil {
				form.Submit()
			}
		default:
			ctl.Type(value)
			ctl.Press(dom.KeyEnter)
		}
		return nil
	})
}

// Input enters value into the active control without submitting it
func (s *Session) Input(value string) error {
	return s.withControl(func(_ *inplace.Editor, ctl *dom.Element) error {
		ctl.Type(value)
		return nil
	})
}

// Cancel presses Escape in the active control
func (s *Session) Cancel() error {
	return s.withControl(func(_ *inplace.Editor, ctl *dom.Element) error {
		ctl.Press(dom.KeyEscape)
		return nil
	})
}

// Blur moves focus away from the active control, as clicking elsewhere would
func (s *Session) Blur() error {
	return s.withControl(func(*inplace.Editor, *dom.Element) error {
		s.doc.Blur()
		return nil
	})
}

// HTML renders the current document
func (s *Session) HTML() string {
	var out string
	s.loop.Do(func() { out = s.doc.HTML() })
	return out
}

// Save writes the current document to path and clears Dirty
func (s *Session) Save(path string) error {
	if err := os.WriteFile(path, []byte(s.HTML()), config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	s.dirty.Store(false)
	s.logger.Info("saved", zap.String("path", path))
	return nil
}

func (s *Session) withEditor(i int, fn func(*inplace.Editor) error) error {
	var err error
	s.loop.Do(func() {
		editors := s.registry.Editors()
		if i < 0 || i >= len(editors) {
			err = fmt.Errorf("no field at index %d", i)
			return
		}
		err = fn(editors[i])
	})
	return err
}

func (s *Session) withControl(fn func(*inplace.Editor, *dom.Element) error) error {
	err := ErrNotEditing
	s.loop.Do(func() {
		for _, ed := range s.registry.Editors() {
			if ctl := ed.Control(); ed.State() == inplace.StateEditing && ctl != nil {
				err = fn(ed, ctl)
				return
			}
		}
	})
	return err
}
