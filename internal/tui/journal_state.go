package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/studiowebux/inplace/internal/history"
	"github.com/studiowebux/inplace/internal/types"
)

// JournalStore is the part of the update journal the TUI reads
type JournalStore interface {
	Load(f history.Filter) ([]types.JournalEntry, error)
	Clear() error
}

// JournalState encapsulates the journal viewer state
type JournalState struct {
	mu sync.RWMutex

	entries    []types.JournalEntry
	index      int
	failedOnly bool
}

// NewJournalState creates an empty journal state
func NewJournalState() *JournalState {
	return &JournalState{}
}

// GetEntries returns a copy of the entries
func (s *JournalState) GetEntries() []types.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.JournalEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// SetEntries replaces the entries and keeps the index in range
func (s *JournalState) SetEntries(entries []types.JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.clamp()
}

// GetIndex returns the selected entry index
func (s *JournalState) GetIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Move shifts the selection by delta, staying in range
func (s *JournalState) Move(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index += delta
	s.clamp()
}

// Jump selects the first entry, or the last one when end is set
func (s *JournalState) Jump(end bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if end {
		s.index = len(s.entries) - 1
	} else {
		s.index = 0
	}
	s.clamp()
}

func (s *JournalState) clamp() {
	if s.index >= len(s.entries) {
		s.index = len(s.entries) - 1
	}
	if s.index < 0 {
		s.index = 0
	}
}

// GetCurrentEntry returns the selected entry, or nil
func (s *JournalState) GetCurrentEntry() *types.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.entries) {
		return nil
	}
	entry := s.entries[s.index]
	return &entry
}

// ToggleFailedOnly flips the failed-only filter and returns the new value
func (s *JournalState) ToggleFailedOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedOnly = !s.failedOnly
	return s.failedOnly
}

// Filter returns the journal filter for document
func (s *JournalState) Filter(document string) history.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return history.Filter{Document: document, Failed: s.failedOnly, Limit: JournalPageSize}
}

// Lines renders one line per entry
func (s *JournalState) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		status := fmt.Sprintf("%d", e.Status)
		if e.Status == 0 {
			status = "---"
		}
		line := fmt.Sprintf("%s  %-6s %s  %-24s %q  %dms",
			e.Timestamp.Local().Format("15:04:05"),
			strings.ToUpper(e.Method),
			status,
			e.Field,
			e.Value,
			e.DurationMs,
		)
		if e.Error != "" {
			line += "  " + e.Error
		}
		lines = append(lines, line)
	}
	return lines
}
