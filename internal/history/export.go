package history

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/types"
)

// Export writes entries to path as indented JSON
func Export(entries []types.JournalEntry, path string) error {
	if entries == nil {
		entries = []types.JournalEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write journal export: %w", err)
	}
	return nil
}

// Succeeded reports whether the entry was accepted by the server
func Succeeded(e types.JournalEntry) bool {
	return e.Error == "" && e.Status >= 200 && e.Status < 300
}
