package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.inplace)
	ConfigDir string

	// DefaultsFile holds the widget defaults (confirm message, verb, grace delay)
	DefaultsFile string

	// DatabasePath is the SQLite database file for the update journal
	DatabasePath string

	// LogFile receives structured logs while the terminal UI owns the screen
	LogFile string
)

// Initialize sets up the configuration directory and files
// It creates ~/.inplace/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".inplace"))
}

// InitializeAt sets up the configuration rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	DefaultsFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "journal.db")
	LogFile = filepath.Join(ConfigDir, "inplace.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create a defaults file if it doesn't exist
	if _, err := os.Stat(DefaultsFile); os.IsNotExist(err) {
		if err := SaveDefaults(DefaultDefaults(), DefaultsFile); err != nil {
			return fmt.Errorf("failed to create defaults file: %w", err)
		}
	}

	return nil
}

// LocalDefaultsExists checks if there's a local .inplace.yaml
func LocalDefaultsExists() bool {
	_, err := os.Stat(".inplace.yaml")
	return err == nil
}

// GetDefaultsFilePath returns the defaults file path (local or global)
func GetDefaultsFilePath() string {
	if LocalDefaultsExists() {
		return ".inplace.yaml"
	}
	return DefaultsFile
}
