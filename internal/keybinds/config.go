package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// FileName is the key binding file looked up in the config directory
const FileName = "keybinds.json"

// Config maps context -> action -> comma separated keys.
// Example: {"browse": {"edit": "enter,e"}}
type Config struct {
	Version  string                       `json:"version"`
	Bindings map[string]map[string]string `json:"bindings"`
}

// LoadConfig loads key bindings from a JSON file. Comments and trailing
// commas are allowed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}
	return &config, nil
}

// SaveConfig saves key bindings to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyConfig replaces the keys of every configured action
func ApplyConfig(registry *Registry, config *Config) error {
	for contextName, actions := range config.Bindings {
		context := Context(contextName)
		for actionName, keys := range actions {
			action := Action(actionName)
			if err := ValidateAction(actionName); err != nil {
				return fmt.Errorf("context %s: %w", contextName, err)
			}
			registry.Unbind(context, action)
			for _, key := range splitKeys(keys) {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("context %s, action %s: %w", contextName, actionName, err)
				}
				registry.Register(context, key, action)
			}
		}
	}
	return nil
}

// splitKeys splits "up,k". A literal comma is written ",," and the space bar "space".
func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(strings.ReplaceAll(s, ",,", "\x00"), ",") {
		k = strings.ReplaceAll(strings.TrimSpace(k), "\x00", ",")
		if k == "space" {
			k = " "
		}
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// LoadOrDefault applies the file at configPath over the defaults when it exists
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
		}
		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}

	return registry, nil
}

// ExportConfig converts a registry into the file format
func ExportConfig(registry *Registry) *Config {
	config := &Config{
		Version:  "1.0",
		Bindings: make(map[string]map[string]string),
	}
	for context, bindings := range registry.bindings {
		grouped := make(map[Action][]string)
		for key, action := range bindings {
			if action == ActionGoToTopPrepare {
				continue
			}
			switch key {
			case ",":
				key = ",,"
			case " ":
				key = "space"
			}
			grouped[action] = append(grouped[action], key)
		}
		if len(grouped) == 0 {
			continue
		}
		section := make(map[string]string, len(grouped))
		for action, keys := range grouped {
			sort.Strings(keys)
			section[string(action)] = strings.Join(keys, ",")
		}
		config.Bindings[string(context)] = section
	}
	return config
}
