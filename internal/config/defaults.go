package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults is the process-wide widget configuration.
// It is loaded once and passed by value to every editor.
type Defaults struct {
	ConfirmMessage string        `yaml:"confirm_message"`
	Method         string        `yaml:"method"`
	EmulateMethod  bool          `yaml:"emulate_method"`
	ResponseFormat string        `yaml:"response_format"`
	BlurDelay      time.Duration `yaml:"blur_delay"`
	NilPlaceholder string        `yaml:"nil_placeholder"`
	MarkerSelector string        `yaml:"marker_selector"`
	Timeout        time.Duration `yaml:"timeout"`
}

// DefaultDefaults returns the built-in defaults
func DefaultDefaults() Defaults {
	return Defaults{
		ConfirmMessage: "Are you sure you want to discard your changes?",
		Method:         "patch",
		ResponseFormat: "json",
		BlurDelay:      500 * time.Millisecond,
		NilPlaceholder: "—",
		MarkerSelector: ".best_in_place",
	}
}

var allowedMethods = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"patch":  true,
	"delete": true,
}

// Validate checks the defaults for unusable values
func (d Defaults) Validate() error {
	var errs []error
	if !allowedMethods[strings.ToLower(d.Method)] {
		errs = append(errs, fmt.Errorf("method %q is not an HTTP verb", d.Method))
	}
	if d.BlurDelay < 0 {
		errs = append(errs, fmt.Errorf("blur_delay must not be negative"))
	}
	if d.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}
	if strings.TrimSpace(d.MarkerSelector) == "" {
		errs = append(errs, fmt.Errorf("marker_selector is required"))
	}
	if d.ResponseFormat != "json" {
		errs = append(errs, fmt.Errorf("response_format %q is not supported (use json)", d.ResponseFormat))
	}
	return errors.Join(errs...)
}

// LoadDefaults reads defaults from a YAML file, layered over the built-ins.
// A missing file yields the built-ins.
func LoadDefaults(path string) (Defaults, error) {
	d := DefaultDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, fmt.Errorf("failed to read defaults file: %w", err)
	}

	if err := yaml.Unmarshal(data, &d); err != nil {
		return DefaultDefaults(), fmt.Errorf("failed to parse defaults file: %w", err)
	}
	d.Method = strings.ToLower(d.Method)

	if err := d.Validate(); err != nil {
		return DefaultDefaults(), fmt.Errorf("invalid defaults file %s: %w", path, err)
	}
	return d, nil
}

// SaveDefaults writes defaults to a YAML file
func SaveDefaults(d Defaults, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write defaults file: %w", err)
	}
	return nil
}
