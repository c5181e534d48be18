package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys are keys that should not be rebound
	reservedKeys map[string]bool

	// contextHierarchy defines context inheritance
	contextHierarchy map[Context]Context
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	v := &Validator{
		reservedKeys: map[string]bool{
			"ctrl+c": true, // Force quit should always work
		},
		contextHierarchy: make(map[Context]Context),
	}
	for _, ctx := range Contexts {
		if ctx != ContextGlobal {
			v.contextHierarchy[ctx] = ContextGlobal
		}
	}
	return v
}

// ValidateRegistry validates an entire registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	// Check for conflicts with reserved keys
	v.checkReservedKeys(registry, result)

	// Check for sequences hidden by a single-key binding
	v.checkSequences(registry, result)

	// Check for shadowing (context-specific binding hiding global binding)
	v.checkShadowing(registry, result)

	return result
}

// ValidateConfig validates a configuration before applying it
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	// Create a temporary registry to validate
	registry := NewRegistry()
	if err := ApplyConfig(registry, config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Message: err.Error(),
		})
		return result
	}

	validated := v.ValidateRegistry(registry)
	v.checkDuplicateBindings(config, validated)
	return validated
}

// checkDuplicateBindings reports keys listed for more than one action of a context
func (v *Validator) checkDuplicateBindings(config *Config, result *ValidationResult) {
	for contextName, actions := range config.Bindings {
		owners := make(map[string][]string)
		for action, keys := range actions {
			for _, key := range splitKeys(keys) {
				owners[key] = append(owners[key], action)
			}
		}
		for key, actions := range owners {
			if len(actions) > 1 {
				sort.Strings(actions)
				result.Errors = append(result.Errors, ValidationError{
					Type:    "conflict",
					Context: Context(contextName),
					Key:     key,
					Message: fmt.Sprintf("key bound %d times (%s)", len(actions), strings.Join(actions, ", ")),
				})
			}
		}
	}
}

// checkReservedKeys checks if any reserved keys have been rebound
func (v *Validator) checkReservedKeys(registry *Registry, result *ValidationResult) {
	for context, bindings := range registry.bindings {
		for key, action := range bindings {
			if v.reservedKeys[key] {
				// Check if it's bound to something other than the reserved action
				if context == ContextGlobal && action != ActionQuitForce {
					result.Warnings = append(result.Warnings, ValidationError{
						Type:    "warning",
						Context: context,
						Key:     key,
						Message: "reserved key rebound (may cause issues)",
					})
				}
			}
		}
	}
}

// checkSequences warns when a sequence like "gg" can never complete
// because its first key is bound to a different action
func (v *Validator) checkSequences(registry *Registry, result *ValidationResult) {
	for context, bindings := range registry.bindings {
		for key := range bindings {
			if !isSequence(key) {
				continue
			}
			first := key[:1]
			if action, ok := bindings[first]; ok && action != ActionGoToTopPrepare {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Key:     key,
					Message: fmt.Sprintf("sequence start %q is bound to %s", first, action),
				})
			}
		}
	}
}

// checkShadowing checks for context-specific bindings that shadow global bindings
func (v *Validator) checkShadowing(registry *Registry, result *ValidationResult) {
	globalBindings := registry.bindings[ContextGlobal]
	if globalBindings == nil {
		return
	}

	for context, bindings := range registry.bindings {
		if context == ContextGlobal {
			continue
		}

		for key, action := range bindings {
			if globalAction, hasGlobal := globalBindings[key]; hasGlobal {
				if action != globalAction {
					result.Warnings = append(result.Warnings, ValidationError{
						Type:    "warning",
						Context: context,
						Key:     key,
						Message: fmt.Sprintf("shadows global binding (%s -> %s)", globalAction, action),
					})
				}
			}
		}
	}
}

// FindConflicts finds all conflicting keybindings in a config
func FindConflicts(config *Config) []string {
	validator := NewValidator()
	result := validator.ValidateConfig(config)

	var conflicts []string
	for _, err := range result.Errors {
		if err.Type == "conflict" {
			conflicts = append(conflicts, err.Error())
		}
	}

	return conflicts
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	// Check for valid modifier combinations
	validModifiers := []string{"ctrl+", "alt+", "shift+", "super+"}
	hasModifier := false
	for _, mod := range validModifiers {
		if strings.HasPrefix(key, mod) {
			hasModifier = true
			break
		}
	}

	// If it has a modifier, ensure there's something after it
	if hasModifier {
		for _, mod := range validModifiers {
			if key == mod {
				return fmt.Errorf("modifier without key: %s", key)
			}
		}
	}

	return nil
}

// ValidateAction checks that an action is built in
func ValidateAction(actionStr string) error {
	if actionStr == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !IsKnownAction(Action(actionStr)) {
		return fmt.Errorf("unknown action: %s", actionStr)
	}
	return nil
}
