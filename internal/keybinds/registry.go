package keybinds

import (
	"sort"
	"strings"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// pending holds the first key of a sequence like "gg", per context
	pending map[Context]string
}

// NewRegistry creates a new keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes every key bound to action in context
func (r *Registry) Unbind(context Context, action Action) {
	for key, act := range r.bindings[context] {
		if act == action {
			delete(r.bindings[context], key)
		}
	}
}

// Match looks key up in context, then in the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if action, ok := r.bindings[context][key]; ok {
		return action, true
	}
	if action, ok := r.bindings[ContextGlobal][key]; ok {
		return action, true
	}
	return "", false
}

// MatchSequence handles two-key sequences like "gg". It returns the action,
// whether the match is complete, and whether key started a sequence.
func (r *Registry) MatchSequence(context Context, key string) (Action, bool, bool) {
	if prev, ok := r.pending[context]; ok {
		delete(r.pending, context)
		if action, ok := r.Match(context, prev+key); ok {
			return action, true, false
		}
		return "", false, false
	}

	if r.startsSequence(context, key) {
		r.pending[context] = key
		return "", false, true
	}

	action, ok := r.Match(context, key)
	return action, ok, false
}

// ClearPending drops a half-typed sequence
func (r *Registry) ClearPending(context Context) {
	delete(r.pending, context)
}

func (r *Registry) startsSequence(context Context, key string) bool {
	if len(key) != 1 {
		return false
	}
	for bound := range r.bindings[context] {
		if isSequence(bound) && strings.HasPrefix(bound, key) {
			return true
		}
	}
	return false
}

// isSequence reports whether key is a multi-key sequence rather than a named key or modifier combo
func isSequence(key string) bool {
	if len(key) < 2 || strings.Contains(key, "+") {
		return false
	}
	for _, c := range key {
		if c != rune(key[0]) {
			return false
		}
	}
	return true
}

// GetBinding returns the keys bound to an action, falling back to the global context
func (r *Registry) GetBinding(context Context, action Action) []string {
	keys := keysFor(r.bindings[context], action)
	if len(keys) == 0 {
		keys = keysFor(r.bindings[ContextGlobal], action)
	}
	return keys
}

func keysFor(bindings map[string]Action, action Action) []string {
	var keys []string
	for key, act := range bindings {
		if act == action {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// GetBindingString returns a human-readable string of keys bound to an action
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	for i, k := range keys {
		if k == " " {
			keys[i] = "space"
		}
	}
	return strings.Join(keys, ", ")
}

// ListBindings returns the bindings of a context followed by the global ones, sorted by key
func (r *Registry) ListBindings(context Context) []Binding {
	var out []Binding
	for _, ctx := range []Context{context, ContextGlobal} {
		var part []Binding
		for key, action := range r.bindings[ctx] {
			part = append(part, Binding{Key: key, Action: action, Context: ctx})
		}
		sort.Slice(part, func(i, j int) bool { return part[i].Key < part[j].Key })
		out = append(out, part...)
		if context == ContextGlobal {
			break
		}
	}
	return out
}

// HasBinding checks if a key is bound in a context or globally
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	clone.Merge(r)
	return clone
}

// Merge combines bindings from another registry, with other taking precedence
func (r *Registry) Merge(other *Registry) {
	for context, contextBindings := range other.bindings {
		for key, action := range contextBindings {
			r.Register(context, key, action)
		}
	}
}
