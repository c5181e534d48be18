package types

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the form strategy used for an editable field
type Kind string

const (
	KindInput    Kind = "input"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
)

// Kinds lists every supported kind in a stable order
var Kinds = []Kind{KindInput, KindTextarea, KindSelect, KindCheckbox}

// ParseKind converts an attribute value into a Kind
// An empty value defaults to KindInput
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindInput:
		return KindInput, nil
	case KindTextarea:
		return KindTextarea, nil
	case KindSelect:
		return KindSelect, nil
	case KindCheckbox:
		return KindCheckbox, nil
	}
	return "", fmt.Errorf("unknown field kind %q", s)
}

// IsText reports whether the kind edits free text
func (k Kind) IsText() bool {
	return k == KindInput || k == KindTextarea
}

// Pair is a single key/label entry of a collection
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Collection is an ordered list of selectable pairs
// For checkboxes it holds exactly two entries keyed "false" and "true"
type Collection []Pair

// Label returns the label paired with key
func (c Collection) Label(key string) (string, bool) {
	for _, p := range c {
		if p.Key == key {
			return p.Label, true
		}
	}
	return "", false
}

// BoolLabel returns the checkbox label for the given value
func (c Collection) BoolLabel(v bool) string {
	if len(c) != 2 {
		return ""
	}
	if v {
		return c[1].Label
	}
	return c[0].Label
}

// UpdateRequest is the payload of a single commit
type UpdateRequest struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Method        string `json:"method"`
	ObjectName    string `json:"object"`
	AttributeName string `json:"attribute"`
	Value         string `json:"value"`
	CSRFParam     string `json:"csrfParam,omitempty"`
	CSRFToken     string `json:"csrfToken,omitempty"`
}

// Field returns the form field name, object[attribute]
func (r *UpdateRequest) Field() string {
	return r.ObjectName + "[" + r.AttributeName + "]"
}

// UpdateResult holds the outcome of an update request
type UpdateResult struct {
	RequestID    string `json:"requestId"`
	Status       int    `json:"status"`
	StatusText   string `json:"statusText"`
	Body         string `json:"body"`
	Duration     int64  `json:"duration"` // milliseconds
	RequestSize  int    `json:"requestSize"`
	ResponseSize int    `json:"responseSize"`
	Error        string `json:"error,omitempty"`
}

// JournalEntry is one recorded update request
type JournalEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Document   string    `json:"document,omitempty"`
	URL        string    `json:"url"`
	Method     string    `json:"method"`
	Field      string    `json:"field"`
	Value      string    `json:"value"`
	Status     int       `json:"status"`
	Body       string    `json:"body"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

// FieldInfo summarizes an attached field for listings and queries
type FieldInfo struct {
	ID      string     `json:"id,omitempty"`
	Field   string     `json:"field"`
	Kind    Kind       `json:"kind"`
	URL     string     `json:"url"`
	State   string     `json:"state"`
	Value   string     `json:"value"`
	Display string     `json:"display"`
	Nil     bool       `json:"nil"`
	Options Collection `json:"options,omitempty"`
}
