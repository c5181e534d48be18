package inplace

import (
	"errors"
	"fmt"

	"github.com/studiowebux/inplace/internal/dom"
)

// Configuration errors, fatal to the field that carries them
var (
	ErrUnknownKind        = errors.New("unknown field type")
	ErrMissingIdentifier  = errors.New("missing object or attribute name")
	ErrInvalidCollection  = errors.New("invalid collection")
	ErrInvalidHTMLAttrs   = errors.New("invalid html attributes")
	ErrConflictingDisplay = errors.New("display-as and display-with are mutually exclusive")
	ErrInvalidURL         = errors.New("invalid update url")
	ErrActivatorNotFound  = errors.New("activator not found")
)

// ConfigError reports a field that could not be attached
type ConfigError struct {
	Element *dom.Element
	Err     error
}

func (e *ConfigError) Error() string {
	name := "<nil>"
	if e.Element != nil {
		name = describe(e.Element)
	}
	return fmt.Sprintf("field %s: %v", name, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// describe names an element for logs and errors
func describe(el *dom.Element) string {
	if id := el.ID(); id != "" {
		return "#" + id
	}
	obj, _ := el.Data(AttrObject)
	attr, _ := el.Data(AttrAttribute)
	if obj != "" || attr != "" {
		return obj + "[" + attr + "]"
	}
	return el.Tag()
}
