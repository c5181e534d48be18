package inplace

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/dom"
	"github.com/studiowebux/inplace/internal/types"
)

// Data attribute keys, without the data- prefix
const (
	AttrObject            = "bip-object"
	AttrAttribute         = "bip-attribute"
	AttrType              = "bip-type"
	AttrURL               = "bip-url"
	AttrCollection        = "bip-collection"
	AttrPlaceholder       = "bip-placeholder"
	AttrNil               = "bip-nil"
	AttrSanitize          = "bip-sanitize"
	AttrConfirm           = "bip-confirm"
	AttrUseConfirm        = "bip-use-confirm"
	AttrOkButton          = "bip-ok-button"
	AttrOkButtonClass     = "bip-ok-button-class"
	AttrCancelButton      = "bip-cancel-button"
	AttrCancelButtonClass = "bip-cancel-button-class"
	AttrHTMLAttrs         = "bip-html-attrs"
	AttrInnerClass        = "bip-inner-class"
	AttrOriginalContent   = "bip-original-content"
	AttrActivator         = "bip-activator"
	AttrValue             = "bip-value"
	AttrDisplayAs         = "bip-display-as"
	AttrDisplayWith       = "bip-display-with"
)

// inheritable keys may be supplied by any ancestor; the nearest wins
var inheritable = []string{
	AttrURL,
	AttrActivator,
	AttrOkButton,
	AttrOkButtonClass,
	AttrCancelButton,
	AttrCancelButtonClass,
}

// Attrs holds data attributes keyed without the data- prefix
type Attrs map[string]string

// DataAttrs collects the data attributes of el
func DataAttrs(el *dom.Element) Attrs {
	out := Attrs{}
	for k, v := range el.Attrs() {
		if key, ok := strings.CutPrefix(k, dom.DataPrefix); ok {
			out[key] = v
		}
	}
	return out
}

// HTMLAttr is an extra attribute applied to the rendered control
type HTMLAttr struct {
	Name  string
	Value string
}

// Options is the resolved configuration of one field
type Options struct {
	Kind          types.Kind
	ObjectName    string
	AttributeName string
	URL           string
	Activator     string

	OkButton          string
	OkButtonClass     string
	CancelButton      string
	CancelButtonClass string

	Collection      types.Collection
	CollectionValue string

	Nil             string
	Sanitize        bool
	UseConfirm      bool
	HTMLAttrs       []HTMLAttr
	InnerClass      string
	OriginalContent string
}

// ResolveOptions builds a field configuration from its own attributes and
// those of its ancestors, nearest first. location is the fallback update url.
func ResolveOptions(local Attrs, ancestors []Attrs, defaults config.Defaults, location string) (Options, error) {
	inherited := make(map[string]string, len(inheritable))
	for _, key := range inheritable {
		if v := local[key]; v != "" {
			inherited[key] = v
			continue
		}
		for _, a := range ancestors {
			if v := a[key]; v != "" {
				inherited[key] = v
				break
			}
		}
	}

	kind, err := types.ParseKind(local[AttrType])
	if err != nil {
		return Options{}, fmt.Errorf("%w: %q", ErrUnknownKind, local[AttrType])
	}

	opts := Options{
		Kind:              kind,
		ObjectName:        local[AttrObject],
		AttributeName:     local[AttrAttribute],
		URL:               inherited[AttrURL],
		Activator:         inherited[AttrActivator],
		OkButton:          inherited[AttrOkButton],
		OkButtonClass:     inherited[AttrOkButtonClass],
		CancelButton:      inherited[AttrCancelButton],
		CancelButtonClass: inherited[AttrCancelButtonClass],
		CollectionValue:   local[AttrValue],
		Nil:               firstNonEmpty(local[AttrPlaceholder], local[AttrNil], defaults.NilPlaceholder),
		Sanitize:          flag(local, AttrSanitize),
		UseConfirm:        flag(local, AttrConfirm, AttrUseConfirm),
		InnerClass:        local[AttrInnerClass],
		OriginalContent:   local[AttrOriginalContent],
	}

	if opts.ObjectName == "" || opts.AttributeName == "" {
		return Options{}, fmt.Errorf("%w: object=%q attribute=%q", ErrMissingIdentifier, opts.ObjectName, opts.AttributeName)
	}

	if opts.URL == "" {
		opts.URL = location
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if local[AttrDisplayAs] != "" && local[AttrDisplayWith] != "" {
		return Options{}, ErrConflictingDisplay
	}

	if opts.Collection, err = parseCollection(kind, local[AttrCollection]); err != nil {
		return Options{}, err
	}
	if opts.HTMLAttrs, err = parseHTMLAttrs(local[AttrHTMLAttrs]); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// defaultCheckboxCollection labels false and true
var defaultCheckboxCollection = types.Collection{
	{Key: "false", Label: "No"},
	{Key: "true", Label: "Yes"},
}

func parseCollection(kind types.Kind, raw string) (types.Collection, error) {
	switch kind {
	case types.KindSelect:
		if raw == "" {
			return nil, fmt.Errorf("%w: select requires a collection", ErrInvalidCollection)
		}
		items, err := jsonArray(raw)
		if err != nil {
			return nil, err
		}
		out := make(types.Collection, 0, len(items))
		for i, item := range items {
			pair := item.Array()
			if !item.IsArray() || len(pair) != 2 {
				return nil, fmt.Errorf("%w: entry %d is not a [key, label] pair", ErrInvalidCollection, i)
			}
			out = append(out, types.Pair{Key: pair[0].String(), Label: pair[1].String()})
		}
		return out, nil

	case types.KindCheckbox:
		if raw == "" {
			return append(types.Collection(nil), defaultCheckboxCollection...), nil
		}
		items, err := jsonArray(raw)
		if err != nil {
			return nil, err
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: checkbox needs exactly two labels, got %d", ErrInvalidCollection, len(items))
		}
		return types.Collection{
			{Key: "false", Label: items[0].String()},
			{Key: "true", Label: items[1].String()},
		}, nil
	}
	return nil, nil
}

func jsonArray(raw string) ([]gjson.Result, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: not JSON", ErrInvalidCollection)
	}
	v := gjson.Parse(raw)
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: not a list", ErrInvalidCollection)
	}
	return v.Array(), nil
}

func parseHTMLAttrs(raw string) ([]HTMLAttr, error) {
	if raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: not JSON", ErrInvalidHTMLAttrs)
	}
	v := gjson.Parse(raw)
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidHTMLAttrs)
	}
	var out []HTMLAttr
	v.ForEach(func(key, value gjson.Result) bool {
		out = append(out, HTMLAttr{Name: key.String(), Value: value.String()})
		return true
	})
	return out, nil
}

// flag reads a boolean attribute that defaults to true; only "false" turns it off
func flag(a Attrs, keys ...string) bool {
	for _, k := range keys {
		if v, ok := a[k]; ok {
			return strings.TrimSpace(v) != "false"
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
