package inplace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/types"
)

func baseAttrs() Attrs {
	return Attrs{AttrObject: "user", AttrAttribute: "name"}
}

func with(a Attrs, kv ...string) Attrs {
	out := Attrs{}
	for k, v := range a {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

func TestResolveOptions_Defaults(t *testing.T) {
	opts, err := ResolveOptions(baseAttrs(), nil, config.DefaultDefaults(), "/users/1")
	require.NoError(t, err)

	require.Equal(t, types.KindInput, opts.Kind)
	require.Equal(t, "/users/1", opts.URL)
	require.Equal(t, "—", opts.Nil)
	require.True(t, opts.Sanitize)
	require.True(t, opts.UseConfirm)
	require.Empty(t, opts.Activator)
	require.Empty(t, opts.OkButton)
	require.Nil(t, opts.Collection)
}

func TestResolveOptions_InheritsNearestAncestor(t *testing.T) {
	ancestors := []Attrs{
		{AttrOkButton: "Save"},
		{AttrURL: "/teams/3/users", AttrOkButton: "OK", AttrCancelButton: "Cancel"},
		{AttrURL: "/ignored", AttrCancelButtonClass: "btn"},
	}
	local := with(baseAttrs(), AttrCancelButton, "Discard")

	opts, err := ResolveOptions(local, ancestors, config.DefaultDefaults(), "/users/1")
	require.NoError(t, err)

	require.Equal(t, "/teams/3/users", opts.URL)
	require.Equal(t, "Save", opts.OkButton)
	require.Equal(t, "Discard", opts.CancelButton)
	require.Equal(t, "btn", opts.CancelButtonClass)
}

func TestResolveOptions_NotInheritable(t *testing.T) {
	ancestors := []Attrs{{AttrType: "textarea", AttrPlaceholder: "none", AttrObject: "team"}}

	opts, err := ResolveOptions(baseAttrs(), ancestors, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.Equal(t, types.KindInput, opts.Kind)
	require.Equal(t, "—", opts.Nil)
	require.Equal(t, "user", opts.ObjectName)
}

func TestResolveOptions_FlagsAndAliases(t *testing.T) {
	opts, err := ResolveOptions(with(baseAttrs(),
		AttrSanitize, "false",
		AttrUseConfirm, "false",
		AttrNil, "Click to edit",
	), nil, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.False(t, opts.Sanitize)
	require.False(t, opts.UseConfirm)
	require.Equal(t, "Click to edit", opts.Nil)

	opts, err = ResolveOptions(with(baseAttrs(),
		AttrConfirm, "true",
		AttrUseConfirm, "false",
		AttrPlaceholder, "Empty",
		AttrNil, "ignored",
	), nil, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.True(t, opts.UseConfirm)
	require.Equal(t, "Empty", opts.Nil)
}

func TestResolveOptions_Collections(t *testing.T) {
	opts, err := ResolveOptions(with(baseAttrs(),
		AttrType, "select",
		AttrCollection, `[["1","Low"],["2","High"],[3,"Urgent"]]`,
		AttrValue, "2",
	), nil, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.Equal(t, types.Collection{
		{Key: "1", Label: "Low"},
		{Key: "2", Label: "High"},
		{Key: "3", Label: "Urgent"},
	}, opts.Collection)
	require.Equal(t, "2", opts.CollectionValue)

	opts, err = ResolveOptions(with(baseAttrs(), AttrType, "checkbox"), nil, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.Equal(t, "No", opts.Collection.BoolLabel(false))
	require.Equal(t, "Yes", opts.Collection.BoolLabel(true))

	opts, err = ResolveOptions(with(baseAttrs(),
		AttrType, "checkbox",
		AttrCollection, `["Off","On"]`,
	), nil, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.Equal(t, "On", opts.Collection.BoolLabel(true))
}

func TestResolveOptions_HTMLAttrsKeepOrder(t *testing.T) {
	opts, err := ResolveOptions(with(baseAttrs(),
		AttrHTMLAttrs, `{"maxlength":10,"placeholder":"Name","autocomplete":"off"}`,
	), nil, config.DefaultDefaults(), "/")
	require.NoError(t, err)
	require.Equal(t, []HTMLAttr{
		{Name: "maxlength", Value: "10"},
		{Name: "placeholder", Value: "Name"},
		{Name: "autocomplete", Value: "off"},
	}, opts.HTMLAttrs)
}

func TestResolveOptions_Errors(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attrs
		want  error
	}{
		{"unknown kind", with(baseAttrs(), AttrType, "date"), ErrUnknownKind},
		{"missing object", Attrs{AttrAttribute: "name"}, ErrMissingIdentifier},
		{"missing attribute", Attrs{AttrObject: "user"}, ErrMissingIdentifier},
		{"select without collection", with(baseAttrs(), AttrType, "select"), ErrInvalidCollection},
		{"collection not json", with(baseAttrs(), AttrType, "select", AttrCollection, "[1,"), ErrInvalidCollection},
		{"collection not a list", with(baseAttrs(), AttrType, "select", AttrCollection, `{"1":"a"}`), ErrInvalidCollection},
		{"collection bad pair", with(baseAttrs(), AttrType, "select", AttrCollection, `[["1"]]`), ErrInvalidCollection},
		{"checkbox three labels", with(baseAttrs(), AttrType, "checkbox", AttrCollection, `["a","b","c"]`), ErrInvalidCollection},
		{"html attrs not object", with(baseAttrs(), AttrHTMLAttrs, `["maxlength"]`), ErrInvalidHTMLAttrs},
		{"display conflict", with(baseAttrs(), AttrDisplayAs, "full_name", AttrDisplayWith, "number_to_currency"), ErrConflictingDisplay},
		{"bad url", with(baseAttrs(), AttrURL, "http://[::1"), ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveOptions(tt.attrs, nil, config.DefaultDefaults(), "/")
			require.ErrorIs(t, err, tt.want)
		})
	}
}
