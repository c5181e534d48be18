package transport

import (
	"net/url"
	"strings"

	"github.com/studiowebux/inplace/internal/types"
)

// MethodParam carries the verb in the body for servers that only route GET/POST
const MethodParam = "_method"

// keyEscaper escapes only what would split a pair, so field keys keep
// their brackets: user[name]
var keyEscaper = strings.NewReplacer("%", "%25", "&", "%26", "=", "%3D", "+", "%2B", "#", "%23", " ", "%20")

// EncodeBody builds the form body of an update request.
// Pairs keep their fixed order: method, field, then the csrf pair.
// Values are percent-encoded with spaces as %20.
func EncodeBody(req *types.UpdateRequest) string {
	var b strings.Builder
	write := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(keyEscaper.Replace(k))
		b.WriteByte('=')
		b.WriteString(escapeValue(v))
	}

	write(MethodParam, strings.ToLower(req.Method))
	write(req.Field(), req.Value)
	if req.CSRFParam != "" && req.CSRFToken != "" {
		write(req.CSRFParam, req.CSRFToken)
	}
	return b.String()
}

// escapeValue percent-encodes v. QueryEscape only emits '+' for a space.
func escapeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// DecodeBody parses a form body produced by EncodeBody
func DecodeBody(body string) (url.Values, error) {
	return url.ParseQuery(body)
}
