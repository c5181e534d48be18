package transport

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Response is the decoded reply to an update
type Response struct {
	// DisplayAs replaces the rendered content when set
	DisplayAs *string
}

// DecodeResponse parses a reply body. An empty body is a bare success.
// Unknown fields are ignored.
func DecodeResponse(body string) (Response, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Response{}, nil
	}
	if !gjson.Valid(body) {
		return Response{}, fmt.Errorf("%w: %.64q", ErrMalformedResponse, body)
	}

	var resp Response
	if v := gjson.Get(body, "display_as"); v.Exists() && v.Type != gjson.Null {
		s := v.String()
		resp.DisplayAs = &s
	}
	return resp, nil
}
