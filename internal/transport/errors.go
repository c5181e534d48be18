package transport

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a non-empty reply is not JSON
var ErrMalformedResponse = errors.New("malformed update response")

// StatusError is returned for non-2xx replies
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("update rejected: %s", e.Status)
	}
	return fmt.Sprintf("update rejected: status %d", e.Code)
}
