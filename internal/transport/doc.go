// Package transport sends field updates to the server and decodes replies.
//
// An update is a form-encoded request:
//
//	_method=patch&user[name]=Lucia&authenticity_token=s3cr3t
//
// sent with Accept: application/json. The reply body is either empty or a
// JSON object; its optional display_as string replaces the rendered field.
//
// Client performs requests synchronously. Async wraps a Client for the widget
// event loop: the request runs on its own goroutine and the completion is
// posted back onto the loop.
package transport
