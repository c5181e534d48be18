package transport

import (
	"context"

	"github.com/studiowebux/inplace/internal/loop"
	"github.com/studiowebux/inplace/internal/types"
)

// Async delivers update completions on a scheduler
type Async struct {
	ctx    context.Context
	client *Client
	sched  loop.Scheduler
}

// NewAsync returns an Async bound to ctx. Cancelling ctx aborts requests in flight.
func NewAsync(ctx context.Context, client *Client, sched loop.Scheduler) *Async {
	return &Async{ctx: ctx, client: client, sched: sched}
}

// Update sends req in the background and posts done with the reply body.
// A malformed body is reported by the caller decoding it, not here.
func (a *Async) Update(req *types.UpdateRequest, done func(body string, err error)) {
	go func() {
		res, err := a.client.Send(a.ctx, req)
		body := ""
		if res != nil {
			body = res.Body
		}
		a.sched.Post(func() { done(body, err) })
	}()
}
