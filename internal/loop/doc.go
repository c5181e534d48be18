/*
Package loop provides the single-threaded task queue that all widget code runs on.

# Overview

Widget state (documents, editors, form controls) is never touched from more than one
goroutine. Work that starts elsewhere (timer expiry, finished HTTP requests, key presses
from the terminal UI) is posted onto the loop and executed in order.

# Schedulers

Scheduler is the interface widget code depends on:
  - Post enqueues a task from any goroutine
  - AfterFunc runs a task on the loop after a delay and returns a stoppable Timer

Loop is the production implementation backed by a buffered channel and time.AfterFunc.
Manual is a deterministic implementation with a virtual clock, used by tests and by
hosts that want to step the widget explicitly.

# Example Usage

	l := loop.New(loop.WithLogger(logger))
	go l.Run(ctx)

	l.Post(func() {
		editor.Activate()
	})

	// Wait for the task to complete before reading widget state.
	l.Do(func() {
		text = element.Text()
	})
*/
package loop
