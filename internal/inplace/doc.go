// Package inplace turns rendered fields of a document into edit-in-place
// controls.
//
// A Registry discovers elements carrying the marker class and attaches one
// Editor to each. An Editor is a small state machine:
//
//	Idle --activate--> Editing --commit--> Submitting --success/failure--> Idle
//	                      |
//	                      +--abort--> Idle
//
// While Editing, a form strategy selected by the field kind (input,
// textarea, select, checkbox) owns the rendered control. Committing renders
// the new value optimistically and sends it through an Updater; the reply
// either confirms it (optionally replacing the displayed content) or the
// field reverts to what it showed before activation.
//
// Editors are not safe for concurrent use. Every call, timer and update
// completion must run on the scheduler goroutine.
package inplace
