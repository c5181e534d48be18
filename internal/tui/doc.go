/*
Package tui implements the terminal front end of inplace.

# Overview

The TUI lists the editable fields of one HTML document and lets the user
edit them in place. Every edit goes through the same widget a browser would
run: activation renders a control into the document, the TUI mirrors that
control with a bubbles component, and submitting or cancelling is replayed
as key presses on the document control.

# Layout

	┌ Fields ─────────────┐┌ Preview ──────────────────┐
	│ > user[name]  Lucia ││ <span class="best_in_...  │
	│   ticket[prio] High ││                           │
	└─────────────────────┘└───────────────────────────┘
	 status bar

# Concurrency

The document belongs to the session loop goroutine. The TUI only talks to
it from tea.Cmd functions, never from Update, because a discard prompt
blocks the loop until the user answers it in the TUI.

# Key Bindings

Keys are resolved through the keybinds registry, so ~/.inplace/keybinds.json
can remap every action.
*/
package tui
