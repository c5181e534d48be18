package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// confirmMsg asks the user whether edits may be discarded. The widget
// loop waits on reply.
type confirmMsg struct {
	message string
	reply   chan bool
}

// sender is the part of *tea.Program the confirmer needs
type sender interface {
	Send(msg tea.Msg)
}

// promptConfirmer shows the discard prompt in the TUI and blocks the
// calling goroutine until it is answered. Once done is closed every prompt
// is declined.
type promptConfirmer struct {
	program sender
	done    <-chan struct{}
}

func (c promptConfirmer) Confirm(message string) bool {
	reply := make(chan bool, 1)
	c.program.Send(confirmMsg{message: message, reply: reply})
	select {
	case yes := <-reply:
		return yes
	case <-c.done:
		return false
	}
}
