// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-15
// Last Modified: 2026-03-15

package commands

import (
	"testing"
	"time"

	"github.com/similigh/bugport/internal/tui"
)

// TestDrainUntilDone verifies the run goroutine can never deadlock on an
// unread progress message after the TUI has quit: pending sends are
// consumed until the goroutine signals completion.
func TestDrainUntilDone(t *testing.T) {
	statusChan := make(chan tui.StatusMsg)
	done := make(chan struct{})

	go func() {
		// Unbuffered sends that nobody but the drain loop will read.
		for i := 0; i < 3; i++ {
			statusChan <- tui.StatusMsg{RecordID: i + 1, Action: "created"}
		}
		close(done)
	}()

	finished := make(chan struct{})
	go func() {
		drainUntilDone(statusChan, done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("drainUntilDone did not return after the run finished")
	}
}

func TestDrainUntilDoneReturnsImmediatelyWhenDone(t *testing.T) {
	statusChan := make(chan tui.StatusMsg)
	done := make(chan struct{})
	close(done)

	finished := make(chan struct{})
	go func() {
		drainUntilDone(statusChan, done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("drainUntilDone blocked on an already-finished run")
	}
}
