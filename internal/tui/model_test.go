// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-15
// Last Modified: 2026-03-15

package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestWaitForActivityBlocksUntilMessage verifies the wait has no internal
// deadline: a message arriving after a quiet stretch (a budget cooldown,
// in real runs) is still delivered instead of a timeout failure.
func TestWaitForActivityBlocksUntilMessage(t *testing.T) {
	ch := make(chan StatusMsg)
	m := NewModel(ch)

	go func() {
		time.Sleep(50 * time.Millisecond)
		ch <- StatusMsg{RecordID: 7, Action: "created"}
	}()

	msg := m.waitForActivity()()
	status, ok := msg.(StatusMsg)
	if !ok {
		t.Fatalf("Expected a StatusMsg, got %T (%v)", msg, msg)
	}
	if status.RecordID != 7 || status.Action != "created" {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestWaitForActivityChannelClose(t *testing.T) {
	ch := make(chan StatusMsg)
	close(ch)
	m := NewModel(ch)

	msg := m.waitForActivity()()
	result, ok := msg.(ResultMsg)
	if !ok {
		t.Fatalf("Expected a ResultMsg on channel close, got %T", msg)
	}
	if !result.Success {
		t.Error("Expected channel close to read as clean completion")
	}
}

func TestUpdateQuitsOnResult(t *testing.T) {
	m := NewModel(make(chan StatusMsg))

	updated, cmd := m.Update(ResultMsg{Success: false})
	if !updated.(Model).quitting {
		t.Error("Expected a result to quit the TUI")
	}
	if cmd == nil {
		t.Error("Expected a quit command")
	}
}

func TestUpdateQuitsOnKey(t *testing.T) {
	m := NewModel(make(chan StatusMsg))

	for _, key := range []string{"q", "ctrl+c"} {
		updated, _ := m.Update(keyMsg(key))
		if !updated.(Model).quitting {
			t.Errorf("Expected %q to quit the TUI", key)
		}
	}
}

func TestUpdateTalliesActions(t *testing.T) {
	m := NewModel(make(chan StatusMsg))

	var model = m
	for _, s := range []StatusMsg{
		{RecordID: 1, Action: "created", Message: "bug 1: created"},
		{RecordID: 2, Action: "created", Message: "bug 2: created"},
		{RecordID: 3, Action: "closed", Message: "bug 3: closed"},
		{Action: "batch", Message: "fetching bugs 4-53"},
	} {
		updated, _ := model.Update(s)
		model = updated.(Model)
	}

	if model.counts["created"] != 2 {
		t.Errorf("Expected 2 created, got %d", model.counts["created"])
	}
	if model.counts["closed"] != 1 {
		t.Errorf("Expected 1 closed, got %d", model.counts["closed"])
	}
	if model.counts["batch"] != 0 {
		t.Error("Expected batch messages to not be tallied as record actions")
	}
	if model.current != 3 {
		t.Errorf("Expected current record 3, got %d", model.current)
	}
	if len(model.logs) != 4 {
		t.Errorf("Expected 4 log lines, got %d", len(model.logs))
	}
}
