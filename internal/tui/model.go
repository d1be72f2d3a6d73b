// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-09
// Last Modified: 2026-03-13

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Brand color
var (
	primaryColor = lipgloss.Color("#ff7300")
	subtleColor  = lipgloss.Color("#626262")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF0000")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// StatusMsg reports progress from the import loop.
type StatusMsg struct {
	RecordID int
	Action   string // "created", "updated", "closed", "reopened", "unchanged", "batch"
	Message  string
}

// ResultMsg carries the final outcome.
type ResultMsg struct {
	Success bool
	Output  string
}

// Model renders a running import: the current bug, running tallies, and
// a short log tail.
type Model struct {
	spinner    spinner.Model
	current    int
	counts     map[string]int
	logs       []string
	quitting   bool
	err        error
	statusChan <-chan StatusMsg
}

// NewModel creates a new TUI model fed by statusChan.
func NewModel(statusChan <-chan StatusMsg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		spinner:    s,
		counts:     make(map[string]int),
		statusChan: statusChan,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatusMsg:
		if msg.RecordID != 0 {
			m.current = msg.RecordID
		}
		switch msg.Action {
		case "created", "updated", "closed", "reopened", "unchanged":
			m.counts[msg.Action]++
		}
		if msg.Message != "" {
			m.logs = append(m.logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg.Message))
		}
		return m, m.waitForActivity()

	case ResultMsg:
		// Print the final output before quitting so the user can see the result
		if msg.Output != "" {
			fmt.Println("\n" + msg.Output)
		}
		if !msg.Success && msg.Output != "" {
			m.err = fmt.Errorf("%s", msg.Output)
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		// No timeout: the importer may legitimately sit silent in a
		// rate-budget cooldown for most of an hour. The run ends with a
		// ResultMsg or the user quits.
		msg, ok := <-m.statusChan
		if !ok {
			return ResultMsg{Success: true}
		}
		return msg
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Bugport Import"))
	s.WriteString("\n\n")

	if m.current > 0 {
		s.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), cursorStyle.Render(fmt.Sprintf("bug %d", m.current))))
	} else {
		s.WriteString(fmt.Sprintf("%s starting...\n\n", m.spinner.View()))
	}

	for _, action := range []string{"created", "updated", "closed", "reopened", "unchanged"} {
		style := counterStyle
		if m.counts[action] > 0 {
			style = doneStyle
		}
		s.WriteString(style.Render(fmt.Sprintf("  %-9s %d\n", action, m.counts[action])))
	}

	s.WriteString("\nLogs:\n")
	// Show last 5 logs
	start := 0
	if len(m.logs) > 5 {
		start = len(m.logs) - 5
	}
	for _, log := range m.logs[start:] {
		s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render(log) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render("\nPress q to quit\n"))

	return s.String()
}
