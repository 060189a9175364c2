// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Thermoquad/tkprog/pkg/session"
)

// sessionFunc runs one session, reporting progress through cb.
type sessionFunc func(ctx context.Context, cb session.ProgressCallback) error

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Progress TUI model
type progressModel struct {
	title         string
	connInfo      string
	progress      session.Progress
	eventLog      []eventLogEntry
	maxLogEntries int
	err           error
	done          bool
	width         int
	cancel        context.CancelFunc
}

// Messages
type progressMsg session.Progress
type sessionDoneMsg struct {
	err error
}

func initialProgressModel(title, connInfo string, cancel context.CancelFunc) progressModel {
	return progressModel{
		title:         title,
		connInfo:      connInfo,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 8,
		width:         80,
		cancel:        cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// the session stops at the next block boundary and terminates
			m.cancel()
			m.addLogEntry("Cancel requested", true)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case progressMsg:
		prev := m.progress.Phase
		m.progress = session.Progress(msg)
		if m.progress.Phase != prev || m.progress.Phase == "channels" {
			m.addLogEntry(describeProgress(m.progress), false)
		}

	case sessionDoneMsg:
		m.done = true
		m.err = msg.err
		if msg.err != nil {
			m.addLogEntry(msg.err.Error(), true)
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *progressModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func describeProgress(p session.Progress) string {
	if p.Phase == "channels" {
		return fmt.Sprintf("%s slot %d/%d", p.Operation, p.Slot, p.TotalSlots)
	}
	return fmt.Sprintf("%s: %s", p.Operation, p.Phase)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// progressBar renders pct (0-100) as a bar of the given width.
func progressBar(pct float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return valueStyle.Render(strings.Repeat("█", filled)) +
		headerStyle.Render(strings.Repeat("░", width-filled))
}

func (m progressModel) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to cancel", m.connInfo)))
	s.WriteString("\n\n")

	phase := m.progress.Phase
	if phase == "" {
		phase = "connecting"
	}
	status := fmt.Sprintf("%s %s   %s %s\n%s %.0f%%   %s %.1fs",
		labelStyle.Render("Phase:"), valueStyle.Render(phase),
		labelStyle.Render("Slot:"), valueStyle.Render(fmt.Sprintf("%d/%d", m.progress.Slot, m.progress.TotalSlots)),
		progressBar(m.progress.Percentage, m.width-20), m.progress.Percentage,
		labelStyle.Render("Elapsed:"), m.progress.ElapsedTime.Seconds(),
	)
	s.WriteString(boxStyle.Render(status))
	s.WriteString("\n\n")

	logContent := strings.Builder{}
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, entry := range m.eventLog {
		timestamp := entry.timestamp.Format("15:04:05.000")
		if entry.isError {
			logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), errorStyle.Render("✗ "+entry.message)))
		} else {
			logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), warningStyle.Render("ℹ "+entry.message)))
		}
	}
	s.WriteString(boxStyle.Width(max(m.width-4, 20)).Render(logContent.String()))
	s.WriteString("\n")

	return s.String()
}

// runSession runs fn with a progress display: the TUI when stdout is a
// terminal and plain, otherwise one line per step. Interrupts cancel the
// session, which still terminates cleanly.
func runSession(title, connInfo string, plain bool, fn sessionFunc) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("%s\nConnection: %s\n\n", title, connInfo)
		return fn(ctx, printProgress)
	}

	m := initialProgressModel(title, connInfo, cancel)
	p := tea.NewProgram(m)

	result := make(chan error, 1)
	go func() {
		err := fn(ctx, func(pr session.Progress) {
			p.Send(progressMsg(pr))
		})
		result <- err
		p.Send(sessionDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-result
		return fmt.Errorf("TUI error: %v", err)
	}
	return <-result
}

func printProgress(p session.Progress) {
	fmt.Printf("[%6.2fs] %-28s %5.1f%%\n", p.ElapsedTime.Seconds(), describeProgress(p), p.Percentage)
}
