package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"micmute/hotkey"
	"micmute/keyboard"
	"micmute/keys"
	"micmute/mute"
	"micmute/shortcut"
)

const captureTimeout = 15 * time.Second

// TUI message types
type ToggledMsg struct{ Event hotkey.ToggleEvent }
type CaptureDoneMsg struct {
	Key keys.Key
	Err error
}

type endpointStatus int

const (
	statusUnknown endpointStatus = iota
	statusEnabled
	statusMuted
)

func statusOf(s mute.State) endpointStatus {
	if s.Muted() {
		return statusMuted
	}
	return statusEnabled
}

func (s endpointStatus) String() string {
	switch s {
	case statusEnabled:
		return "Enabled"
	case statusMuted:
		return "Muted"
	}
	return "unknown"
}

type tuiActions struct {
	toggle  func()
	capture func(ctx context.Context) (keys.Key, error)
	feed    func(keys.Key) // terminal keys during capture
}

type tuiModel struct {
	status        endpointStatus
	binding       keys.Key
	lastErr       string
	notice        string
	capturing     bool
	cancelCapture context.CancelFunc
	width         int
	actions       tuiActions
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	enabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

func newTUIModel(binding keys.Key, actions tuiActions) tuiModel {
	return tuiModel{binding: binding, actions: actions}
}

func NewTUIProgram(m tuiModel) *tea.Program {
	return tea.NewProgram(m)
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ToggledMsg:
		ev := msg.Event
		if ev.Err != nil {
			m.status = statusUnknown
			m.lastErr = ev.Err.Error()
		} else {
			m.status = statusOf(ev.State)
			m.lastErr = ""
		}

	case CaptureDoneMsg:
		m.capturing = false
		m.cancelCapture = nil
		m.notice = ""
		switch {
		case msg.Err == nil:
			m.binding = msg.Key
			m.lastErr = ""
		case errors.Is(msg.Err, shortcut.ErrConfigWrite):
			// active but not persisted
			m.binding = msg.Key
			m.lastErr = msg.Err.Error()
		case errors.Is(msg.Err, context.Canceled):
			m.notice = "rebind cancelled"
		case errors.Is(msg.Err, context.DeadlineExceeded):
			m.notice = "rebind timed out"
		default:
			m.lastErr = msg.Err.Error()
		}
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	if s == "ctrl+c" {
		if m.cancelCapture != nil {
			m.cancelCapture()
		}
		return m, tea.Quit
	}

	if m.capturing {
		if s == "esc" {
			if m.cancelCapture != nil {
				m.cancelCapture()
			}
			return m, nil
		}
		if k, ok := keyboard.FromTerminal(s); ok && m.actions.feed != nil {
			m.actions.feed(k)
		}
		return m, nil
	}

	switch s {
	case "q":
		return m, tea.Quit
	case "t":
		toggle := m.actions.toggle
		return m, func() tea.Msg {
			toggle()
			return nil
		}
	case "r":
		return m.startCapture()
	}
	return m, nil
}

func (m tuiModel) startCapture() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	m.capturing = true
	m.cancelCapture = cancel
	m.notice = ""
	capture := m.actions.capture
	return m, func() tea.Msg {
		defer cancel()
		k, err := capture(ctx)
		return CaptureDoneMsg{Key: k, Err: err}
	}
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("micmute") + "\n\n")

	var status string
	switch m.status {
	case statusMuted:
		status = mutedStyle.Render(m.status.String())
	case statusEnabled:
		status = enabledStyle.Render(m.status.String())
	default:
		status = unknownStyle.Render(m.status.String())
	}
	b.WriteString(labelStyle.Render("Status: ") + status + "\n")
	b.WriteString(labelStyle.Render("Shortcut: ") + keys.ShortcutLabel(m.binding) + "\n")

	if m.capturing {
		b.WriteString("\n" + promptStyle.Render("Press the new shortcut key (esc to cancel)") + "\n")
	} else if m.notice != "" {
		b.WriteString("\n" + unknownStyle.Render(m.notice) + "\n")
	}

	if m.lastErr != "" {
		errLine := errorStyle.Render(fmt.Sprintf("Error: %s", m.lastErr))
		if m.width > 0 {
			errLine = errorStyle.Width(m.width).Render(fmt.Sprintf("Error: %s", m.lastErr))
		}
		b.WriteString("\n" + errLine + "\n")
	}

	b.WriteString("\n")
	b.WriteString(boldHelp.Render("t") + helpStyle.Render(" toggle  "))
	b.WriteString(boldHelp.Render("r") + helpStyle.Render(" rebind  "))
	b.WriteString(boldHelp.Render("q") + helpStyle.Render(" quit") + "\n")
	b.WriteString(helpStyle.Render("micmute "+version) + "\n")

	return b.String()
}
