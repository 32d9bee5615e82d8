package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultToastTimeout = 3 * time.Second

// Toast represents a single toast notification
type Toast struct {
	ID      string
	Message string
	Type    string // info, success, warning, error
	Created time.Time
	Timeout time.Duration
}

// CommandLine messages for app coordination
type (
	commandReadyMsg     struct{ command string }
	commandCancelledMsg struct{}
)

// CommandLineMode represents the state of the command line
type CommandLineMode int

const (
	CommandLineIdle CommandLineMode = iota
	CommandLineCommand
)

// CommandLineComponent manages the bottom line.
// Handles both : commands and toast notifications
type CommandLineComponent struct {
	mode      CommandLineMode
	toasts    []Toast
	command   []rune
	cursorPos int // Cursor position in command, in runes
	width     int
	style     lipgloss.Style
	now       func() time.Time

	// History support
	history        []string
	historyCursor  int
	historySaved   bool
	historyPending string
}

// NewCommandLineComponent creates a new command line component
func NewCommandLineComponent() *CommandLineComponent {
	return &CommandLineComponent{
		mode: CommandLineIdle,
		now:  time.Now,
		style: lipgloss.NewStyle().
			Padding(0, 1),
	}
}

// AddToast adds a new toast notification
func (cl *CommandLineComponent) AddToast(message, toastType string, timeout time.Duration) {
	now := cl.now()
	cl.toasts = append(cl.toasts, Toast{
		ID:      now.String(),
		Message: message,
		Type:    toastType,
		Created: now,
		Timeout: timeout,
	})
}

// ClearToasts removes all existing toast notifications
func (cl *CommandLineComponent) ClearToasts() {
	cl.toasts = nil
}

// EnterCommandMode enters command mode with optional initial text
func (cl *CommandLineComponent) EnterCommandMode(initialText string) {
	cl.mode = CommandLineCommand
	cl.command = []rune(initialText)
	cl.cursorPos = len(cl.command)
}

// ExitCommandMode exits command mode and returns to idle
func (cl *CommandLineComponent) ExitCommandMode() {
	cl.mode = CommandLineIdle
	cl.command = nil
	cl.cursorPos = 0
	cl.historySaved = false
	cl.historyPending = ""
}

// IsInCommandMode returns true if in command mode
func (cl *CommandLineComponent) IsInCommandMode() bool {
	return cl.mode == CommandLineCommand
}

// GetCommand returns the current command
func (cl *CommandLineComponent) GetCommand() string {
	return string(cl.command)
}

func (cl *CommandLineComponent) insertRunes(rs []rune) {
	cmd := make([]rune, 0, len(cl.command)+len(rs))
	cmd = append(cmd, cl.command[:cl.cursorPos]...)
	cmd = append(cmd, rs...)
	cmd = append(cmd, cl.command[cl.cursorPos:]...)
	cl.command = cmd
	cl.cursorPos += len(rs)
}

func (cl *CommandLineComponent) deleteCharBackward() {
	if cl.cursorPos == 0 {
		return
	}
	cl.command = append(cl.command[:cl.cursorPos-1], cl.command[cl.cursorPos:]...)
	cl.cursorPos--
}

func (cl *CommandLineComponent) deleteCharForward() {
	if cl.cursorPos >= len(cl.command) {
		return
	}
	cl.command = append(cl.command[:cl.cursorPos], cl.command[cl.cursorPos+1:]...)
}

// SetWidth sets the width for rendering
func (cl *CommandLineComponent) SetWidth(width int) {
	cl.width = width
}

// Update removes expired toasts
func (cl *CommandLineComponent) Update() {
	now := cl.now()
	active := cl.toasts[:0]
	for _, toast := range cl.toasts {
		if now.Sub(toast.Created) < toast.Timeout {
			active = append(active, toast)
		}
	}
	cl.toasts = active
}

// View renders the command line
func (cl *CommandLineComponent) View() string {
	// Priority 1: Show command if in command mode
	if cl.mode == CommandLineCommand {
		cursorStyle := lipgloss.NewStyle().Reverse(true)
		before := ":" + string(cl.command[:cl.cursorPos])
		var text string
		if cl.cursorPos < len(cl.command) {
			text = before + cursorStyle.Render(string(cl.command[cl.cursorPos])) + string(cl.command[cl.cursorPos+1:])
		} else {
			text = before + cursorStyle.Render(" ")
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Width(cl.width).Render(text)
	}

	// Priority 2: Show toast if active
	if len(cl.toasts) > 0 {
		toast := cl.toasts[len(cl.toasts)-1]
		style := globalTheme.ToastInfo
		switch toast.Type {
		case "success":
			style = style.Background(lipgloss.Color("76"))
		case "warning":
			style = style.Foreground(globalTheme.Warning)
		case "error":
			style = globalTheme.ToastError
		}
		return cl.style.Inherit(style).MaxWidth(cl.width).Render(toast.Message)
	}

	return ""
}

// AddToHistory adds a command to the history
func (cl *CommandLineComponent) AddToHistory(cmd string) {
	// Don't add empty commands or duplicates of the last command
	if cmd == "" {
		return
	}
	if len(cl.history) > 0 && cl.history[len(cl.history)-1] == cmd {
		return
	}
	cl.history = append(cl.history, cmd)
	cl.historyCursor = len(cl.history)
}

// NavigateHistory navigates through command history
// direction: -1 for previous (up), +1 for next (down)
// Returns true if navigation occurred
func (cl *CommandLineComponent) NavigateHistory(direction int) bool {
	if len(cl.history) == 0 {
		return false
	}

	switch {
	case direction < 0:
		if !cl.historySaved {
			cl.historyPending = string(cl.command)
			cl.historySaved = true
		}
		if cl.historyCursor > 0 {
			cl.historyCursor--
		}
		cl.command = []rune(cl.history[cl.historyCursor])
		cl.cursorPos = len(cl.command)
		return true
	case direction > 0:
		if !cl.historySaved {
			return false
		}
		if cl.historyCursor < len(cl.history)-1 {
			cl.historyCursor++
			cl.command = []rune(cl.history[cl.historyCursor])
			cl.cursorPos = len(cl.command)
			return true
		}
		// Reached the end, restore pending command
		cl.historyCursor = len(cl.history)
		cl.command = []rune(cl.historyPending)
		cl.cursorPos = len(cl.command)
		cl.historySaved = false
		return true
	}

	return false
}

// HandleKey handles keyboard input while in command mode
func (cl *CommandLineComponent) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !cl.IsInCommandMode() {
		return nil, false
	}

	cancelled := func() tea.Msg { return commandCancelledMsg{} }

	switch msg.String() {
	case "esc", "ctrl+c":
		cl.ExitCommandMode()
		return cancelled, true

	case "enter":
		cmdText := cl.GetCommand()
		cl.ExitCommandMode()
		if cmdText == "" {
			return cancelled, true
		}
		cl.AddToHistory(cmdText)
		return func() tea.Msg { return commandReadyMsg{command: cmdText} }, true

	case "backspace", "ctrl+h":
		if cl.cursorPos == 0 {
			cl.ExitCommandMode()
			return cancelled, true
		}
		cl.deleteCharBackward()
	case "delete":
		cl.deleteCharForward()
	case "left":
		if cl.cursorPos > 0 {
			cl.cursorPos--
		}
	case "right":
		if cl.cursorPos < len(cl.command) {
			cl.cursorPos++
		}
	case "home", "ctrl+a":
		cl.cursorPos = 0
	case "end", "ctrl+e":
		cl.cursorPos = len(cl.command)
	case "up":
		cl.NavigateHistory(-1)
	case "down":
		cl.NavigateHistory(1)
	case " ":
		cl.insertRunes([]rune{' '})
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
			cl.insertRunes(msg.Runes)
		}
	}
	return nil, true
}
