package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	ctrlCDebounceTime = 200 * time.Millisecond  // Debounce duplicate ctrl-c events
	ctrlCWindowTime   = 2000 * time.Millisecond // Window for double ctrl-c to quit
	statusHeight      = 1
	commandLineHeight = 1
)

// appStore is everything the application needs from the state store
type appStore interface {
	ChatStore
	SessionLister
	SetSubmitKey(k SubmitKey)
	LastError() error
}

// toastExpiredMsg wakes the program up so expired toasts are removed
type toastExpiredMsg struct{}

// TUIModel represents the bubbletea model for the TUI
type TUIModel struct {
	config        *Config
	width, height int
	theme         *Theme
	locale        Locale

	// UI Components
	chat        *ChatView
	sidebar     *Sidebar
	help        *HelpWindow
	status      StatusComponent
	commandLine *CommandLineComponent

	// Command registry
	commandRegistry CommandRegistry

	// Application services (passed in, not owned)
	store appStore

	// export and config side effects, swapped in tests
	exportDir  string
	openEditor bool
	saveConfig func(*Config) error

	// layout the components were last sized for
	sidebarShown bool

	ctrlCPressedTime time.Time
}

// NewTUIModel creates a new TUI model around a store and its chat view
func NewTUIModel(config *Config, store appStore, chat *ChatView, connected bool) *TUIModel {
	if config == nil {
		cfg := defaultConfig()
		config = &cfg
	}
	theme := NewTheme()
	locale := LocaleFor(config.UI.Language)

	status := NewStatusComponent(80)
	status.SetProvider(config.LLM.Provider, config.LLM.Model, connected)
	status.SetTypingLabel(locale.Typing)

	return &TUIModel{
		config:          config,
		theme:           theme,
		locale:          locale,
		chat:            chat,
		sidebar:         NewSidebar(store, locale),
		help:            NewHelpWindow(),
		status:          status,
		commandLine:     NewCommandLineComponent(),
		commandRegistry: NewCommandRegistry(),
		store:           store,
		openEditor:      true,
		saveConfig:      SaveConfig,
	}
}

// shutdown stops the running answer and ends the chat view lifetime
func (m *TUIModel) shutdown() {
	if m.store.IsStreaming() {
		m.store.StopStreaming()
	}
	m.chat.Unmount()
}

// Init implements bubbletea.Model
func (m TUIModel) Init() tea.Cmd {
	return m.chat.Mount()
}

// Update implements bubbletea.Model
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		if duration > 100*time.Millisecond {
			slog.Warn("[bubbletea] Update() SLOW", "duration", duration, "msg_type", fmt.Sprintf("%T", msg))
		}
	}()

	// Update command line to remove expired toasts
	m.commandLine.Update()

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyMsg(msg)
	case tea.MouseMsg:
		cmd = m.handleMouseMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateComponentDimensions()
	default:
		cmd = m.handleCustomMessages(msg)
	}

	if m.width > 0 && m.store.ShowSideBar() != m.sidebarShown {
		m.updateComponentDimensions()
	}
	return m, cmd
}

// handleKeyMsg processes keyboard input filtering out escape sequences
func (m *TUIModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	keyStr := msg.String()

	// Terminal responses to background color queries like ]11;rgb:...
	if strings.HasPrefix(keyStr, "]") || strings.Contains(keyStr, "rgb:") || strings.Contains(keyStr, ";rgb") {
		return nil
	}
	// Cursor position reports like [1;1R
	if (strings.HasPrefix(keyStr, "[") || strings.HasPrefix(keyStr, "\x1b[")) &&
		strings.HasSuffix(keyStr, "R") && strings.Contains(keyStr, ";") {
		return nil
	}

	if keyStr == "ctrl+c" {
		return m.handleCtrlC()
	}
	if !m.ctrlCPressedTime.IsZero() {
		m.ctrlCPressedTime = time.Time{}
	}

	// Command line input MUST be handled before other handlers
	if m.commandLine.IsInCommandMode() {
		cmd, _ := m.commandLine.HandleKey(msg)
		return cmd
	}

	if m.help.IsVisible() {
		if keyStr == ":" {
			m.commandLine.EnterCommandMode("")
			return nil
		}
		cmd := m.help.Update(msg)
		if !m.help.IsVisible() {
			return tea.Batch(cmd, m.chat.FocusInput())
		}
		return cmd
	}

	if keyStr == "ctrl+b" && !m.sidebar.Focused() {
		m.openSidebar()
		return nil
	}

	if m.sidebar.Focused() {
		return m.sidebar.Update(msg)
	}

	if keyStr == ":" && !m.chat.InputFocused() {
		m.commandLine.EnterCommandMode("")
		return nil
	}

	return m.chat.Update(msg)
}

func (m *TUIModel) handleCtrlC() tea.Cmd {
	now := time.Now()
	timeSinceFirst := now.Sub(m.ctrlCPressedTime)
	slog.Debug("Got CTRL-C", "ctrlCPressed", !m.ctrlCPressedTime.IsZero(), "timeSinceFirst", timeSinceFirst)

	// duplicate events from the terminal
	if !m.ctrlCPressedTime.IsZero() && timeSinceFirst < ctrlCDebounceTime {
		return nil
	}

	if !m.ctrlCPressedTime.IsZero() && timeSinceFirst < ctrlCWindowTime {
		m.shutdown()
		return tea.Quit
	}

	m.ctrlCPressedTime = now
	if m.commandLine.IsInCommandMode() {
		m.commandLine.ExitCommandMode()
	}
	if m.store.IsStreaming() {
		m.store.StopStreaming()
	}
	m.commandLine.AddToast("Press CTRL-C in less than 2s to exit", "info", 3*time.Second)
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

// handleMouseMsg routes clicks to the sidebar or, shifted by its width, to the chat view
func (m *TUIModel) handleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	if m.help.IsVisible() {
		return m.help.Update(msg)
	}

	if m.store.ShowSideBar() {
		offset := m.sidebar.Width()
		if msg.X < offset {
			if msg.Action == tea.MouseActionPress && !m.sidebar.Focused() {
				m.sidebar.Focus()
				m.chat.Blur()
			}
			return m.sidebar.Update(msg)
		}
		msg.X -= offset
		if msg.Action == tea.MouseActionPress && m.sidebar.Focused() {
			m.sidebar.Blur()
		}
	}
	return m.chat.Update(msg)
}

// openSidebar shows the conversation list and gives it the keyboard
func (m *TUIModel) openSidebar() {
	m.store.SetShowSideBar(true)
	m.sidebar.Focus()
	m.chat.Blur()
}

// handleCustomMessages handles all custom message types
func (m *TUIModel) handleCustomMessages(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case storeChangedMsg:
		m.sidebar.Reload()
		return m.chat.Update(msg)

	case toastMsg:
		timeout := defaultToastTimeout
		m.commandLine.AddToast(msg.message, msg.kind, timeout)
		return tea.Tick(timeout, func(time.Time) tea.Msg { return toastExpiredMsg{} })

	case toastExpiredMsg:
		return nil

	case sidebarOpenedMsg:
		m.sidebar.Focus()
		m.chat.Blur()
		return nil

	case sidebarClosedMsg:
		return m.chat.FocusInput()

	case sessionSwitchedMsg:
		m.sidebar.Reload()
		return tea.Batch(m.chat.SessionChanged(), m.chat.FocusInput())

	case commandReadyMsg:
		return m.executeCommand(msg.command)

	case commandCancelledMsg:
		return nil

	case showHelpMsg:
		m.sidebar.Blur()
		m.chat.Blur()
		m.help.Show(msg.topic)
		return nil
	}

	return m.chat.Update(msg)
}

// executeCommand runs a command line entry, accepting unique prefixes
func (m *TUIModel) executeCommand(line string) tea.Cmd {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd, matches, found := m.commandRegistry.FindCommand(parts[0])
	if !found {
		if len(matches) > 1 {
			return toastCmd(fmt.Sprintf("Ambiguous command: %s (%s)", parts[0], strings.Join(matches, ", ")), "warning")
		}
		return toastCmd(fmt.Sprintf("Unknown command: %s", parts[0]), "error")
	}

	slog.Debug("executing command", "command", cmd.Name, "args", parts[1:])
	return cmd.Handler(m, parts[1:])
}

// updateComponentDimensions updates the dimensions of all components based on the window size
func (m *TUIModel) updateComponentDimensions() {
	mainHeight := m.height - statusHeight - commandLineHeight
	if mainHeight < 1 {
		mainHeight = 1
	}

	mainWidth := m.width
	m.sidebarShown = m.store.ShowSideBar()
	if m.sidebarShown {
		sw := sidebarWidth(m.width)
		m.sidebar.SetSize(sw, mainHeight)
		mainWidth -= sw
	}

	m.chat.SetSize(mainWidth, mainHeight)
	m.help.SetSize(mainWidth, mainHeight)
	m.status.SetWidth(m.width)
	m.commandLine.SetWidth(m.width)

	slog.Debug("Updated dimensions", "width", m.width, "height", m.height, "main width", mainWidth, "sidebar", m.sidebarShown)
}

// mode is the focus shown on the status line
func (m TUIModel) mode() string {
	switch {
	case m.commandLine.IsInCommandMode():
		return ModeCommand
	case m.help.IsVisible():
		return ModeHelp
	case m.sidebar.Focused():
		return ModeSidebar
	case m.chat.InputFocused():
		return ModeInsert
	default:
		return ModeList
	}
}

// View implements bubbletea.Model
func (m TUIModel) View() string {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		if duration > 100*time.Millisecond {
			slog.Warn("[bubbletea] View() SLOW", "duration", duration)
		}
	}()

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	main := m.chat.View()
	if m.help.IsVisible() {
		main = m.help.View()
	}
	if m.store.ShowSideBar() {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	}

	status := m.status
	status.SetMode(m.mode())
	status.SetConversation(len(m.store.Messages()), m.store.IsStreaming(), m.store.SubmitKey())
	if m.store.LastError() != nil {
		status.SetError()
	} else {
		status.ClearError()
	}

	commandLineView := m.commandLine.View()
	if commandLineView == "" {
		commandLineView = " "
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, status.View(), commandLineView)
}
