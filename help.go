package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpWindow displays help documentation in place of the conversation
type HelpWindow struct {
	viewport viewport.Model
	topic    string
	visible  bool
}

// NewHelpWindow creates a new help window
func NewHelpWindow() *HelpWindow {
	return &HelpWindow{
		viewport: viewport.New(80, 20),
		topic:    "index",
	}
}

// SetSize updates the dimensions of the help window
func (h *HelpWindow) SetSize(width, height int) {
	h.viewport.Width = width
	h.viewport.Height = height
	h.viewport.SetContent(h.RenderContent())
}

// Show opens the help window on a topic
func (h *HelpWindow) Show(topic string) {
	if topic == "" {
		topic = "index"
	}
	h.topic = topic
	h.visible = true
	h.viewport.SetContent(h.RenderContent())
	h.viewport.GotoTop()
}

// Hide closes the help window
func (h *HelpWindow) Hide() {
	h.visible = false
}

// IsVisible reports whether the help window is open
func (h *HelpWindow) IsVisible() bool {
	return h.visible
}

// GetTopic returns the current topic
func (h *HelpWindow) GetTopic() string {
	return h.topic
}

// Update scrolls the help text; q and esc close it
func (h *HelpWindow) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "esc":
			h.Hide()
			return nil
		}
	}
	var cmd tea.Cmd
	h.viewport, cmd = h.viewport.Update(msg)
	return cmd
}

// View renders the help window
func (h *HelpWindow) View() string {
	return h.viewport.View()
}

// RenderContent generates the styled help content for the current topic
func (h *HelpWindow) RenderContent() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F4DB53")).
		MarginBottom(1)

	subheaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#01FAFA")).
		MarginTop(1)

	codeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F952F9")).
		Background(lipgloss.Color("#1a1a1a")).
		Padding(0, 1)

	keyStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F952F9"))

	var styled []string
	for _, line := range strings.Split(helpTopic(h.topic), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "# "):
			styled = append(styled, headerStyle.Render(strings.TrimPrefix(trimmed, "# ")))
		case strings.HasPrefix(trimmed, "## "):
			styled = append(styled, subheaderStyle.Render(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, ":"):
			parts := strings.SplitN(trimmed, " - ", 2)
			if len(parts) == 2 {
				styled = append(styled, "  "+codeStyle.Render(strings.TrimSpace(parts[0]))+" - "+parts[1])
			} else {
				styled = append(styled, "  "+codeStyle.Render(trimmed))
			}
		case strings.HasPrefix(line, "  ") && strings.Contains(trimmed, " - "):
			parts := strings.SplitN(trimmed, " - ", 2)
			styled = append(styled, "  "+keyStyle.Render(strings.TrimSpace(parts[0]))+" - "+parts[1])
		default:
			styled = append(styled, line)
		}
	}
	return strings.Join(styled, "\n")
}

func helpTopic(topic string) string {
	topics := map[string]string{
		"index":    helpIndex,
		"keys":     helpKeys,
		"commands": helpCommands,
		"config":   helpConfig,
	}
	if content, ok := topics[strings.ToLower(topic)]; ok {
		return content
	}

	return fmt.Sprintf(`# Help Topic Not Found

The help topic '%s' was not found.

## Available Topics

:help index - Main help index
:help keys - Key bindings
:help commands - Available commands
:help config - Configuration options

Press 'q' or ESC to close this help window.
`, topic)
}

const helpIndex = `# chatpane

A terminal chat client. Type in the input panel and send with the submit
key; answers stream into the conversation above.

## Topics

:help keys - Key bindings
:help commands - Available commands
:help config - Configuration options

Press 'q' or ESC to close this help window.
`

const helpKeys = `# Key Bindings

## Input panel

  Enter - send (or the chord set by ui.submit_key)
  ctrl+s - send, whatever the submit key (use it when Shift + Enter is not reported)
  esc - leave the input for the message list

## Message list

  up/k - previous message
  down/j - next message
  s - stop the answer being written
  r - retry the answer
  d - delete the message
  c/y - copy the message
  i/enter - back to the input panel
  : - command line

## Everywhere

  ctrl+b - conversations
  ctrl+c - quit (press twice)
`

const helpCommands = `# Commands

:new - Start a new conversation
:sessions - Show the conversation list
:export [full|conversation] - Export the conversation and open it in $EDITOR
:submitkey <Enter|AltEnter|CtrlEnter|ShiftEnter> - Change and save the submit key
:help [topic] - Show help
:quit - Quit the application
`

const helpConfig = `# Configuration

Settings are read from ~/.config/chatpane/conf.toml, then
.agents/chatpane.toml, then CHATPANE_* environment variables
(CHATPANE_UI_SUBMIT_KEY sets ui.submit_key).

## [ui]

  submit_key - Enter, AltEnter, CtrlEnter or ShiftEnter
  (most terminals report Shift + Enter as plain Enter; ctrl+s always sends)
  language - en or cn
  markdown_enabled - render answers as markdown
  show_sidebar - show the conversation list on start
  context_menu - right click copies a message
  auto_scroll_delay_ms - delay before following new content

## [llm]

  provider - openai, anthropic, ollama, googleai or fake
  model - model name sent to the provider
  api_key - falls back to OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY and the OS keyring
`
