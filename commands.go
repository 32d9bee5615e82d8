package main

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Command represents a : command
type Command struct {
	Name        string
	Description string
	Handler     func(*TUIModel, []string) tea.Cmd
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	Commands map[string]Command
	order    []string
}

func normalizeCommandName(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, ":") {
		return "/" + strings.TrimPrefix(name, ":")
	}
	if !strings.HasPrefix(name, "/") {
		return "/" + name
	}
	return name
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() CommandRegistry {
	registry := CommandRegistry{
		Commands: make(map[string]Command),
	}

	registry.RegisterCommand("/help", "Show help (usage: :help [topic])", handleHelpCommand)
	registry.RegisterCommand("/new", "Start a new conversation", handleNewSessionCommand)
	registry.RegisterCommand("/sessions", "Show the conversation list", handleSessionsCommand)
	registry.RegisterCommand("/export", "Export conversation to file and open in $EDITOR (usage: :export [full|conversation])", handleExportCommand)
	registry.RegisterCommand("/submitkey", "Change the submit key (usage: :submitkey Enter|AltEnter|CtrlEnter|ShiftEnter)", handleSubmitKeyCommand)
	registry.RegisterCommand("/quit", "Quit the application", handleQuitCommand)

	return registry
}

// RegisterCommand registers a new command
func (cr *CommandRegistry) RegisterCommand(name, description string, handler func(*TUIModel, []string) tea.Cmd) {
	normalized := normalizeCommandName(name)
	if normalized == "" {
		return
	}
	if _, exists := cr.Commands[normalized]; !exists {
		cr.order = append(cr.order, normalized)
	}
	cr.Commands[normalized] = Command{
		Name:        normalized,
		Description: description,
		Handler:     handler,
	}
}

// GetCommand gets a command by name
func (cr CommandRegistry) GetCommand(name string) (Command, bool) {
	cmd, exists := cr.Commands[normalizeCommandName(name)]
	return cmd, exists
}

// FindCommand finds commands by prefix (like vim).
// Returns:
// - exactMatch: the matched command if exactly one match is found
// - matches: all commands that start with the prefix
// - found: true if exactly one match was found
func (cr CommandRegistry) FindCommand(prefix string) (exactMatch Command, matches []string, found bool) {
	normalized := normalizeCommandName(prefix)
	if normalized == "" {
		return Command{}, nil, false
	}

	if cmd, exists := cr.Commands[normalized]; exists {
		return cmd, []string{normalized}, true
	}

	var matchedCommands []string
	searchPrefix := strings.TrimPrefix(normalized, "/")
	for _, cmdName := range cr.order {
		if strings.HasPrefix(strings.TrimPrefix(cmdName, "/"), searchPrefix) {
			matchedCommands = append(matchedCommands, cmdName)
		}
	}

	if len(matchedCommands) == 1 {
		return cr.Commands[matchedCommands[0]], matchedCommands, true
	}
	return Command{}, matchedCommands, false
}

// GetAllCommands returns all registered commands
func (cr CommandRegistry) GetAllCommands() []Command {
	var commands []Command
	for _, name := range cr.order {
		if cmd, ok := cr.Commands[name]; ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// Command handlers

type showHelpMsg struct {
	topic string
}

func handleHelpCommand(model *TUIModel, args []string) tea.Cmd {
	topic := "index"
	if len(args) > 0 {
		topic = args[0]
	}
	return func() tea.Msg {
		return showHelpMsg{topic: topic}
	}
}

func handleNewSessionCommand(model *TUIModel, args []string) tea.Cmd {
	id := model.store.NewSession()
	slog.Debug("new session from command line", "id", id)
	model.sidebar.Reload()
	return tea.Batch(model.chat.SessionChanged(), model.chat.FocusInput())
}

func handleSessionsCommand(model *TUIModel, args []string) tea.Cmd {
	model.openSidebar()
	return nil
}

func handleQuitCommand(model *TUIModel, args []string) tea.Cmd {
	if model.help.IsVisible() {
		model.help.Hide()
		return nil
	}
	model.shutdown()
	return tea.Quit
}

func handleExportCommand(model *TUIModel, args []string) tea.Cmd {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	exportType, err := ParseExportType(arg)
	if err != nil {
		return toastCmd(err.Error(), "error")
	}

	session := model.store.CurrentSession()
	messages := model.store.Messages()
	if session == nil || len(messages) == 0 {
		return toastCmd("No conversation to export. Start a conversation first.", "warning")
	}

	path, err := exportSession(model.exportDir, *session, messages, exportType, model.locale)
	if err != nil {
		slog.Error("export failed", "session", session.ID, "error", err)
		return toastCmd(fmt.Sprintf("Export failed: %v", err), "error")
	}
	slog.Info("conversation exported", "path", path, "type", exportType)

	if !model.openEditor {
		return toastCmd(model.locale.Exported(path), "success")
	}
	return tea.ExecProcess(openInEditor(path), func(err error) tea.Msg {
		if err != nil {
			return toastMsg{message: fmt.Sprintf("Editor exited with error: %v", err), kind: "error"}
		}
		return toastMsg{message: model.locale.Exported(path), kind: "success"}
	})
}

func handleSubmitKeyCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) == 0 {
		current := model.store.SubmitKey()
		return toastCmd(fmt.Sprintf("Submit key is %s (%s)", current, current.Label()), "info")
	}

	k, err := ParseSubmitKey(args[0])
	if err != nil {
		return toastCmd(err.Error(), "error")
	}

	model.store.SetSubmitKey(k)
	if model.config != nil {
		model.config.UI.SubmitKey = string(k)
		if model.saveConfig != nil {
			if err := model.saveConfig(model.config); err != nil {
				slog.Warn("failed to save submit key", "error", err)
				return toastCmd(fmt.Sprintf("Submit key set to %s but not saved: %v", k.Label(), err), "warning")
			}
		}
	}
	if k == SubmitKeyShiftEnter {
		return tea.Batch(model.chat.Refresh(), toastCmd(fmt.Sprintf("Submit key set to %s. %s", k.Label(), shiftEnterHint), "warning"))
	}
	return tea.Batch(model.chat.Refresh(), toastCmd(fmt.Sprintf("Submit key set to %s", k.Label()), "success"))
}

const shiftEnterHint = "Most terminals report Shift + Enter as plain Enter, use ctrl+s to send"
