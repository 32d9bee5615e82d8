package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExportType represents the type of export to generate
type ExportType string

const (
	// ExportTypeFull adds timestamps and model ids to every message
	ExportTypeFull         ExportType = "full"
	ExportTypeConversation ExportType = "conversation"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ParseExportType maps a command argument to an export type
func ParseExportType(s string) (ExportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ExportTypeConversation):
		return ExportTypeConversation, nil
	case string(ExportTypeFull):
		return ExportTypeFull, nil
	default:
		return "", fmt.Errorf("unknown export type '%s'. Use 'full' or 'conversation'", s)
	}
}

// exportSession writes the conversation as markdown into dir (the temp dir
// when empty) and returns the file path.
func exportSession(dir string, session ChatSession, messages []ChatMessage, exportType ExportType, locale Locale) (string, error) {
	if session.ID == "" {
		return "", fmt.Errorf("no session to export")
	}
	if dir == "" {
		dir = os.TempDir()
	}

	now := time.Now()
	content := generateExportContent(session, messages, exportType, locale, now)

	filename := fmt.Sprintf("%s-export-%s-%s.md", appName, session.ID, now.Format("20060102-150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// generateExportContent renders "# <topic>" followed by one section per message
func generateExportContent(session ChatSession, messages []ChatMessage, exportType ExportType, locale Locale, exportedAt time.Time) string {
	var b strings.Builder

	topic := session.Topic
	if topic == "" {
		topic = locale.NewTopic
	}
	b.WriteString(fmt.Sprintf("# %s\n\n", topic))

	if exportType == ExportTypeFull {
		b.WriteString(fmt.Sprintf("**Session ID:** %s\n", session.ID))
		b.WriteString(fmt.Sprintf("**Created:** %s | **Last Updated:** %s | **Exported:** %s\n",
			session.CreatedAt.Format(exportTimeLayout),
			session.UpdatedAt.Format(exportTimeLayout),
			exportedAt.Format(exportTimeLayout)))
		b.WriteString(fmt.Sprintf("**Messages:** %d\n", len(messages)))
		b.WriteString("\n---\n\n")
	}

	for i, m := range messages {
		name := locale.Assistant
		if m.IsUser() {
			name = locale.User
		}
		b.WriteString(fmt.Sprintf("## %s\n\n", name))

		if exportType == ExportTypeFull {
			meta := m.CreatedAt.Format(exportTimeLayout)
			if m.ModelID != "" {
				meta += " · " + m.ModelID
			}
			b.WriteString(fmt.Sprintf("_%s_\n\n", meta))
		}

		b.WriteString(strings.TrimRight(m.Content, "\n"))
		b.WriteString("\n")
		if i < len(messages)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// openInEditor creates a command to open the specified file in the user's preferred editor
func openInEditor(path string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return exec.Command(editor, path)
}
