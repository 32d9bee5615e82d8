package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeCommand(cl *CommandLineComponent, s string) {
	for _, r := range s {
		cl.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestCommandLineTypingAndEnter(t *testing.T) {
	cl := NewCommandLineComponent()
	cl.SetWidth(80)

	cmd, handled := cl.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, handled, "keys are ignored outside command mode")

	cl.EnterCommandMode("")
	typeCommand(cl, "export")
	cl.HandleKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	typeCommand(cl, "full")
	assert.Equal(t, "export full", cl.GetCommand())
	assert.Contains(t, cl.View(), ":export full")

	cmd, handled = cl.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, handled)
	require.NotNil(t, cmd)
	assert.Equal(t, commandReadyMsg{command: "export full"}, cmd())
	assert.False(t, cl.IsInCommandMode())
}

func TestCommandLineCancel(t *testing.T) {
	cl := NewCommandLineComponent()

	cl.EnterCommandMode("abc")
	cmd, _ := cl.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, commandCancelledMsg{}, cmd())
	assert.False(t, cl.IsInCommandMode())

	// empty command on enter cancels too
	cl.EnterCommandMode("")
	cmd, _ = cl.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, commandCancelledMsg{}, cmd())

	// backspace on an empty line leaves command mode
	cl.EnterCommandMode("")
	cmd, _ = cl.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, commandCancelledMsg{}, cmd())
	assert.False(t, cl.IsInCommandMode())
}

func TestCommandLineEditing(t *testing.T) {
	cl := NewCommandLineComponent()
	cl.EnterCommandMode("hlp")

	cl.HandleKey(tea.KeyMsg{Type: tea.KeyLeft})
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyLeft})
	typeCommand(cl, "e")
	assert.Equal(t, "help", cl.GetCommand())

	cl.HandleKey(tea.KeyMsg{Type: tea.KeyHome})
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, "elp", cl.GetCommand())

	cl.HandleKey(tea.KeyMsg{Type: tea.KeyEnd})
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "el", cl.GetCommand())

	// multi-byte runes are edited as a whole
	cl.EnterCommandMode("")
	typeCommand(cl, "帮助")
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "帮", cl.GetCommand())
}

func TestCommandLineHistory(t *testing.T) {
	cl := NewCommandLineComponent()
	cl.AddToHistory("new")
	cl.AddToHistory("export")
	cl.AddToHistory("export")
	cl.AddToHistory("")

	assert.Equal(t, []string{"new", "export"}, cl.history)

	cl.EnterCommandMode("draft")
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "export", cl.GetCommand())
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "new", cl.GetCommand())
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "new", cl.GetCommand(), "stays at the oldest entry")

	cl.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "export", cl.GetCommand())
	cl.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "draft", cl.GetCommand(), "the pending line comes back")
	assert.False(t, cl.NavigateHistory(1))
}

func TestCommandLineToasts(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cl := NewCommandLineComponent()
	cl.SetWidth(80)
	cl.now = func() time.Time { return now }

	assert.Equal(t, "", cl.View())

	cl.AddToast("first", "info", time.Second)
	cl.AddToast("second", "error", 3*time.Second)
	assert.Contains(t, cl.View(), "second", "the newest toast shows")

	now = now.Add(2 * time.Second)
	cl.Update()
	require.Len(t, cl.toasts, 1)
	assert.Equal(t, "second", cl.toasts[0].Message)

	now = now.Add(2 * time.Second)
	cl.Update()
	assert.Empty(t, cl.toasts)
	assert.Equal(t, "", cl.View())

	cl.AddToast("x", "warning", time.Second)
	cl.ClearToasts()
	assert.Empty(t, cl.toasts)
}

func TestCommandModeHidesToasts(t *testing.T) {
	cl := NewCommandLineComponent()
	cl.SetWidth(80)
	cl.AddToast("hello", "info", time.Minute)

	cl.EnterCommandMode("q")

	view := cl.View()
	assert.Contains(t, view, ":q")
	assert.NotContains(t, view, "hello")
}
