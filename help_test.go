package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestHelpTopics(t *testing.T) {
	tests := map[string]string{
		"index":    "chatpane",
		"keys":     "Key Bindings",
		"KEYS":     "Key Bindings",
		"commands": ":submitkey",
		"config":   "submit_key",
		"nope":     "Help Topic Not Found",
	}
	for topic, want := range tests {
		t.Run(topic, func(t *testing.T) {
			assert.Contains(t, helpTopic(topic), want)
		})
	}
}

func TestHelpWindowShowAndHide(t *testing.T) {
	h := NewHelpWindow()
	h.SetSize(80, 40)
	assert.False(t, h.IsVisible())

	h.Show("")
	assert.True(t, h.IsVisible())
	assert.Equal(t, "index", h.GetTopic())

	h.Show("commands")
	assert.Equal(t, "commands", h.GetTopic())
	assert.Contains(t, h.View(), "Start a new conversation")

	h.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.True(t, h.IsVisible(), "other keys scroll")

	h.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, h.IsVisible())

	h.Show("keys")
	h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.False(t, h.IsVisible())
}

func TestHelpRenderContentStylesLines(t *testing.T) {
	h := NewHelpWindow()
	h.Show("commands")

	content := h.RenderContent()

	assert.Contains(t, content, "Commands")
	assert.NotContains(t, content, "# Commands", "headers lose their markup")
	assert.Contains(t, content, ":new")
}

func TestHelpExplainsShiftEnter(t *testing.T) {
	assert.Contains(t, helpTopic("keys"), "Shift + Enter is not reported")
	assert.Contains(t, helpTopic("config"), "ctrl+s always sends")
}
