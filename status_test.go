package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenProviderModel(t *testing.T) {
	tests := []struct {
		provider, model, want string
	}{
		{"anthropic", "claude-3-5-haiku-20241022", "Claude-3.5-Haiku"},
		{"anthropic", "claude-sonnet-4-latest", "Claude-Sonnet-4"},
		{"openai", "gpt-4o-mini", "GPT-4o-mini"},
		{"openai", "gpt-4o", "GPT-4o"},
		{"openai", "gpt-4-turbo", "GPT-4T"},
		{"openai", "gpt-3.5-turbo", "GPT-3.5"},
		{"googleai", "gemini-1.5-pro", "Gemini-Pro"},
		{"googleai", "gemini-2.0-flash", "Gemini-Flash"},
		{"ollama", "llama3", "Ollama-llama3"},
		{"fake", "", "Fake"},
		{"custom", "m1", "custom-m1"},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, shortenProviderModel(tt.provider, tt.model))
		})
	}
}

func TestStatusView(t *testing.T) {
	s := NewStatusComponent(100)
	s.SetProvider("openai", "gpt-4o-mini", true)
	s.SetMode("list")
	s.SetConversation(4, false, SubmitKeyCtrlEnter)

	view := s.View()

	assert.Contains(t, view, ModeList)
	assert.Contains(t, view, "⏎ Ctrl + Enter")
	assert.Contains(t, view, "💬 4")
	assert.Contains(t, view, "GPT-4o-mini ✅")
}

func TestStatusViewStreaming(t *testing.T) {
	s := NewStatusComponent(100)
	s.SetProvider("anthropic", "claude-3-opus", false)
	s.SetTypingLabel(localeCN.Typing)
	s.SetConversation(2, true, SubmitKeyEnter)

	view := s.View()

	assert.Contains(t, view, "⏳ "+localeCN.Typing)
	assert.NotContains(t, view, "💬")
	assert.Contains(t, view, "🔌")

	s.SetError()
	assert.Contains(t, s.View(), "❌")
	s.ClearError()
	assert.NotContains(t, s.View(), "❌")
}

func TestStatusViewNarrow(t *testing.T) {
	s := NewStatusComponent(24)
	s.SetProvider("openai", "gpt-4o-mini", true)
	s.SetConversation(9, false, SubmitKeyEnter)

	view := s.View()

	assert.Contains(t, view, ModeInsert)
	assert.NotContains(t, view, "💬", "the middle section is dropped first")
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 24)
	}
}

func TestStatusTruncateString(t *testing.T) {
	s := NewStatusComponent(10)

	assert.Equal(t, "short", s.truncateString("short", 10))
	assert.Equal(t, "abcd...", s.truncateString("abcdefghijkl", 7))
	assert.Equal(t, "...", s.truncateString("abcdefghijkl", 3))
}
