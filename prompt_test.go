package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputPanelHeight(t *testing.T) {
	p := NewInputPanel(40, localeEN, SubmitKeyEnter)
	p.SetScreenHeight(10)

	assert.Equal(t, inputMinLines, p.Height)
	assert.Equal(t, inputMinLines+3, p.TotalHeight())

	p.SetValue("a\nb\nc")
	assert.Equal(t, 3, p.Height)

	p.SetValue("1\n2\n3\n4\n5\n6\n7\n8")
	assert.Equal(t, 5, p.Height, "capped at half the pane")

	p.Reset()
	assert.Equal(t, inputMinLines, p.Height)
	assert.Equal(t, "", p.Value())
}

func TestInputPanelPlaceholderFollowsSubmitKey(t *testing.T) {
	p := NewInputPanel(40, localeEN, SubmitKeyEnter)
	assert.Equal(t, "Type a message, Enter to send", p.TextArea.Placeholder)

	p.SetSubmitKey(SubmitKeyShiftEnter)
	assert.Equal(t, "Type a message, Shift + Enter to send", p.TextArea.Placeholder)
}

func TestInputPanelSendButton(t *testing.T) {
	p := NewInputPanel(40, localeEN, SubmitKeyEnter)

	// the button sits flush right: "[ Send ]" is 8 columns wide
	assert.True(t, p.InSendButton(32))
	assert.True(t, p.InSendButton(39))
	assert.False(t, p.InSendButton(31))
	assert.False(t, p.InSendButton(40))
	assert.Contains(t, p.View(), "[ Send ]")
}

func TestInputPanelFocus(t *testing.T) {
	p := NewInputPanel(40, localeEN, SubmitKeyEnter)
	assert.False(t, p.Focused())

	p.Focus()
	assert.True(t, p.Focused())

	p.Blur()
	assert.False(t, p.Focused())
}
