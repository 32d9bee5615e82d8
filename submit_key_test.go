package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldSubmitIgnoresOtherKeys(t *testing.T) {
	keys := []string{"a", "tab", "esc", "ctrl+s", "space", "", "enter"}
	for _, policy := range submitKeys {
		for _, k := range keys {
			for _, ev := range []KeyEvent{
				{Key: k},
				{Key: k, Alt: true},
				{Key: k, Ctrl: true},
				{Key: k, Shift: true},
				{Key: k, Meta: true},
			} {
				assert.False(t, ShouldSubmit(ev, policy), "policy %s, event %+v", policy, ev)
			}
		}
	}
}

func TestShouldSubmit(t *testing.T) {
	plain := KeyEvent{Key: keyEnter}
	alt := KeyEvent{Key: keyEnter, Alt: true}
	ctrl := KeyEvent{Key: keyEnter, Ctrl: true}
	shift := KeyEvent{Key: keyEnter, Shift: true}
	meta := KeyEvent{Key: keyEnter, Meta: true}

	tests := []struct {
		name   string
		policy SubmitKey
		ev     KeyEvent
		want   bool
	}{
		{"enter plain", SubmitKeyEnter, plain, true},
		{"enter with alt", SubmitKeyEnter, alt, false},
		{"enter with ctrl", SubmitKeyEnter, ctrl, false},
		{"enter with shift", SubmitKeyEnter, shift, false},
		{"enter with meta", SubmitKeyEnter, meta, false},

		{"alt policy plain", SubmitKeyAltEnter, plain, false},
		{"alt policy alt", SubmitKeyAltEnter, alt, true},
		{"alt policy ctrl", SubmitKeyAltEnter, ctrl, false},

		{"ctrl policy plain", SubmitKeyCtrlEnter, plain, false},
		{"ctrl policy ctrl", SubmitKeyCtrlEnter, ctrl, true},
		{"ctrl policy ctrl and shift", SubmitKeyCtrlEnter, KeyEvent{Key: keyEnter, Ctrl: true, Shift: true}, true},
		{"ctrl policy shift", SubmitKeyCtrlEnter, shift, false},

		{"shift policy plain", SubmitKeyShiftEnter, plain, false},
		{"shift policy shift", SubmitKeyShiftEnter, shift, true},
		{"shift policy alt", SubmitKeyShiftEnter, alt, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldSubmit(tt.ev, tt.policy))
		})
	}
}

func TestParseSubmitKey(t *testing.T) {
	tests := []struct {
		input   string
		want    SubmitKey
		wantErr bool
	}{
		{input: "Enter", want: SubmitKeyEnter},
		{input: "enter", want: SubmitKeyEnter},
		{input: "AltEnter", want: SubmitKeyAltEnter},
		{input: "alt+enter", want: SubmitKeyAltEnter},
		{input: "CtrlEnter", want: SubmitKeyCtrlEnter},
		{input: "ctrl-enter", want: SubmitKeyCtrlEnter},
		{input: "Shift + Enter", want: SubmitKeyShiftEnter},
		{input: "MetaEnter", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSubmitKey(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitKeyLabel(t *testing.T) {
	assert.Equal(t, "Enter", SubmitKeyEnter.Label())
	assert.Equal(t, "Alt + Enter", SubmitKeyAltEnter.Label())
	assert.Equal(t, "Ctrl + Enter", SubmitKeyCtrlEnter.Label())
	assert.Equal(t, "Shift + Enter", SubmitKeyShiftEnter.Label())
	assert.Equal(t, "Enter", SubmitKey("").Label())
}

func TestKeyEventFromMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want KeyEvent
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, KeyEvent{Key: keyEnter}},
		{"alt enter", tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, KeyEvent{Key: keyEnter, Alt: true}},
		{"line feed is ctrl enter", tea.KeyMsg{Type: tea.KeyCtrlJ}, KeyEvent{Key: keyEnter, Ctrl: true}},
		{"runes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, KeyEvent{Key: "x"}},
		{"paste is composing", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb"), Paste: true}, KeyEvent{Key: "[a\nb]", Composing: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyEventFromMsg(tt.msg))
		})
	}
}

func TestPastedEnterNeverSubmits(t *testing.T) {
	ev := keyEventFromMsg(tea.KeyMsg{Type: tea.KeyEnter, Paste: true})
	assert.True(t, ev.Composing)
	assert.True(t, ShouldSubmit(ev, SubmitKeyEnter), "the resolver itself ignores composition")

	store := newFakeChatStore()
	view := newTestChatView(t, store)
	view.SetDraft("draft")
	handled, _ := view.OnInputKeyDown(ev)
	assert.False(t, handled)
	assert.Empty(t, store.requests)
}
