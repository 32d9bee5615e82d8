package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SubmitKey is the keystroke policy that sends the draft
type SubmitKey string

const (
	SubmitKeyEnter      SubmitKey = "Enter"
	SubmitKeyAltEnter   SubmitKey = "AltEnter"
	SubmitKeyCtrlEnter  SubmitKey = "CtrlEnter"
	SubmitKeyShiftEnter SubmitKey = "ShiftEnter"
)

var submitKeys = []SubmitKey{SubmitKeyEnter, SubmitKeyAltEnter, SubmitKeyCtrlEnter, SubmitKeyShiftEnter}

// ParseSubmitKey accepts the config spelling ("CtrlEnter") as well as the
// key-chord spelling ("ctrl+enter").
func ParseSubmitKey(s string) (SubmitKey, error) {
	normalized := strings.ToLower(strings.NewReplacer("+", "", "-", "", " ", "").Replace(s))
	for _, k := range submitKeys {
		if strings.ToLower(string(k)) == normalized {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown submit key %q (want one of Enter, AltEnter, CtrlEnter, ShiftEnter)", s)
}

// Label returns the human readable chord, e.g. "Ctrl + Enter"
func (k SubmitKey) Label() string {
	switch k {
	case SubmitKeyAltEnter:
		return "Alt + Enter"
	case SubmitKeyCtrlEnter:
		return "Ctrl + Enter"
	case SubmitKeyShiftEnter:
		return "Shift + Enter"
	default:
		return "Enter"
	}
}

// KeyEvent is a decoded keystroke with its modifier state
type KeyEvent struct {
	Key       string
	Alt       bool
	Ctrl      bool
	Shift     bool
	Meta      bool
	Composing bool
}

const keyEnter = "Enter"

// ShouldSubmit reports whether ev is an Enter press matching the policy
func ShouldSubmit(ev KeyEvent, policy SubmitKey) bool {
	if ev.Key != keyEnter {
		return false
	}

	return (policy == SubmitKeyAltEnter && ev.Alt) ||
		(policy == SubmitKeyCtrlEnter && ev.Ctrl) ||
		(policy == SubmitKeyShiftEnter && ev.Shift) ||
		(policy == SubmitKeyEnter && !ev.Alt && !ev.Ctrl && !ev.Shift && !ev.Meta)
}

// keyEventFromMsg decodes a bubbletea key message.
// Most terminals report ctrl+enter as a line feed (ctrl+j), so that is
// treated as Enter with Ctrl held. Bracketed paste counts as composition:
// newlines inside pasted text must never submit.
func keyEventFromMsg(msg tea.KeyMsg) KeyEvent {
	ev := KeyEvent{
		Alt:       msg.Alt,
		Composing: msg.Paste,
	}

	switch msg.Type {
	case tea.KeyEnter:
		ev.Key = keyEnter
	case tea.KeyCtrlJ:
		ev.Key = keyEnter
		ev.Ctrl = true
	default:
		ev.Key = msg.String()
	}
	return ev
}
