package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	inputMinLines = 2
	sendLabel     = "[ %s ]"
)

// InputPanel is the draft editor below the message list: an action row
// with the send button and a bordered textarea.
type InputPanel struct {
	TextArea     textarea.Model
	Width        int
	Height       int // textarea lines, without border
	MaxHeight    int // 50% of the chat pane
	ScreenHeight int
	Style        lipgloss.Style

	locale    Locale
	submitKey SubmitKey
}

// NewInputPanel creates the input panel. The newline bindings cover every
// Enter chord the terminal can report, so a chord that is not the submit key
// inserts a line break.
func NewInputPanel(width int, locale Locale, submitKey SubmitKey) InputPanel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetWidth(width - 2)
	ta.SetHeight(inputMinLines)

	ta.KeyMap = textarea.KeyMap{
		CharacterBackward:          key.NewBinding(key.WithKeys("left")),
		CharacterForward:           key.NewBinding(key.WithKeys("right")),
		DeleteAfterCursor:          key.NewBinding(key.WithKeys("ctrl+k")),
		DeleteBeforeCursor:         key.NewBinding(key.WithKeys("ctrl+u")),
		DeleteCharacterBackward:    key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		DeleteCharacterForward:     key.NewBinding(key.WithKeys("delete")),
		DeleteWordBackward:         key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace")),
		DeleteWordForward:          key.NewBinding(key.WithKeys("alt+d")),
		InsertNewline:              key.NewBinding(key.WithKeys("enter", "ctrl+m", "ctrl+j", "alt+enter")),
		LineEnd:                    key.NewBinding(key.WithKeys("end", "ctrl+e")),
		LineStart:                  key.NewBinding(key.WithKeys("home", "ctrl+a")),
		LineNext:                   key.NewBinding(key.WithKeys("down")),
		LinePrevious:               key.NewBinding(key.WithKeys("up")),
		Paste:                      key.NewBinding(key.WithKeys("ctrl+v")),
		WordBackward:               key.NewBinding(key.WithKeys("alt+left", "alt+b")),
		WordForward:                key.NewBinding(key.WithKeys("alt+right", "alt+f")),
		InputBegin:                 key.NewBinding(key.WithKeys("ctrl+home")),
		InputEnd:                   key.NewBinding(key.WithKeys("ctrl+end")),
		UppercaseWordForward:       key.NewBinding(key.WithKeys("ctrl+alt+u")),
		LowercaseWordForward:       key.NewBinding(key.WithKeys("ctrl+alt+l")),
		CapitalizeWordForward:      key.NewBinding(key.WithKeys("ctrl+alt+c")),
		TransposeCharacterBackward: key.NewBinding(key.WithKeys("ctrl+t")),
	}

	p := InputPanel{
		TextArea: ta,
		Width:    width,
		Height:   inputMinLines,
		locale:   locale,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(globalTheme.InputOffBorder),
	}
	p.SetSubmitKey(submitKey)
	return p
}

// SetSubmitKey refreshes the placeholder for the active policy
func (p *InputPanel) SetSubmitKey(k SubmitKey) {
	p.submitKey = k
	p.TextArea.Placeholder = p.locale.Input(k)
}

// SetWidth updates the width of the panel
func (p *InputPanel) SetWidth(width int) {
	p.Width = width
	p.TextArea.SetWidth(width - 2)
}

// SetScreenHeight updates the available height and the max textarea height
func (p *InputPanel) SetScreenHeight(screenHeight int) {
	p.ScreenHeight = screenHeight
	p.MaxHeight = screenHeight / 2
	p.fitHeight()
}

// CalculateDesiredHeight returns the textarea height the draft needs
func (p *InputPanel) CalculateDesiredHeight() int {
	lines := strings.Count(p.TextArea.Value(), "\n") + 1
	if lines < inputMinLines {
		lines = inputMinLines
	}
	if p.MaxHeight > 0 && lines > p.MaxHeight {
		return p.MaxHeight
	}
	return lines
}

func (p *InputPanel) fitHeight() {
	p.Height = p.CalculateDesiredHeight()
	p.TextArea.SetHeight(p.Height)
}

// TotalHeight is the panel height including the action row and border
func (p InputPanel) TotalHeight() int {
	return p.Height + 3
}

// Value returns the draft
func (p InputPanel) Value() string {
	return p.TextArea.Value()
}

// SetValue replaces the draft
func (p *InputPanel) SetValue(value string) {
	p.TextArea.SetValue(value)
	p.fitHeight()
}

// Reset clears the draft
func (p *InputPanel) Reset() {
	p.TextArea.Reset()
	p.fitHeight()
}

// Focus gives focus to the textarea
func (p *InputPanel) Focus() tea.Cmd {
	p.Style = p.Style.BorderForeground(globalTheme.InputOnBorder)
	return p.TextArea.Focus()
}

// Blur removes focus from the textarea
func (p *InputPanel) Blur() {
	p.Style = p.Style.BorderForeground(globalTheme.InputOffBorder)
	p.TextArea.Blur()
}

// Focused reports whether the textarea has focus
func (p InputPanel) Focused() bool {
	return p.TextArea.Focused()
}

// InSendButton reports whether column x of the action row is on the send button
func (p InputPanel) InSendButton(x int) bool {
	_, start, end := p.actionRow()
	return x >= start && x < end
}

// Update forwards a message to the textarea
func (p InputPanel) Update(msg tea.Msg) (InputPanel, tea.Cmd) {
	var cmd tea.Cmd
	p.TextArea, cmd = p.TextArea.Update(msg)
	p.fitHeight()
	return p, cmd
}

// actionRow renders the command hint and the send button, returning the
// send button columns (end exclusive).
func (p InputPanel) actionRow() (string, int, int) {
	hint := globalTheme.ActionItem.Render(p.locale.Command)

	send := fmt.Sprintf(sendLabel, p.locale.Send)
	sendStyle := globalTheme.ActionItem
	if p.Value() != "" {
		sendStyle = globalTheme.ActionActive
	}
	sendView := sendStyle.Render(send)

	gap := p.Width - lipgloss.Width(hint) - lipgloss.Width(sendView)
	if gap < 1 {
		gap = 1
	}
	start := lipgloss.Width(hint) + gap
	return hint + strings.Repeat(" ", gap) + sendView, start, start + lipgloss.Width(sendView)
}

// View renders the action row and the textarea
func (p InputPanel) View() string {
	row, _, _ := p.actionRow()
	box := p.Style.Width(p.Width - 2).Render(p.TextArea.View())
	return lipgloss.JoinVertical(lipgloss.Left, row, box)
}
