package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Focus modes shown on the left of the status line
const (
	ModeInsert  = "INSERT"
	ModeList    = "LIST"
	ModeSidebar = "SIDEBAR"
	ModeCommand = "COMMAND"
	ModeHelp    = "HELP"
)

// StatusComponent represents the status bar component
type StatusComponent struct {
	Provider  string
	Model     string
	Connected bool
	HasError  bool
	Width     int
	Style     lipgloss.Style
	mode      string
	submitKey SubmitKey
	streaming bool
	messages  int
	typing    string
}

// NewStatusComponent creates a new status component
func NewStatusComponent(width int) StatusComponent {
	return StatusComponent{
		Width: width,
		Style: lipgloss.NewStyle().
			Foreground(globalTheme.TextColor),
		mode:      ModeInsert,
		submitKey: SubmitKeyEnter,
		typing:    localeEN.Typing,
	}
}

// SetProvider sets the current provider and model
func (s *StatusComponent) SetProvider(provider, model string, connected bool) {
	s.Provider = provider
	s.Model = model
	s.Connected = connected
}

// SetError marks the status component as having an error
func (s *StatusComponent) SetError() {
	s.HasError = true
}

// ClearError clears the error state
func (s *StatusComponent) ClearError() {
	s.HasError = false
}

// SetConversation updates the per-conversation indicators
func (s *StatusComponent) SetConversation(messages int, streaming bool, submitKey SubmitKey) {
	s.messages = messages
	s.streaming = streaming
	s.submitKey = submitKey
}

// SetTypingLabel sets the localized streaming indicator
func (s *StatusComponent) SetTypingLabel(label string) {
	s.typing = label
}

func (s *StatusComponent) SetMode(mode string) {
	s.mode = strings.ToUpper(mode)
}

// SetWidth updates the width of the status component
func (s *StatusComponent) SetWidth(width int) {
	s.Width = width
}

// getStatusIcon returns the appropriate status icon based on connection and error state
func (s StatusComponent) getStatusIcon() string {
	if s.HasError {
		return "❌"
	}
	if s.Connected {
		return "✅"
	}
	return "🔌"
}

// shortenProviderModel shortens provider and model names for display
func shortenProviderModel(provider, model string) string {
	switch strings.ToLower(provider) {
	case "anthropic":
		provider = "Claude"
	case "openai":
		provider = "GPT"
	case "google", "googleai":
		provider = "Gemini"
	case "ollama":
		provider = "Ollama"
	case "fake":
		provider = "Fake"
	}

	modelShort := model
	lowerModel := strings.ToLower(model)
	switch {
	case strings.Contains(lowerModel, "claude"):
		parts := strings.FieldsFunc(lowerModel, func(r rune) bool {
			return r == '-' || r == ' ' || r == '_'
		})
		if len(parts) > 1 {
			// "claude-3-5-haiku-20240307" -> "3.5-Haiku"
			var shortParts []string
			for _, part := range parts[1:] {
				// date suffixes like "20240307"
				if len(part) == 8 && strings.ContainsAny(part, "0123456789") {
					continue
				}
				if part == "latest" {
					continue
				}
				shortParts = append(shortParts, part)
			}
			if len(shortParts) > 0 {
				result := strings.Join(shortParts, "-")
				result = strings.ReplaceAll(result, "-5-", ".5-")
				result = strings.ReplaceAll(result, "haiku", "Haiku")
				result = strings.ReplaceAll(result, "sonnet", "Sonnet")
				result = strings.ReplaceAll(result, "opus", "Opus")
				modelShort = result
			}
		}
	case strings.Contains(lowerModel, "gpt"):
		if strings.Contains(model, "4o") {
			modelShort = "4o"
			if strings.Contains(model, "mini") {
				modelShort = "4o-mini"
			}
		} else if strings.Contains(model, "4") {
			if strings.Contains(model, "turbo") {
				modelShort = "4T"
			} else {
				modelShort = "4"
			}
		} else if strings.Contains(model, "3.5") {
			modelShort = "3.5"
		}
	case strings.Contains(lowerModel, "gemini"):
		if strings.Contains(model, "pro") {
			modelShort = "Pro"
		} else if strings.Contains(model, "flash") {
			modelShort = "Flash"
		}
	}

	if modelShort == "" {
		return provider
	}
	return fmt.Sprintf("%s-%s", provider, modelShort)
}

// View renders the status component
func (s StatusComponent) View() string {
	leftSection := s.renderLeftSection()
	middleSection := s.renderMiddleSection()
	rightSection := s.renderRightSection()

	leftWidth := lipgloss.Width(leftSection)
	rightWidth := lipgloss.Width(rightSection)
	middleWidth := lipgloss.Width(middleSection)

	totalContentWidth := leftWidth + middleWidth + rightWidth
	availableSpace := s.Width

	if totalContentWidth > availableSpace {
		if leftWidth+rightWidth > availableSpace {
			maxRightWidth := availableSpace - leftWidth - 3
			if maxRightWidth > 0 {
				rightSection = s.truncateString(rightSection, maxRightWidth)
			} else {
				rightSection = ""
			}
		}
		middleSection = ""
	}

	leftWidth = lipgloss.Width(leftSection)
	rightWidth = lipgloss.Width(rightSection)
	middleWidth = lipgloss.Width(middleSection)

	var statusLine string
	if middleSection != "" {
		totalContentWidth = leftWidth + middleWidth + rightWidth
		if totalContentWidth < availableSpace {
			leftSpacing := (availableSpace - totalContentWidth) / 2
			rightSpacing := availableSpace - totalContentWidth - leftSpacing
			statusLine = leftSection + strings.Repeat(" ", leftSpacing) + middleSection + strings.Repeat(" ", rightSpacing) + rightSection
		} else {
			statusLine = leftSection + " " + middleSection + " " + rightSection
		}
	} else {
		spacing := availableSpace - leftWidth - rightWidth
		if spacing < 0 {
			spacing = 0
		}
		statusLine = leftSection + strings.Repeat(" ", spacing) + rightSection
	}

	return s.Style.
		Width(s.Width).
		Render(statusLine)
}

// renderLeftSection renders the focus mode and the submit key
func (s StatusComponent) renderLeftSection() string {
	mode := lipgloss.NewStyle().Bold(true).Foreground(globalTheme.Warning).Render(s.mode)
	return fmt.Sprintf(" %s ⏎ %s", mode, s.submitKey.Label())
}

// renderMiddleSection renders the message count or the streaming indicator
func (s StatusComponent) renderMiddleSection() string {
	if s.streaming {
		return lipgloss.NewStyle().Foreground(globalTheme.Warning).Render("⏳ " + s.typing)
	}
	if s.messages == 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(globalTheme.TextColor).Render(fmt.Sprintf("💬 %d", s.messages))
}

// renderRightSection renders the right section with provider info
func (s StatusComponent) renderRightSection() string {
	providerModel := shortenProviderModel(s.Provider, s.Model)
	providerStyle := lipgloss.NewStyle().Foreground(globalTheme.TextColor)
	return fmt.Sprintf("%s %s ", providerStyle.Render(providerModel), s.getStatusIcon())
}

// truncateString truncates a string to fit within maxWidth, adding "..." if needed
func (s StatusComponent) truncateString(str string, maxWidth int) string {
	if lipgloss.Width(str) <= maxWidth {
		return str
	}
	if maxWidth <= 3 {
		return "..."
	}

	left, right := 0, len(str)
	for left < right {
		mid := (left + right + 1) / 2
		candidate := str[:mid] + "..."
		if lipgloss.Width(candidate) <= maxWidth {
			left = mid
		} else {
			right = mid - 1
		}
	}
	if left == 0 {
		return "..."
	}
	return str[:left] + "..."
}
