package main

import "github.com/charmbracelet/lipgloss"

// globalTheme is the application-wide theme instance
var globalTheme *Theme

// Theme defines the colors and styles for the UI.
type Theme struct {
	// Terminal7 color scheme
	PromptBorder   lipgloss.Color
	ChatBorder     lipgloss.Color
	TextColor      lipgloss.Color
	Warning        lipgloss.Color
	Error          lipgloss.Color
	MutedText      lipgloss.Color
	PaneBackground lipgloss.Color
	DarkBorder     lipgloss.Color

	// Input focus indicators
	InputOnBorder  lipgloss.Color
	InputOffBorder lipgloss.Color

	// Header
	Title    lipgloss.Style
	SubTitle lipgloss.Style

	// Messages
	UserName      lipgloss.Style
	AssistantName lipgloss.Style
	UserBubble    lipgloss.Style
	Bubble        lipgloss.Style
	ActionItem    lipgloss.Style
	ActionActive  lipgloss.Style
	Status        lipgloss.Style
	Date          lipgloss.Style

	// Sidebar
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	// Toasts
	ToastInfo  lipgloss.Style
	ToastError lipgloss.Style
}

// NewTheme creates and returns a new Theme with Terminal7 colors.
// It also sets the global theme instance.
func NewTheme() *Theme {
	promptBorder := lipgloss.Color("#F952F9")
	chatBorder := lipgloss.Color("#F4DB53")
	textColor := lipgloss.Color("#01FAFA")
	warning := lipgloss.Color("#F4DB53")
	errorColor := lipgloss.Color("#F54545")
	muted := lipgloss.Color("#7A7A7A")
	paneBackground := lipgloss.Color("#000000")
	darkBorder := lipgloss.Color("#373702")

	theme := &Theme{
		PromptBorder:   promptBorder,
		ChatBorder:     chatBorder,
		TextColor:      textColor,
		Warning:        warning,
		Error:          errorColor,
		MutedText:      muted,
		PaneBackground: paneBackground,
		DarkBorder:     darkBorder,

		InputOnBorder:  chatBorder,
		InputOffBorder: darkBorder,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(promptBorder),
		SubTitle: lipgloss.NewStyle().Foreground(muted),

		UserName:      lipgloss.NewStyle().Bold(true).Foreground(promptBorder),
		AssistantName: lipgloss.NewStyle().Bold(true).Foreground(textColor),
		UserBubble: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(promptBorder).
			Padding(0, 1),
		Bubble: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(chatBorder).
			Padding(0, 1),
		ActionItem:   lipgloss.NewStyle().Foreground(muted),
		ActionActive: lipgloss.NewStyle().Foreground(warning).Bold(true),
		Status:       lipgloss.NewStyle().Foreground(warning).Italic(true),
		Date:         lipgloss.NewStyle().Foreground(muted),

		SidebarItem:     lipgloss.NewStyle().Foreground(textColor).PaddingLeft(1),
		SidebarSelected: lipgloss.NewStyle().Foreground(paneBackground).Background(chatBorder).PaddingLeft(1),

		ToastInfo:  lipgloss.NewStyle().Foreground(textColor),
		ToastError: lipgloss.NewStyle().Foreground(errorColor).Bold(true),
	}

	globalTheme = theme

	return theme
}
