package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const maxSidebarWidth = 32

// sessionSwitchedMsg tells the app the sidebar changed the current session
type sessionSwitchedMsg struct{}

// sidebarClosedMsg tells the app to hand the focus back to the chat view
type sidebarClosedMsg struct{}

type sidebarStore interface {
	ChatStore
	SessionLister
}

type sidebarKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	New    key.Binding
	Delete key.Binding
	Close  key.Binding
}

func defaultSidebarKeyMap() sidebarKeyMap {
	return sidebarKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Open:   key.NewBinding(key.WithKeys("enter")),
		New:    key.NewBinding(key.WithKeys("n")),
		Delete: key.NewBinding(key.WithKeys("x", "delete")),
		Close:  key.NewBinding(key.WithKeys("esc", "ctrl+b")),
	}
}

// Sidebar lists the conversations of the store
type Sidebar struct {
	store    sidebarStore
	locale   Locale
	keys     sidebarKeyMap
	list     SelectWindow[ChatSession]
	selected int
	offset   int
	focused  bool
}

// NewSidebar creates the session list
func NewSidebar(store sidebarStore, locale Locale) *Sidebar {
	return &Sidebar{
		store:  store,
		locale: locale,
		keys:   defaultSidebarKeyMap(),
		list:   NewSelectWindow[ChatSession](),
	}
}

// sidebarWidth returns the sidebar width for a terminal width
func sidebarWidth(total int) int {
	w := total / 3
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	return w
}

// SetSize updates the dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.list.SetSize(width, height)
	s.selected, s.offset = s.list.Clamp(s.selected, s.offset)
}

// Width is the rendered width including the separator
func (s *Sidebar) Width() int {
	return s.list.Width
}

// Focus gives the keyboard to the sidebar and selects the current session
func (s *Sidebar) Focus() {
	s.focused = true
	s.Reload()
	current := s.store.CurrentSessionID()
	for i, session := range s.list.Items {
		if session.ID == current {
			s.selected, s.offset = s.list.Clamp(i, s.offset)
			break
		}
	}
}

// Blur releases the keyboard
func (s *Sidebar) Blur() {
	s.focused = false
}

// Focused reports whether the sidebar has the keyboard
func (s *Sidebar) Focused() bool {
	return s.focused
}

// Reload re-reads the session list
func (s *Sidebar) Reload() {
	s.list.SetItems(s.store.Sessions())
	s.selected, s.offset = s.list.Clamp(s.selected, s.offset)
}

func (s *Sidebar) open(index int) tea.Cmd {
	if index < 0 || index >= len(s.list.Items) {
		return nil
	}
	id := s.list.Items[index].ID
	slog.Debug("session selected", "id", id)
	s.store.UpdateSessionID(id)
	s.store.SetShowSideBar(false)
	s.focused = false
	return func() tea.Msg { return sessionSwitchedMsg{} }
}

func (s *Sidebar) close() tea.Cmd {
	s.store.SetShowSideBar(false)
	s.focused = false
	return func() tea.Msg { return sidebarClosedMsg{} }
}

// Update handles keys and clicks while the sidebar is shown
func (s *Sidebar) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Up):
			s.selected, s.offset = s.list.Clamp(s.selected-1, s.offset)
		case key.Matches(msg, s.keys.Down):
			s.selected, s.offset = s.list.Clamp(s.selected+1, s.offset)
		case key.Matches(msg, s.keys.Open):
			return s.open(s.selected)
		case key.Matches(msg, s.keys.New):
			s.store.NewSession()
			s.store.SetShowSideBar(false)
			s.focused = false
			return func() tea.Msg { return sessionSwitchedMsg{} }
		case key.Matches(msg, s.keys.Delete):
			if s.selected < len(s.list.Items) {
				id := s.list.Items[s.selected].ID
				if err := s.store.DeleteSession(id); err != nil {
					slog.Error("failed to delete session", "id", id, "error", err)
					return toastCmd(err.Error(), "error")
				}
				s.Reload()
				return func() tea.Msg { return sessionSwitchedMsg{} }
			}
		case key.Matches(msg, s.keys.Close):
			return s.close()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		if index, ok := s.list.IndexAt(msg.Y, s.offset); ok {
			return s.open(index)
		}
	}
	return nil
}

// View renders the session list with a separator on the right
func (s *Sidebar) View() string {
	inner := s.list.Width - 1
	current := s.store.CurrentSessionID()

	title := globalTheme.Title.Render(s.locale.Sessions)
	footer := globalTheme.SubTitle.Render(truncate.StringWithTail(s.locale.NewSession, uint(inner), "…"))

	content := s.list.Render(s.selected, s.offset, RenderConfig[ChatSession]{
		Title:  title,
		Footer: footer,
		OnEmpty: func(sb *strings.Builder) {
			sb.WriteString(globalTheme.SubTitle.Render(s.locale.EmptySidebar))
			sb.WriteString("\n")
		},
		RenderItem: func(i int, session ChatSession, isSelected bool, sb *strings.Builder) {
			topic := session.Topic
			if topic == "" {
				topic = s.locale.NewTopic
			}
			bullet := "  "
			if session.ID == current {
				bullet = "● "
			}
			count := fmt.Sprintf(" %d", session.MessageCount)
			room := inner - 1 - lipgloss.Width(bullet) - len(count)
			if room < 1 {
				room = 1
			}
			line := bullet + truncate.StringWithTail(topic, uint(room), "…") + count

			style := globalTheme.SidebarItem
			if isSelected && s.focused {
				style = globalTheme.SidebarSelected
			}
			sb.WriteString(style.Width(inner).Render(line))
			sb.WriteString("\n")
		},
	})

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(globalTheme.DarkBorder).
		Width(inner).
		Height(s.list.Height)
	return border.Render(content)
}
