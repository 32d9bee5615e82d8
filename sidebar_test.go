package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSidebar returns a sidebar over two conversations, "older" and
// "newer", with "newer" current.
func newTestSidebar(t *testing.T) (*Sidebar, *AppStore) {
	t.Helper()
	store := newTestAppStore(t, StoreOptions{ShowSideBar: true})
	store.RequestChat("older")
	store.Wait()
	store.NewSession()
	store.RequestChat("newer")
	store.Wait()

	sb := NewSidebar(store, localeEN)
	sb.SetSize(30, 10)
	return sb, store
}

func TestSidebarWidth(t *testing.T) {
	assert.Equal(t, 20, sidebarWidth(60))
	assert.Equal(t, maxSidebarWidth, sidebarWidth(300))
}

func TestSidebarFocusSelectsCurrent(t *testing.T) {
	sb, store := newTestSidebar(t)
	store.UpdateSessionID(store.Sessions()[1].ID)

	sb.Focus()

	assert.True(t, sb.Focused())
	assert.Equal(t, 1, sb.selected)
}

func TestSidebarNavigateAndOpen(t *testing.T) {
	sb, store := newTestSidebar(t)
	sb.Focus()
	require.Equal(t, 0, sb.selected)

	sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	sb.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, sb.selected, "selection stops at the last session")
	sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})

	cmd := sb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, sessionSwitchedMsg{}, cmd())

	current := store.CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, "older", current.Topic)
	assert.False(t, store.ShowSideBar())
	assert.False(t, sb.Focused())
}

func TestSidebarNewSession(t *testing.T) {
	sb, store := newTestSidebar(t)
	sb.Focus()
	before := store.CurrentSessionID()

	cmd := sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	require.NotNil(t, cmd)
	assert.Equal(t, sessionSwitchedMsg{}, cmd())
	assert.NotEqual(t, before, store.CurrentSessionID())
	assert.Empty(t, store.Messages())
}

func TestSidebarDeleteSession(t *testing.T) {
	sb, store := newTestSidebar(t)
	sb.Focus()

	cmd := sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	require.NotNil(t, cmd)
	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "older", sessions[0].Topic)
	assert.Equal(t, sessions[0].ID, store.CurrentSessionID())
	assert.Len(t, sb.list.Items, 1)
}

func TestSidebarClose(t *testing.T) {
	sb, store := newTestSidebar(t)
	sb.Focus()

	cmd := sb.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, sidebarClosedMsg{}, cmd())
	assert.False(t, store.ShowSideBar())
	assert.False(t, sb.Focused())
}

func TestSidebarClick(t *testing.T) {
	sb, store := newTestSidebar(t)
	sb.Reload()

	// row 0 is the title
	assert.Nil(t, sb.Update(tea.MouseMsg{Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	// releases are ignored
	assert.Nil(t, sb.Update(tea.MouseMsg{Y: 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}))

	cmd := sb.Update(tea.MouseMsg{Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.NotNil(t, cmd)
	assert.Equal(t, "older", store.CurrentSession().Topic)
}

func TestSidebarView(t *testing.T) {
	sb, _ := newTestSidebar(t)
	sb.Reload()

	view := sb.View()

	assert.Contains(t, view, localeEN.Sessions)
	assert.Contains(t, view, "● newer 2")
	assert.Contains(t, view, "older 2")
	assert.Contains(t, view, localeEN.NewSession)
}

func TestSidebarViewEmpty(t *testing.T) {
	store := newTestAppStore(t, StoreOptions{})
	sb := NewSidebar(&emptyLister{AppStore: store}, localeEN)
	sb.SetSize(30, 10)
	sb.Reload()

	assert.Contains(t, sb.View(), localeEN.EmptySidebar)
	assert.Nil(t, sb.Update(tea.KeyMsg{Type: tea.KeyEnter}))
}

type emptyLister struct {
	*AppStore
}

func (emptyLister) Sessions() []ChatSession { return nil }
