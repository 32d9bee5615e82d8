package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	headerHeight           = 3
	defaultAutoScrollDelay = 500 * time.Millisecond
	userAvatar             = "🧑"
	assistantAvatar        = "🤖"
	selectedMarker         = "▌ "
	messageDateLayout      = "2006-01-02 15:04:05"
)

type (
	// storeChangedMsg is sent by the store subscription on every change
	storeChangedMsg struct{}
	// autoScrollMsg fires after the auto-scroll delay; gen is the view
	// lifetime that scheduled it
	autoScrollMsg struct{ gen int }
	// toastMsg asks the command line to show a notification
	toastMsg struct {
		message string
		kind    string
	}
	// sidebarOpenedMsg tells the app the header asked for the session list
	sidebarOpenedMsg struct{}
)

func toastCmd(message, kind string) tea.Cmd {
	return func() tea.Msg { return toastMsg{message: message, kind: kind} }
}

type chatFocus int

const (
	focusInput chatFocus = iota
	focusList
)

type messageAction string

const (
	actionStop   messageAction = "stop"
	actionRetry  messageAction = "retry"
	actionDelete messageAction = "delete"
	actionCopy   messageAction = "copy"
)

// actionHit is a clickable action label in the message list
type actionHit struct {
	line       int
	start, end int
	action     messageAction
	index      int
}

type lineSpan struct{ start, end int }

type renderedBody struct {
	content string
	width   int
	out     string
}

type chatKeyMap struct {
	Send       key.Binding
	FocusList  key.Binding
	FocusInput key.Binding
	Up         key.Binding
	Down       key.Binding
	Stop       key.Binding
	Retry      key.Binding
	Delete     key.Binding
	Copy       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
}

func defaultChatKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
		FocusList:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "message list")),
		FocusInput: key.NewBinding(key.WithKeys("i", "enter", "tab"), key.WithHelp("i", "compose")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous message")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next message")),
		Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Retry:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Copy:       key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c/y", "copy")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d")),
		Top:        key.NewBinding(key.WithKeys("home", "g")),
		Bottom:     key.NewBinding(key.WithKeys("end", "G")),
	}
}

// ChatViewOptions holds the collaborators of a ChatView
type ChatViewOptions struct {
	Locale      Locale
	Clipboard   Clipboard
	Platform    Platform
	Renderer    MarkdownRenderer
	ScrollDelay time.Duration
	ContextMenu bool
}

// ChatView renders the current conversation of a ChatStore: a header with
// the topic, the message list and the input panel. It owns only the draft
// and the auto-scroll flag; everything else is re-read from the store.
type ChatView struct {
	store       ChatStore
	locale      Locale
	clipboard   Clipboard
	platform    Platform
	renderer    MarkdownRenderer
	keys        chatKeyMap
	scrollDelay time.Duration
	contextMenu bool

	input    InputPanel
	viewport viewport.Model
	spinner  spinner.Model

	width, height int
	focus         chatFocus
	selected      int
	autoScroll    bool
	generation    int
	mounted       bool
	spinning      bool

	// last snapshot and its layout
	messages     []ChatMessage
	spans        []lineSpan
	actions      []actionHit
	sentinelLine int
	bodies       map[string]renderedBody
}

// NewChatView creates a chat view bound to store
func NewChatView(store ChatStore, opts ChatViewOptions) *ChatView {
	if globalTheme == nil {
		NewTheme()
	}
	if opts.Locale.SubTitle == nil {
		opts.Locale = localeEN
	}
	if opts.Renderer == nil {
		opts.Renderer = plainRenderer{}
	}
	if opts.ScrollDelay <= 0 {
		opts.ScrollDelay = defaultAutoScrollDelay
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(globalTheme.Warning)

	return &ChatView{
		store:        store,
		locale:       opts.Locale,
		clipboard:    opts.Clipboard,
		platform:     opts.Platform,
		renderer:     opts.Renderer,
		keys:         defaultChatKeyMap(),
		scrollDelay:  opts.ScrollDelay,
		contextMenu:  opts.ContextMenu,
		input:        NewInputPanel(80, opts.Locale, store.SubmitKey()),
		viewport:     viewport.New(80, 10),
		spinner:      sp,
		width:        80,
		height:       headerHeight + 10 + inputMinLines + 3,
		focus:        focusList,
		selected:     -1,
		sentinelLine: -1,
		bodies:       make(map[string]renderedBody),
	}
}

// Mount starts a lifetime of the view. The input takes focus when the
// session list is visible.
func (v *ChatView) Mount() tea.Cmd {
	v.generation++
	v.mounted = true
	v.selected = -1

	var cmds []tea.Cmd
	if v.store.ShowSideBar() {
		cmds = append(cmds, v.FocusInput())
	} else {
		v.Blur()
	}
	cmds = append(cmds, v.Refresh())
	return tea.Batch(cmds...)
}

// Unmount ends the lifetime; scroll ticks scheduled before are ignored
func (v *ChatView) Unmount() {
	v.mounted = false
	v.generation++
}

// SessionChanged starts a new lifetime for another conversation, keeping
// the focus and the draft.
func (v *ChatView) SessionChanged() tea.Cmd {
	v.generation++
	v.selected = -1
	v.viewport.GotoTop()
	return v.Refresh()
}

// SetSize updates the width & height of the chat view
func (v *ChatView) SetSize(width, height int) {
	if width < 10 {
		width = 10
	}
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.input.SetScreenHeight(height - headerHeight)
	v.layout()
}

func (v *ChatView) layout() {
	vpHeight := v.height - headerHeight - v.input.TotalHeight()
	if vpHeight < 1 {
		vpHeight = 1
	}
	v.viewport.Width = v.width
	v.viewport.Height = vpHeight
	v.render()
}

// FocusInput moves the keyboard focus to the draft and enables auto-scroll
func (v *ChatView) FocusInput() tea.Cmd {
	v.focus = focusInput
	v.autoScroll = true
	return v.input.Focus()
}

// Blur moves the focus away from the draft and disables auto-scroll
func (v *ChatView) Blur() {
	v.focus = focusList
	v.autoScroll = false
	v.input.Blur()
}

// InputFocused reports whether keystrokes go to the draft
func (v *ChatView) InputFocused() bool {
	return v.focus == focusInput
}

// Draft returns the current draft text
func (v *ChatView) Draft() string {
	return v.input.Value()
}

// SetDraft replaces the draft text
func (v *ChatView) SetDraft(text string) {
	v.input.SetValue(text)
	v.layout()
}

// Refresh re-reads the store snapshot, re-renders and arms the auto-scroll
func (v *ChatView) Refresh() tea.Cmd {
	v.input.SetSubmitKey(v.store.SubmitKey())
	v.render()

	cmds := []tea.Cmd{v.scheduleAutoScroll()}
	if v.needsSpinner() && !v.spinning {
		v.spinning = true
		cmds = append(cmds, v.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (v *ChatView) scheduleAutoScroll() tea.Cmd {
	gen := v.generation
	return tea.Tick(v.scrollDelay, func(time.Time) tea.Msg {
		return autoScrollMsg{gen: gen}
	})
}

func (v *ChatView) handleAutoScroll(msg autoScrollMsg) {
	if msg.gen != v.generation || !v.mounted {
		return
	}
	if v.sentinelLine < 0 || v.platform.SmoothScrollUnreliable() || !v.autoScroll {
		return
	}
	v.scrollToLine(v.sentinelLine)
}

func (v *ChatView) scrollToLine(line int) {
	switch {
	case line < v.viewport.YOffset:
		v.viewport.SetYOffset(line)
	case line >= v.viewport.YOffset+v.viewport.Height:
		v.viewport.SetYOffset(line - v.viewport.Height + 1)
	}
}

// needsSpinner reports whether an answer is still waiting for its first
// chunk. Empty answers that were stopped keep a static indicator.
func (v *ChatView) needsSpinner() bool {
	for _, m := range v.messages {
		if !m.IsUser() && m.Content == "" && m.IsStreaming {
			return true
		}
	}
	return false
}

// Update handles messages for the chat view
func (v *ChatView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case storeChangedMsg:
		return v.Refresh()

	case autoScrollMsg:
		v.handleAutoScroll(msg)
		return nil

	case spinner.TickMsg:
		if !v.needsSpinner() {
			v.spinning = false
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.render()
		return cmd

	case tea.KeyMsg:
		if v.focus == focusInput {
			return v.handleInputKey(msg)
		}
		return v.handleListKey(msg)

	case tea.MouseMsg:
		return v.handleMouse(msg)
	}

	if v.focus == focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	return nil
}

func (v *ChatView) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Send):
		return v.OnUserSubmit()
	case key.Matches(msg, v.keys.FocusList):
		v.Blur()
		v.selectMessage(len(v.messages) - 1)
		return v.Refresh()
	}

	if handled, cmd := v.OnInputKeyDown(keyEventFromMsg(msg)); handled {
		return cmd
	}

	prevHeight := v.input.Height
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.input.Height != prevHeight {
		v.layout()
	}
	return tea.Batch(cmd, v.scheduleAutoScroll())
}

func (v *ChatView) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.FocusInput):
		return tea.Batch(v.FocusInput(), v.Refresh())
	case key.Matches(msg, v.keys.Up):
		v.selectMessage(v.selected - 1)
	case key.Matches(msg, v.keys.Down):
		v.selectMessage(v.selected + 1)
	case key.Matches(msg, v.keys.Stop):
		return v.runAction(actionStop, v.selected)
	case key.Matches(msg, v.keys.Retry):
		return v.runAction(actionRetry, v.selected)
	case key.Matches(msg, v.keys.Delete):
		return v.runAction(actionDelete, v.selected)
	case key.Matches(msg, v.keys.Copy):
		return v.runAction(actionCopy, v.selected)
	case key.Matches(msg, v.keys.PageUp):
		v.viewport.HalfPageUp()
		return nil
	case key.Matches(msg, v.keys.PageDown):
		v.viewport.HalfPageDown()
		return nil
	case key.Matches(msg, v.keys.Top):
		v.viewport.GotoTop()
		return nil
	case key.Matches(msg, v.keys.Bottom):
		v.viewport.GotoBottom()
		return nil
	default:
		return nil
	}
	return v.Refresh()
}

func (v *ChatView) selectMessage(index int) {
	if len(v.messages) == 0 {
		v.selected = -1
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(v.messages) {
		index = len(v.messages) - 1
	}
	v.selected = index
	if index < len(v.spans) {
		v.scrollToLine(v.spans[index].start)
	}
}

func (v *ChatView) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if tea.MouseEvent(msg).IsWheel() {
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return cmd
	}
	if msg.Action != tea.MouseActionPress {
		return nil
	}

	listBottom := headerHeight + v.viewport.Height
	switch {
	case msg.Y < headerHeight:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		slog.Debug("header clicked, opening session list")
		v.store.SetShowSideBar(true)
		return func() tea.Msg { return sidebarOpenedMsg{} }

	case msg.Y < listBottom:
		line := v.viewport.YOffset + msg.Y - headerHeight
		index := v.messageAt(line)
		switch msg.Button {
		case tea.MouseButtonRight:
			if !v.contextMenu || index < 0 {
				return nil
			}
			if v.OnRightClick(index) {
				return toastCmd(v.locale.Copied, "info")
			}
			return nil
		case tea.MouseButtonLeft:
			if hit, ok := v.actionAt(line, msg.X); ok {
				return v.runAction(hit.action, hit.index)
			}
			if index >= 0 {
				v.Blur()
				v.selected = index
				return v.Refresh()
			}
		}
		return nil

	default:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		if msg.Y == listBottom && v.input.InSendButton(msg.X) {
			return v.OnUserSubmit()
		}
		return tea.Batch(v.FocusInput(), v.Refresh())
	}
}

func (v *ChatView) messageAt(line int) int {
	for i, span := range v.spans {
		if line >= span.start && line < span.end {
			return i
		}
	}
	return -1
}

func (v *ChatView) actionAt(line, x int) (actionHit, bool) {
	for _, hit := range v.actions {
		if hit.line == line && x >= hit.start && x < hit.end {
			return hit, true
		}
	}
	return actionHit{}, false
}

// OnUserSubmit sends a non-empty draft to the store, clears it and keeps
// the focus on the input. The draft is kept while the session is loading.
func (v *ChatView) OnUserSubmit() tea.Cmd {
	text := v.input.Value()
	if len(text) == 0 {
		return nil
	}
	if v.store.Messages() == nil {
		return nil
	}

	v.store.RequestChat(text)
	v.input.Reset()
	v.layout()
	return v.FocusInput()
}

// OnInputKeyDown submits when ev matches the store's submit key. The first
// result reports whether the event was consumed; unconsumed events belong
// to the textarea.
func (v *ChatView) OnInputKeyDown(ev KeyEvent) (bool, tea.Cmd) {
	if ev.Composing {
		return false, nil
	}
	if !ShouldSubmit(ev, v.store.SubmitKey()) {
		return false, nil
	}
	return true, v.OnUserSubmit()
}

// OnRightClick puts a user message back into the draft and copies the
// content. It reports whether the click was handled.
func (v *ChatView) OnRightClick(index int) bool {
	if index < 0 || index >= len(v.messages) {
		return false
	}
	m := v.messages[index]
	if m.IsUser() {
		v.SetDraft(m.Content)
	}
	return selectOrCopy(v.clipboard, m.Content)
}

// Stop cancels the streaming response
func (v *ChatView) Stop() {
	v.store.StopStreaming()
}

// Retry asks the store to regenerate the answer at index. It reports
// false when the store has no retry support.
func (v *ChatView) Retry(index int) bool {
	r, ok := v.store.(MessageRetrier)
	if !ok {
		return false
	}
	r.Retry(index)
	return true
}

// Delete asks the store to drop the message at index. It reports false
// when the store has no delete support.
func (v *ChatView) Delete(index int) bool {
	d, ok := v.store.(MessageDeleter)
	if !ok {
		return false
	}
	d.DeleteMessage(index)
	return true
}

// Copy puts the exact content of the message at index on the clipboard
func (v *ChatView) Copy(index int) tea.Cmd {
	if index < 0 || index >= len(v.messages) {
		return nil
	}
	if v.clipboard == nil {
		return toastCmd(v.locale.CopyFailed, "error")
	}
	if err := v.clipboard.WriteAll(v.messages[index].Content); err != nil {
		slog.Warn("copy to clipboard failed", "error", err)
		return toastCmd(v.locale.CopyFailed, "error")
	}
	return toastCmd(v.locale.Copied, "info")
}

func (v *ChatView) runAction(action messageAction, index int) tea.Cmd {
	if index < 0 || index >= len(v.messages) {
		return nil
	}
	m := v.messages[index]
	if m.IsUser() {
		return nil
	}

	slog.Debug("message action", "action", action, "index", index)
	switch action {
	case actionStop:
		if m.IsStreaming {
			v.Stop()
		}
	case actionRetry:
		if !m.IsStreaming {
			v.Retry(index)
		}
	case actionDelete:
		if !m.IsStreaming {
			v.Delete(index)
		}
	case actionCopy:
		if !m.IsStreaming {
			return v.Copy(index)
		}
	}
	return nil
}

// actionsFor lists the action bar of an assistant message
func actionsFor(m ChatMessage) []messageAction {
	if m.IsUser() {
		return nil
	}
	if m.IsStreaming {
		return []messageAction{actionStop}
	}
	return []messageAction{actionRetry, actionDelete, actionCopy}
}

func (v *ChatView) actionLabel(a messageAction) string {
	switch a {
	case actionStop:
		return v.locale.Stop
	case actionRetry:
		return v.locale.Retry
	case actionDelete:
		return v.locale.Delete
	default:
		return v.locale.Copy
	}
}

// render rebuilds the message list content from the store snapshot
func (v *ChatView) render() {
	msgs := v.store.Messages()
	v.messages = msgs
	v.spans = v.spans[:0]
	v.actions = v.actions[:0]
	v.sentinelLine = -1

	if msgs == nil {
		v.viewport.SetContent(globalTheme.Status.Render(v.locale.Loading))
		return
	}
	if v.selected >= len(msgs) {
		v.selected = len(msgs) - 1
	}

	var lines []string
	for i, m := range msgs {
		start := len(lines)
		lines = append(lines, v.renderMessage(i, m, start)...)
		v.spans = append(v.spans, lineSpan{start: start, end: len(lines)})
		lines = append(lines, "")
	}

	// the sentinel is a blank line after the last message
	v.sentinelLine = len(lines)
	lines = append(lines, "")

	v.viewport.SetContent(strings.Join(lines, "\n"))
	v.pruneBodies(msgs)
}

func (v *ChatView) renderMessage(index int, m ChatMessage, firstLine int) []string {
	marker := "  "
	if v.focus == focusList && index == v.selected {
		marker = globalTheme.ActionActive.Render(selectedMarker)
	}
	bodyWidth := v.width - 6

	var body string
	switch {
	case !m.IsUser() && m.Content == "" && m.IsStreaming:
		body = v.spinner.View()
	case !m.IsUser() && m.Content == "":
		body = v.spinner.Style.Render(v.spinner.Spinner.Frames[0])
	default:
		body = v.renderBody(m, bodyWidth)
	}

	if m.IsUser() {
		label := globalTheme.UserName.Render(v.locale.User) + " " + userAvatar
		bubble := globalTheme.UserBubble.Render(body)
		inner := v.width - lipgloss.Width(marker)
		out := []string{marker + lipgloss.PlaceHorizontal(inner, lipgloss.Right, label)}
		for _, l := range strings.Split(bubble, "\n") {
			out = append(out, "  "+lipgloss.PlaceHorizontal(inner, lipgloss.Right, l))
		}
		return out
	}

	header := marker + assistantAvatar + " " + globalTheme.AssistantName.Render(v.locale.Assistant) + "  "
	col := lipgloss.Width(header)
	for i, a := range actionsFor(m) {
		if i > 0 {
			header += " "
			col++
		}
		label := "[" + v.actionLabel(a) + "]"
		width := lipgloss.Width(label)
		v.actions = append(v.actions, actionHit{
			line:   firstLine,
			start:  col,
			end:    col + width,
			action: a,
			index:  index,
		})
		header += globalTheme.ActionItem.Render(label)
		col += width
	}
	if m.IsStreaming {
		header += " " + globalTheme.Status.Render(v.locale.Typing)
	}

	out := []string{header}
	for _, l := range strings.Split(globalTheme.Bubble.Render(body), "\n") {
		out = append(out, "  "+l)
	}

	date := m.CreatedAt.Format(messageDateLayout)
	if m.ModelID != "" {
		date += " · " + m.ModelID
	}
	out = append(out, "  "+globalTheme.Date.Render(date))
	return out
}

// renderBody renders content through the markdown renderer, falling back
// to wrapped plain text so the message stays visible.
func (v *ChatView) renderBody(m ChatMessage, width int) string {
	if cached, ok := v.bodies[m.ID]; ok && cached.content == m.Content && cached.width == width {
		return cached.out
	}

	out, err := v.renderer.Render(m.Content, width)
	if err != nil {
		slog.Warn("markdown render failed", "id", m.ID, "error", err)
		out = renderPlainText(m.Content, width)
	}
	if m.ID != "" {
		v.bodies[m.ID] = renderedBody{content: m.Content, width: width, out: out}
	}
	return out
}

func (v *ChatView) pruneBodies(msgs []ChatMessage) {
	if len(v.bodies) <= len(msgs) {
		return
	}
	keep := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		keep[m.ID] = true
	}
	for id := range v.bodies {
		if !keep[id] {
			delete(v.bodies, id)
		}
	}
}

func (v *ChatView) headerView() string {
	topic := v.locale.NewTopic
	count := len(v.messages)
	if session := v.store.CurrentSession(); session != nil {
		if session.Topic != "" {
			topic = session.Topic
		}
		if v.messages == nil {
			count = session.MessageCount
		}
	}

	menu := globalTheme.ActionItem.Render("☰ " + v.locale.ChatList)
	room := v.width - lipgloss.Width(menu) - 1
	if room < 1 {
		room = 1
	}
	title := globalTheme.Title.Render(truncate.StringWithTail(topic, uint(room), "…"))
	gap := v.width - lipgloss.Width(title) - lipgloss.Width(menu)
	if gap < 1 {
		gap = 1
	}

	divider := lipgloss.NewStyle().Foreground(globalTheme.DarkBorder).Render(strings.Repeat("─", v.width))
	return lipgloss.JoinVertical(lipgloss.Left,
		title+strings.Repeat(" ", gap)+menu,
		globalTheme.SubTitle.Render(v.locale.SubTitle(count)),
		divider,
	)
}

// View renders the chat view
func (v *ChatView) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.headerView(),
		v.viewport.View(),
		v.input.View(),
	)
}
