package main

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/afittestide/chatpane/storage"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

const maxTopicRunes = 50

// ChatStore is the state the chat view reads and the actions it dispatches
type ChatStore interface {
	CurrentSession() *ChatSession
	CurrentSessionID() string
	// Messages returns nil while the current session is still loading
	Messages() []ChatMessage
	IsStreaming() bool
	SubmitKey() SubmitKey
	ShowSideBar() bool

	RequestChat(text string)
	StopStreaming()
	SetShowSideBar(show bool)
	UpdateSessionID(id string)
}

// MessageRetrier is implemented by stores that can regenerate an answer
type MessageRetrier interface {
	Retry(index int)
}

// MessageDeleter is implemented by stores that can drop a single message
type MessageDeleter interface {
	DeleteMessage(index int)
}

// SessionLister feeds the sidebar
type SessionLister interface {
	Sessions() []ChatSession
	NewSession() string
	DeleteSession(id string) error
}

// inflight tracks the response being streamed into a session
type inflight struct {
	cancel    context.CancelFunc
	messageID string
}

// AppStore is the application state behind the chat view
type AppStore struct {
	mu sync.RWMutex

	llm          llms.Model
	modelID      string
	systemPrompt string
	locale       Locale
	persist      *storage.SessionStore
	maxSessions  int

	sessions    map[string]*ChatSession
	messages    map[string][]ChatMessage
	currentID   string
	showSideBar bool
	submitKey   SubmitKey
	inflight    map[string]inflight
	lastErr     error

	subMu       sync.Mutex
	subscribers []func()

	wg  sync.WaitGroup
	now func() time.Time
}

// StoreOptions configures a new AppStore
type StoreOptions struct {
	LLM          llms.Model
	ModelID      string
	SystemPrompt string
	Locale       Locale
	Persist      *storage.SessionStore
	MaxSessions  int
	ListLimit    int
	SubmitKey    SubmitKey
	ShowSideBar  bool
}

// NewAppStore creates the store, loads the persisted session list and
// opens a fresh session.
func NewAppStore(opts StoreOptions) *AppStore {
	s := &AppStore{
		llm:          opts.LLM,
		modelID:      opts.ModelID,
		systemPrompt: opts.SystemPrompt,
		locale:       opts.Locale,
		persist:      opts.Persist,
		maxSessions:  opts.MaxSessions,
		sessions:     make(map[string]*ChatSession),
		messages:     make(map[string][]ChatMessage),
		showSideBar:  opts.ShowSideBar,
		submitKey:    opts.SubmitKey,
		inflight:     make(map[string]inflight),
		now:          time.Now,
	}
	if s.submitKey == "" {
		s.submitKey = SubmitKeyEnter
	}
	if s.locale.SubTitle == nil {
		s.locale = localeEN
	}

	if s.persist != nil {
		stored, err := s.persist.ListSessions(opts.ListLimit)
		if err != nil {
			slog.Warn("failed to list sessions", "error", err)
		}
		for _, d := range stored {
			s.sessions[d.ID] = &ChatSession{
				ID:           d.ID,
				Topic:        d.Topic,
				CreatedAt:    d.CreatedAt,
				UpdatedAt:    d.UpdatedAt,
				MessageCount: d.MessageCount,
			}
		}
		slog.Debug("loaded session list", "count", len(stored))
	}

	s.NewSession()
	return s
}

// Subscribe registers fn to be called after every state change
func (s *AppStore) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *AppStore) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// CurrentSession returns a copy of the current session metadata
func (s *AppStore) CurrentSession() *ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[s.currentID]
	if !ok {
		return nil
	}
	cp := *sess
	return &cp
}

// CurrentSessionID returns the ID of the session on screen
func (s *AppStore) CurrentSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Messages returns a copy of the current session's messages
func (s *AppStore) Messages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.messages[s.currentID]
	if !ok {
		return nil
	}
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// IsStreaming reports whether the current session has a response in flight
func (s *AppStore) IsStreaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.inflight[s.currentID]
	return ok
}

// SubmitKey returns the active submit key policy
func (s *AppStore) SubmitKey() SubmitKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitKey
}

// SetSubmitKey changes the submit key policy
func (s *AppStore) SetSubmitKey(k SubmitKey) {
	s.mu.Lock()
	s.submitKey = k
	s.mu.Unlock()
	s.notify()
}

// ShowSideBar reports whether the session list is visible
func (s *AppStore) ShowSideBar() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showSideBar
}

// SetShowSideBar shows or hides the session list
func (s *AppStore) SetShowSideBar(show bool) {
	s.mu.Lock()
	s.showSideBar = show
	s.mu.Unlock()
	s.notify()
}

// Sessions lists known sessions, most recently updated first
func (s *AppStore) Sessions() []ChatSession {
	s.mu.RLock()
	out := make([]ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// NewSession opens an empty session and makes it current
func (s *AppStore) NewSession() string {
	now := s.now()
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &ChatSession{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.messages[id] = []ChatMessage{}
	s.currentID = id
	s.mu.Unlock()

	slog.Debug("session created", "id", id)
	s.notify()
	return id
}

// UpdateSessionID switches the current session. Sessions not yet in
// memory are loaded from storage in the background; until then Messages
// returns nil.
func (s *AppStore) UpdateSessionID(id string) {
	s.mu.Lock()
	if id == s.currentID {
		s.mu.Unlock()
		return
	}
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		slog.Warn("unknown session", "id", id)
		return
	}
	s.currentID = id
	_, cached := s.messages[id]
	s.mu.Unlock()

	if !cached && s.persist != nil {
		s.wg.Add(1)
		go s.loadSession(id)
	}
	s.notify()
}

func (s *AppStore) loadSession(id string) {
	defer s.wg.Done()
	s.cacheMessages(id, s.readMessages(id))
	s.notify()
}

func (s *AppStore) readMessages(id string) []ChatMessage {
	data, err := s.persist.LoadSession(id)
	if err != nil {
		slog.Error("failed to load session", "id", id, "error", err)
		data = &storage.SessionData{ID: id}
	}
	_, msgs := fromSessionData(data)
	return msgs
}

// cacheMessages stores loaded messages unless the session was deleted or
// another load got there first.
func (s *AppStore) cacheMessages(id string, msgs []ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	if _, ok := s.messages[id]; !ok {
		s.messages[id] = msgs
	}
}

// ensureLoaded reads a stored session synchronously when its background
// load has not finished yet.
func (s *AppStore) ensureLoaded(id string) {
	if s.persist == nil {
		return
	}
	s.mu.RLock()
	_, cached := s.messages[id]
	_, known := s.sessions[id]
	s.mu.RUnlock()
	if cached || !known {
		return
	}
	s.cacheMessages(id, s.readMessages(id))
}

// DeleteSession removes a session. Deleting the current session opens
// the most recent remaining one, or a fresh one.
func (s *AppStore) DeleteSession(id string) error {
	s.mu.Lock()
	if f, ok := s.inflight[id]; ok {
		f.cancel()
		delete(s.inflight, id)
	}
	delete(s.sessions, id)
	delete(s.messages, id)
	wasCurrent := id == s.currentID
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.DeleteSession(id); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
			return err
		}
	}

	if wasCurrent {
		if remaining := s.Sessions(); len(remaining) > 0 {
			s.UpdateSessionID(remaining[0].ID)
			return nil
		}
		s.NewSession()
		return nil
	}
	s.notify()
	return nil
}

// RequestChat appends the user's text and an empty assistant message,
// then streams the model's answer into it.
func (s *AppStore) RequestChat(text string) {
	now := s.now()

	// the new turn must land after the stored history, not replace it
	for {
		id := s.CurrentSessionID()
		s.ensureLoaded(id)
		s.mu.Lock()
		if s.currentID == id {
			break
		}
		s.mu.Unlock()
	}
	sessionID := s.currentID
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		slog.Warn("request without a session")
		return
	}
	if f, busy := s.inflight[sessionID]; busy {
		slog.Debug("cancelling previous response", "session", sessionID)
		f.cancel()
	}

	history := s.historyLocked(sessionID)
	history = append(history, llms.TextParts(llms.ChatMessageTypeHuman, text))

	assistant := ChatMessage{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		CreatedAt:   now,
		IsStreaming: true,
		ModelID:     s.modelID,
	}
	s.messages[sessionID] = append(s.messages[sessionID],
		ChatMessage{ID: uuid.NewString(), Role: RoleUser, Content: text, CreatedAt: now},
		assistant,
	)
	if sess.Topic == "" {
		sess.Topic = topicFrom(text)
	}
	sess.UpdatedAt = now
	sess.MessageCount = len(s.messages[sessionID])

	ctx, cancel := context.WithCancel(context.Background())
	s.inflight[sessionID] = inflight{cancel: cancel, messageID: assistant.ID}
	s.wg.Add(1)
	s.mu.Unlock()

	slog.Debug("chat requested", "session", sessionID, "length", len(text))
	s.notify()

	go s.stream(ctx, sessionID, assistant.ID, history)
}

// historyLocked converts the session into model messages. Callers hold mu.
func (s *AppStore) historyLocked(sessionID string) []llms.MessageContent {
	var history []llms.MessageContent
	if s.systemPrompt != "" {
		history = append(history, llms.TextParts(llms.ChatMessageTypeSystem, s.systemPrompt))
	}
	for _, m := range s.messages[sessionID] {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := llms.ChatMessageTypeAI
		if m.IsUser() {
			role = llms.ChatMessageTypeHuman
		}
		history = append(history, llms.TextParts(role, m.Content))
	}
	return history
}

func (s *AppStore) stream(ctx context.Context, sessionID, messageID string, history []llms.MessageContent) {
	defer s.wg.Done()

	if s.llm == nil {
		s.setContent(sessionID, messageID, s.locale.NoModel)
		s.finishStream(sessionID, messageID)
		return
	}

	var streamed atomic.Bool
	resp, err := s.llm.GenerateContent(ctx, history,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(chunk) == 0 {
				return nil
			}
			streamed.Store(true)
			s.appendContent(sessionID, messageID, string(chunk))
			return nil
		}),
	)

	switch {
	case ctx.Err() != nil:
		slog.Debug("response interrupted", "session", sessionID)
	case err != nil:
		slog.Error("model request failed", "session", sessionID, "error", err)
		s.setLastError(err)
		s.appendNote(sessionID, messageID, s.locale.ModelError(err))
	default:
		s.setLastError(nil)
		if !streamed.Load() && resp != nil && len(resp.Choices) > 0 {
			s.setContent(sessionID, messageID, resp.Choices[0].Content)
		}
	}

	s.finishStream(sessionID, messageID)
}

func (s *AppStore) updateMessage(sessionID, messageID string, fn func(*ChatMessage)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			fn(&msgs[i])
			return true
		}
	}
	return false
}

func (s *AppStore) appendContent(sessionID, messageID, chunk string) {
	if s.updateMessage(sessionID, messageID, func(m *ChatMessage) { m.Content += chunk }) {
		s.notify()
	}
}

// appendNote adds a paragraph after any partial answer
func (s *AppStore) appendNote(sessionID, messageID, note string) {
	ok := s.updateMessage(sessionID, messageID, func(m *ChatMessage) {
		if m.Content != "" {
			m.Content += "\n\n"
		}
		m.Content += note
	})
	if ok {
		s.notify()
	}
}

func (s *AppStore) setContent(sessionID, messageID, content string) {
	if s.updateMessage(sessionID, messageID, func(m *ChatMessage) { m.Content = content }) {
		s.notify()
	}
}

// finishStream clears the streaming flag and persists the session. A
// newer request on the same session owns the inflight entry, so it is
// only removed when it still belongs to messageID.
func (s *AppStore) finishStream(sessionID, messageID string) {
	s.updateMessage(sessionID, messageID, func(m *ChatMessage) { m.IsStreaming = false })

	s.mu.Lock()
	if f, ok := s.inflight[sessionID]; ok && f.messageID == messageID {
		f.cancel()
		delete(s.inflight, sessionID)
	}
	s.mu.Unlock()

	s.save(sessionID)
	s.notify()
}

func (s *AppStore) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// LastError returns the error of the last failed model request, cleared by
// the next answer that completes.
func (s *AppStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// StopStreaming cancels the response in flight for the current session
func (s *AppStore) StopStreaming() {
	s.mu.RLock()
	f, ok := s.inflight[s.currentID]
	s.mu.RUnlock()
	if ok {
		slog.Debug("stop streaming requested")
		f.cancel()
	}
}

// Retry re-sends the nearest user prompt at or before index
func (s *AppStore) Retry(index int) {
	if s.IsStreaming() {
		return
	}
	msgs := s.Messages()
	if index >= len(msgs) {
		index = len(msgs) - 1
	}
	for i := index; i >= 0; i-- {
		if msgs[i].IsUser() {
			s.RequestChat(msgs[i].Content)
			return
		}
	}
}

// DeleteMessage removes one message from the current session
func (s *AppStore) DeleteMessage(index int) {
	s.mu.Lock()
	if _, busy := s.inflight[s.currentID]; busy {
		s.mu.Unlock()
		return
	}
	sessionID := s.currentID
	msgs := s.messages[sessionID]
	if index < 0 || index >= len(msgs) {
		s.mu.Unlock()
		return
	}
	s.messages[sessionID] = append(msgs[:index:index], msgs[index+1:]...)
	if sess, ok := s.sessions[sessionID]; ok {
		sess.MessageCount = len(s.messages[sessionID])
		sess.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	s.save(sessionID)
	s.notify()
}

func (s *AppStore) save(sessionID string) {
	if s.persist == nil {
		return
	}

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.RUnlock()
		return
	}
	data := &storage.SessionData{
		ID:        sess.ID,
		Topic:     sess.Topic,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	for _, m := range s.messages[sessionID] {
		data.Messages = append(data.Messages, storage.Message{
			ID:        m.ID,
			SessionID: sessionID,
			Role:      string(m.Role),
			Content:   m.Content,
			ModelID:   m.ModelID,
			CreatedAt: m.CreatedAt,
		})
	}
	s.mu.RUnlock()

	if len(data.Messages) == 0 {
		return
	}
	if err := s.persist.SaveSession(data); err != nil {
		slog.Error("failed to save session", "id", sessionID, "error", err)
		return
	}
	if _, err := s.persist.PruneSessions(s.maxSessions); err != nil {
		slog.Warn("failed to prune sessions", "error", err)
	}
}

// Wait blocks until all in-flight responses and loads have finished
func (s *AppStore) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight responses and waits for them to settle
func (s *AppStore) Close() {
	s.mu.Lock()
	for _, f := range s.inflight {
		f.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// fromSessionData converts a stored session into its view types
func fromSessionData(data *storage.SessionData) (ChatSession, []ChatMessage) {
	msgs := make([]ChatMessage, 0, len(data.Messages))
	for _, m := range data.Messages {
		msgs = append(msgs, ChatMessage{
			ID:        m.ID,
			Role:      Role(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			ModelID:   m.ModelID,
		})
	}
	session := ChatSession{
		ID:           data.ID,
		Topic:        data.Topic,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
		MessageCount: len(msgs),
	}
	return session, msgs
}

func topicFrom(text string) string {
	topic := strings.Join(strings.Fields(text), " ")
	runes := []rune(topic)
	if len(runes) > maxTopicRunes {
		return string(runes[:maxTopicRunes]) + "…"
	}
	return topic
}
