package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrSessionNotFound is returned when a session ID has no row
var ErrSessionNotFound = errors.New("session not found")

// SessionStore handles session persistence
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new session store
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// SaveSession saves or updates a session with all its messages
func (s *SessionStore) SaveSession(session *SessionData) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ON CONFLICT keeps the row in place; INSERT OR REPLACE would delete it
	// and cascade to the messages.
	_, err = tx.Exec(`
		INSERT INTO sessions (id, topic, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET topic = excluded.topic, updated_at = excluded.updated_at`,
		session.ID,
		session.Topic,
		session.CreatedAt.UnixMilli(),
		session.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err = tx.Exec("DELETE FROM messages WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("failed to delete old messages: %w", err)
	}

	for i, msg := range session.Messages {
		_, err = tx.Exec(`
			INSERT INTO messages (id, session_id, sequence, role, content, model_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.ID,
			session.ID,
			i,
			msg.Role,
			msg.Content,
			msg.ModelID,
			msg.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("Session saved", "id", session.ID, "messages", len(session.Messages))
	return nil
}

// LoadSession loads a session by ID with all its messages
func (s *SessionStore) LoadSession(sessionID string) (*SessionData, error) {
	var session SessionData
	var createdAt, updatedAt int64

	err := s.db.conn.QueryRow(`
		SELECT id, topic, created_at, updated_at
		FROM sessions
		WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.Topic, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	session.CreatedAt = time.UnixMilli(createdAt)
	session.UpdatedAt = time.UnixMilli(updatedAt)

	rows, err := s.db.conn.Query(`
		SELECT id, sequence, role, content, model_id, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	session.Messages = []Message{}
	for rows.Next() {
		var msg Message
		var msgCreatedAt int64
		if err := rows.Scan(&msg.ID, &msg.Sequence, &msg.Role, &msg.Content, &msg.ModelID, &msgCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.SessionID = sessionID
		msg.CreatedAt = time.UnixMilli(msgCreatedAt)
		session.Messages = append(session.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	session.MessageCount = len(session.Messages)

	slog.Debug("Session loaded", "id", sessionID, "messages", len(session.Messages))
	return &session, nil
}

// ListSessions lists sessions by most recent update, without messages
func (s *SessionStore) ListSessions(limit int) ([]SessionData, error) {
	query := `
		SELECT s.id, s.topic, s.created_at, s.updated_at, COUNT(m.id) AS message_count
		FROM sessions s
		LEFT JOIN messages m ON s.id = m.session_id
		GROUP BY s.id, s.topic, s.created_at, s.updated_at
		ORDER BY s.updated_at DESC`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionData
	for rows.Next() {
		var session SessionData
		var createdAt, updatedAt int64
		if err := rows.Scan(&session.ID, &session.Topic, &createdAt, &updatedAt, &session.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session.CreatedAt = time.UnixMilli(createdAt)
		session.UpdatedAt = time.UnixMilli(updatedAt)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// DeleteSession removes a session and, through the foreign key, its messages
func (s *SessionStore) DeleteSession(sessionID string) error {
	res, err := s.db.conn.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// PruneSessions keeps the maxSessions most recently updated sessions
func (s *SessionStore) PruneSessions(maxSessions int) (int64, error) {
	if maxSessions <= 0 {
		return 0, nil
	}
	res, err := s.db.conn.Exec(`
		DELETE FROM sessions
		WHERE id NOT IN (
			SELECT id FROM sessions
			ORDER BY updated_at DESC
			LIMIT ?
		)`,
		maxSessions,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check pruned rows: %w", err)
	}
	if n > 0 {
		slog.Debug("Sessions pruned", "count", n, "max", maxSessions)
	}
	return n, nil
}
