package storage

import "time"

// SchemaVersion is stored in PRAGMA user_version; newer databases are refused
const SchemaVersion = 1

// SessionData contains the persistable session fields
type SessionData struct {
	ID           string
	Topic        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Messages     []Message
}

// Message represents a single message in a conversation
type Message struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Sequence  int       `db:"sequence"` // Message order in conversation
	Role      string    `db:"role"`     // "user" or "assistant"
	Content   string    `db:"content"`
	ModelID   string    `db:"model_id"`
	CreatedAt time.Time `db:"created_at"` // Stored as Unix milliseconds
}

// Schema is the SQL DDL for creating all tables
const Schema = `
-- Sessions table
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    topic TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);

-- Messages table
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    model_id TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, sequence);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (1, unixepoch());
`
