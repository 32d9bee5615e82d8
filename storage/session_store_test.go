package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SessionStore, *DB) {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "chatpane.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), db
}

func testSession(id, topic string, updated time.Time, contents ...string) *SessionData {
	session := &SessionData{
		ID:        id,
		Topic:     topic,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
	for i, c := range contents {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		session.Messages = append(session.Messages, Message{
			ID:        id + "-" + string(rune('a'+i)),
			Role:      role,
			Content:   c,
			CreatedAt: updated,
		})
	}
	return session
}

func TestSaveAndLoadSession(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.UnixMilli(time.Now().UnixMilli())

	session := testSession("s1", "greetings", now, "hi", "hello there")
	session.Messages[1].ModelID = "gpt-4o"
	require.NoError(t, store.SaveSession(session))

	loaded, err := store.LoadSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "greetings", loaded.Topic)
	assert.Equal(t, now, loaded.UpdatedAt)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "user", loaded.Messages[0].Role)
	assert.Equal(t, "hi", loaded.Messages[0].Content)
	assert.Equal(t, "assistant", loaded.Messages[1].Role)
	assert.Equal(t, "gpt-4o", loaded.Messages[1].ModelID)
	assert.Equal(t, 1, loaded.Messages[1].Sequence)
	assert.Equal(t, 2, loaded.MessageCount)
}

func TestSaveSessionReplacesMessages(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Now()

	require.NoError(t, store.SaveSession(testSession("s1", "t", now, "one", "two", "three")))
	require.NoError(t, store.SaveSession(testSession("s1", "renamed", now, "one")))

	loaded, err := store.LoadSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Topic)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "one", loaded.Messages[0].Content)
}

func TestLoadSessionNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadSession("missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessionsOrderAndCounts(t *testing.T) {
	store, _ := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.SaveSession(testSession("old", "old", base, "a")))
	require.NoError(t, store.SaveSession(testSession("new", "new", base.Add(30*time.Minute), "a", "b", "c")))
	require.NoError(t, store.SaveSession(testSession("mid", "mid", base.Add(10*time.Minute))))

	sessions, err := store.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, 3, sessions[0].MessageCount)
	assert.Equal(t, "mid", sessions[1].ID)
	assert.Equal(t, 0, sessions[1].MessageCount)
	assert.Equal(t, "old", sessions[2].ID)

	limited, err := store.ListSessions(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestDeleteSessionCascadesMessages(t *testing.T) {
	store, db := newTestStore(t)
	require.NoError(t, store.SaveSession(testSession("s1", "t", time.Now(), "a", "b")))

	require.NoError(t, store.DeleteSession("s1"))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats["sessions"])
	assert.Equal(t, int64(0), stats["messages"])

	require.ErrorIs(t, store.DeleteSession("s1"), ErrSessionNotFound)
}

func TestPruneSessions(t *testing.T) {
	store, _ := newTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.SaveSession(testSession(id, id, base.Add(time.Duration(i)*time.Minute), "x")))
	}

	pruned, err := store.PruneSessions(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)

	sessions, err := store.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "d", sessions[0].ID)
	assert.Equal(t, "c", sessions[1].ID)

	pruned, err = store.PruneSessions(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pruned)
}

func TestInitDBRecordsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatpane.sqlite")
	db, err := InitDB(path)
	require.NoError(t, err)

	var version int
	require.NoError(t, db.Conn().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, SchemaVersion, version)

	// reopening a database of the same version works
	require.NoError(t, db.Close())
	db, err = InitDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestInitDBRefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatpane.sqlite")
	db, err := InitDB(path)
	require.NoError(t, err)
	_, err = db.Conn().Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = InitDB(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}
