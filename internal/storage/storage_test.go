package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// =============================================================================
// DB Tests
// =============================================================================

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		assert.NoError(t, db.Close())
	})

	t.Run("on_disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, db.Path())
		assert.NoError(t, db.Close())
	})
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.Contains(t, path, "aircare")
	assert.Contains(t, path, "db")
}

func TestSetIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	rec := model.NewFiredRecord("ev1", time.Now())

	stored, err := db.SetIfAbsent(rec)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = db.SetIfAbsent(model.NewFiredRecord("ev1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, stored)

	got := &model.FiredRecord{}
	require.NoError(t, db.Get(rec.GetKey(), got))
	assert.WithinDuration(t, rec.FiredAt, got.FiredAt, time.Millisecond)
}

func TestTakeBytes(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.SetBytes("k", []byte("v")))

	data, err := db.TakeBytes("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	_, err = db.TakeBytes("k")
	assert.True(t, IsErrKeyNotFound(err))
}

// =============================================================================
// SessionRepo Tests
// =============================================================================

func TestSessionRepoRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)

	empty, err := repo.Load()
	require.NoError(t, err)
	assert.False(t, empty.IsLoggedIn())

	err = repo.Save(model.Session{
		Token:  "tok",
		UserID: "u1",
		User:   &model.Employee{ID: "u1", FirstName: "Ana", Role: model.RoleAdmin},
	})
	require.NoError(t, err)

	s, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "u1", s.UserID)
	require.NotNil(t, s.User)
	assert.True(t, s.User.IsAdmin())

	require.NoError(t, repo.Clear())
	s, err = repo.Load()
	require.NoError(t, err)
	assert.False(t, s.IsLoggedIn())
	assert.Nil(t, s.User)
}

func TestSessionRepoSaveDropsEmptyParts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)

	require.NoError(t, repo.Save(model.Session{Token: "tok", UserID: "u1", User: &model.Employee{}}))
	require.NoError(t, repo.Save(model.Session{Token: "tok2"}))

	exists, err := db.Exists(model.KeyUserID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = db.Exists(model.KeyUser)
	require.NoError(t, err)
	assert.False(t, exists)
}

// =============================================================================
// NotifiedRepo Tests
// =============================================================================

func TestNotifiedRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotifiedRepo(db)
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	notified, err := repo.IsNotified("ev1")
	require.NoError(t, err)
	assert.False(t, notified)

	first, err := repo.MarkNotified("ev1", at)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkNotified("ev1", at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, again)

	rec, err := repo.Get("ev1")
	require.NoError(t, err)
	assert.True(t, rec.FiredAt.Equal(at))

	_, err = repo.MarkNotified("ev2", at)
	require.NoError(t, err)

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNotifiedRepoConcurrentMark(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotifiedRepo(db)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkNotified("ev1", time.Now())
			if err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestNotifiedFlagSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	db, err := Open(Options{Path: dir})
	require.NoError(t, err)
	_, err = NewNotifiedRepo(db).MarkNotified("ev1", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	notified, err := NewNotifiedRepo(db).IsNotified("ev1")
	require.NoError(t, err)
	assert.True(t, notified)
}

// =============================================================================
// HandoffRepo Tests
// =============================================================================

func TestHandoffRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHandoffRepo(db)

	_, ok, err := repo.Take()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set("ev9"))

	id, ok, err := repo.Peek()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ev9", id)

	id, ok, err = repo.Take()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ev9", id)

	_, ok, err = repo.Peek()
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// WebhookRepo Tests
// =============================================================================

func TestWebhookRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookRepo(db)

	require.NoError(t, repo.Create(model.NewWebhook("ops", model.WebhookTypeSlack, "https://hooks.slack.com/x")))
	require.NoError(t, repo.Create(model.NewWebhook("audit", model.WebhookTypeGeneric, "https://example.com/hook")))

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.SetEnabled("audit", false))
	enabled, err := repo.ListEnabled()
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "ops", enabled[0].Name)

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordDelivery("ops", "evt-1", at, assert.AnError))
	require.NoError(t, repo.RecordDelivery("ops", "", at.Add(time.Minute), nil))
	wh, err := repo.Get("ops")
	require.NoError(t, err)
	assert.True(t, wh.LastUsed.Equal(at.Add(time.Minute)))
	assert.Equal(t, "evt-1", wh.LastEventID)
	assert.Equal(t, 1, wh.Delivered)
	assert.Equal(t, 1, wh.Failed)
	assert.Empty(t, wh.LastError)

	err = repo.Create(model.NewWebhook("audit", model.WebhookTypeGeneric, "https://example.com/other"))
	assert.ErrorIs(t, err, errors.ErrWebhookExists)
	_, err = repo.Get("missing")
	assert.ErrorIs(t, err, errors.ErrWebhookNotFound)
	assert.ErrorIs(t, repo.SetEnabled("missing", true), errors.ErrWebhookNotFound)

	require.NoError(t, repo.Delete("ops"))
	exists, err := repo.Exists("ops")
	require.NoError(t, err)
	assert.False(t, exists)
}

// =============================================================================
// WriteAtomic Tests
// =============================================================================

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ics")

	require.NoError(t, WriteAtomic(path, 0644, func(w io.Writer) error {
		_, err := io.WriteString(w, "BEGIN:VCALENDAR")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicRenderFailureKeepsOldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ics")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	err := WriteAtomic(path, 0644, func(w io.Writer) error {
		io.WriteString(w, "half a calend")
		return assert.AnError
	})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.ErrorIs(t, err, assert.AnError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is removed")
}
