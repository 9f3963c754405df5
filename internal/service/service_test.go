package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

// testToday is the pinned "today" for service tests.
var testToday = domain.MustParseDay("2024-04-10")

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t.Add(15 * time.Hour) }
}

func newTestBackend(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewInMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type testEnv struct {
	store    *store.Store
	sessions *SessionService
	books    *BookService
}

func setupEnv(t *testing.T, demo bool) *testEnv {
	t.Helper()
	s := newTestBackend(t)
	sessions := NewSessionService(s, demo, logger.Discard())
	sessions.now = fixedClock(testToday)
	return &testEnv{
		store:    s,
		sessions: sessions,
		books:    NewBookService(s, logger.Discard()),
	}
}

func (e *testEnv) load(t *testing.T, userID string) *Session {
	t.Helper()
	sess, err := e.sessions.Load(context.Background(), userID)
	require.NoError(t, err)
	return sess
}

func (e *testEnv) seed(t *testing.T, userID, day string, rows ...domain.BookLogEntry) {
	t.Helper()
	require.NoError(t, e.store.UpsertDay(context.Background(), userID, domain.MustParseDay(day), rows))
}

func book(slug string, pageN, current int) domain.BookLogEntry {
	return domain.BookLogEntry{
		Slug:        slug,
		Title:       "Title " + slug,
		Author:      "Author " + slug,
		PageN:       pageN,
		PageCurrent: current,
		Started:     current > 0,
	}
}
