package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

// Session is everything one request knows about a user's reading log. It
// is loaded once per request and never mutated afterwards.
type Session struct {
	UserID string
	Today  time.Time

	// Books is the full history, soft-deleted rows included.
	Books []domain.BookLogEntry
	// TodayLogs are the rows already logged on Today.
	TodayLogs []domain.BookLogEntry
	// Latest is the current state of every visible book.
	Latest []domain.BookLogEntry
	// ExistingSlugs holds the slugs of Latest and TodayLogs.
	ExistingSlugs map[string]struct{}

	// IsExample marks a session backed by the demo dataset.
	IsExample bool
}

// HasSlug reports whether a book with slug is visible or logged today.
func (s *Session) HasSlug(slug string) bool {
	_, ok := s.ExistingSlugs[slug]
	return ok
}

// LatestFor returns the current state of slug.
func (s *Session) LatestFor(slug string) (domain.BookLogEntry, bool) {
	for i := range s.Latest {
		if s.Latest[i].Slug == slug {
			return s.Latest[i].Clone(), true
		}
	}
	return domain.BookLogEntry{}, false
}

// todayIndex returns the index of slug in TodayLogs or -1.
func (s *Session) todayIndex(slug string) int {
	for i := range s.TodayLogs {
		if s.TodayLogs[i].Slug == slug {
			return i
		}
	}
	return -1
}

// SessionService loads sessions from the log store.
type SessionService struct {
	logs   store.LogStore
	demo   bool
	logger *slog.Logger
	now    Clock
}

// NewSessionService creates a session loader. With demo set, users without
// any history see the example dataset.
func NewSessionService(logs store.LogStore, demo bool, logger *slog.Logger) *SessionService {
	return &SessionService{logs: logs, demo: demo, logger: logger, now: time.Now}
}

// Load reads the user's history and derives the session views.
func (s *SessionService) Load(ctx context.Context, userID string) (*Session, error) {
	rows, err := s.logs.ReadAll(ctx, userID)
	if err != nil {
		return nil, domainerrors.Storage(err, "read reading log")
	}

	sess := &Session{UserID: userID, Today: s.now.today()}
	if len(rows) == 0 && s.demo {
		rows = readlog.ExampleData()
		sess.IsExample = true
	}
	sess.Books = rows

	for i := range rows {
		if domain.Day(rows[i].LogCreatedAt).Equal(sess.Today) {
			sess.TodayLogs = append(sess.TodayLogs, rows[i].Clone())
		}
	}

	sess.Latest, err = readlog.LatestState(rows)
	if err != nil {
		return nil, err
	}

	sess.ExistingSlugs = make(map[string]struct{}, len(sess.Latest)+len(sess.TodayLogs))
	for i := range sess.Latest {
		sess.ExistingSlugs[sess.Latest[i].Slug] = struct{}{}
	}
	for i := range sess.TodayLogs {
		sess.ExistingSlugs[sess.TodayLogs[i].Slug] = struct{}{}
	}

	s.logger.Debug("session loaded",
		"user_id", userID,
		"rows", len(rows),
		"books", len(sess.Latest),
		"today", len(sess.TodayLogs),
		"example", sess.IsExample,
	)
	return sess, nil
}
