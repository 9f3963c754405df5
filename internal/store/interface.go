// Package store defines persistence for reading logs and user accounts and
// provides the Badger implementation. Package sqlite provides the relational
// one; both satisfy Backend.
package store

import (
	"context"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// LogStore persists daily book snapshots keyed by (user, slug, day).
type LogStore interface {
	// ReadAll returns every row for the user, soft-deleted ones included,
	// ordered by (day, slug). A user without history gets an empty slice.
	ReadAll(ctx context.Context, userID string) ([]domain.BookLogEntry, error)

	// UpsertDay atomically replaces all of the user's rows for day. Each
	// row's LogCreatedAt is set to day; a slug repeated in rows keeps its
	// last occurrence.
	UpsertDay(ctx context.Context, userID string, day time.Time, rows []domain.BookLogEntry) error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// Backend is a complete storage implementation.
type Backend interface {
	LogStore
	UserStore

	// Name identifies the backend in logs and health output.
	Name() string
	Ping(ctx context.Context) error
	Close() error
}
