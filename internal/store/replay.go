package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// PrepareDay validates a day batch and returns it with LogCreatedAt pinned to
// day, one row per slug (last occurrence wins), sorted by slug.
func PrepareDay(day time.Time, rows []domain.BookLogEntry) ([]domain.BookLogEntry, error) {
	day = domain.Day(day)
	if day.IsZero() {
		return nil, ErrInvalidInput.WithMessage("log day is required")
	}
	bySlug := make(map[string]domain.BookLogEntry, len(rows))
	for i := range rows {
		if rows[i].Slug == "" {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("row %d has no slug", i))
		}
		e := rows[i].Clone()
		e.LogCreatedAt = day
		e.FinishDate = domain.NormalizeFinishDate(e.FinishDate)
		e.State = ""
		bySlug[e.Slug] = e
	}
	out := make([]domain.BookLogEntry, 0, len(bySlug))
	for _, e := range bySlug {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.BookLogEntry) int { return strings.Compare(a.Slug, b.Slug) })
	return out, nil
}

// GroupByDay splits rows into per-day batches ordered by day.
func GroupByDay(rows []domain.BookLogEntry) ([]time.Time, map[time.Time][]domain.BookLogEntry) {
	batches := make(map[time.Time][]domain.BookLogEntry)
	for i := range rows {
		d := domain.Day(rows[i].LogCreatedAt)
		batches[d] = append(batches[d], rows[i])
	}
	days := make([]time.Time, 0, len(batches))
	for d := range batches {
		days = append(days, d)
	}
	slices.SortFunc(days, time.Time.Compare)
	return days, batches
}

// ReplayDays writes rows into dst one day at a time and returns the number
// of days written.
func ReplayDays(ctx context.Context, dst LogStore, userID string, rows []domain.BookLogEntry) (int, error) {
	days, batches := GroupByDay(rows)
	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := dst.UpsertDay(ctx, userID, d, batches[d]); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", domain.DayKey(d), err)
		}
	}
	return len(days), nil
}

// MigrationResult summarizes a Migrate run.
type MigrationResult struct {
	Users int
	Days  int
	Rows  int
}

// Migrate copies every user and their full log history from src to dst.
// Users already present in dst are reused; their days are overwritten.
func Migrate(ctx context.Context, src, dst Backend) (MigrationResult, error) {
	var res MigrationResult

	users, err := src.ListUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if err := dst.CreateUser(ctx, u); err != nil && !errors.Is(err, ErrAlreadyExists) {
			return res, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		rows, err := src.ReadAll(ctx, u.ID)
		if err != nil {
			return res, fmt.Errorf("read logs for %s: %w", u.Username, err)
		}
		days, err := ReplayDays(ctx, dst, u.ID, rows)
		if err != nil {
			return res, fmt.Errorf("replay logs for %s: %w", u.Username, err)
		}
		res.Users++
		res.Days += days
		res.Rows += len(rows)
	}
	return res, nil
}
