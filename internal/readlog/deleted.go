package readlog

import (
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// DeletedSlugs returns the slugs whose most recent snapshot is soft-deleted.
func DeletedSlugs(rows []domain.BookLogEntry) map[string]struct{} {
	latest := make(map[string]time.Time)
	for i := range rows {
		if cur, ok := latest[rows[i].Slug]; !ok || rows[i].LogCreatedAt.After(cur) {
			latest[rows[i].Slug] = rows[i].LogCreatedAt
		}
	}
	out := make(map[string]struct{})
	for i := range rows {
		if rows[i].Deleted && rows[i].LogCreatedAt.Equal(latest[rows[i].Slug]) {
			out[rows[i].Slug] = struct{}{}
		}
	}
	return out
}

// RemoveDeleted drops every row of books whose latest snapshot is deleted.
func RemoveDeleted(rows []domain.BookLogEntry) []domain.BookLogEntry {
	deleted := DeletedSlugs(rows)
	if len(deleted) == 0 {
		return Where(rows)
	}
	return Where(rows, func(e *domain.BookLogEntry) bool {
		_, gone := deleted[e.Slug]
		return !gone
	})
}
