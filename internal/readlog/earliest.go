package readlog

import (
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// EarliestLogPerBook maps each slug to the day of its first snapshot.
func EarliestLogPerBook(rows []domain.BookLogEntry) map[string]time.Time {
	out := make(map[string]time.Time)
	for i := range rows {
		day := domain.Day(rows[i].LogCreatedAt)
		if cur, ok := out[rows[i].Slug]; !ok || day.Before(cur) {
			out[rows[i].Slug] = day
		}
	}
	return out
}

// EarliestLogForBooks returns the first snapshot day among the given slugs.
// ok is false when none of them has a row.
func EarliestLogForBooks(rows []domain.BookLogEntry, slugs []string) (day time.Time, ok bool) {
	earliest := EarliestLogPerBook(rows)
	for _, slug := range slugs {
		d, found := earliest[slug]
		if !found {
			continue
		}
		if !ok || d.Before(day) {
			day, ok = d, true
		}
	}
	return day, ok
}
