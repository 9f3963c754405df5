// Package readlog is the daily reading log engine. Every function here is a
// pure transformation over an immutable snapshot of log rows: inputs are never
// mutated and results are freshly allocated.
package readlog

import (
	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/errors"
)

// Classify returns the state of a single snapshot. A finish date wins over
// page progress.
func Classify(e *domain.BookLogEntry) domain.BookState {
	switch {
	case e.FinishDate != nil:
		return domain.StateFinished
	case e.PageCurrent > 0:
		return domain.StateInProgress
	default:
		return domain.StateNotStarted
	}
}

// ClassifyState returns a copy of rows with State attached to every row.
func ClassifyState(rows []domain.BookLogEntry) []domain.BookLogEntry {
	out := make([]domain.BookLogEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].Clone()
		out[i].State = Classify(&out[i])
	}
	return out
}

// Validate reports the first row lacking a slug or a log date.
func Validate(rows []domain.BookLogEntry) error {
	for i := range rows {
		if rows[i].Slug == "" {
			return errors.MissingFieldf("row %d: slug is required", i)
		}
		if rows[i].LogCreatedAt.IsZero() {
			return errors.MissingFieldf("row %d (%s): log_created_at is required", i, rows[i].Slug)
		}
	}
	return nil
}
