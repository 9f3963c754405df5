package readlog

import "github.com/bookkeeperapp/bookkeeper-server/internal/domain"

// BackdateBooks returns corrections for finished books logged after their
// finish date: copies re-dated to the finish date. The result is meant to be
// unioned with the input, never substituted for it.
func BackdateBooks(rows []domain.BookLogEntry) []domain.BookLogEntry {
	out := []domain.BookLogEntry{}
	for i := range rows {
		if c, ok := backdated(&rows[i]); ok {
			out = append(out, c)
		}
	}
	return out
}

// backdated returns the correction for a single row, if it needs one.
func backdated(e *domain.BookLogEntry) (domain.BookLogEntry, bool) {
	if Classify(e) != domain.StateFinished {
		return domain.BookLogEntry{}, false
	}
	finished := domain.Day(*e.FinishDate)
	if !domain.Day(e.LogCreatedAt).After(finished) {
		return domain.BookLogEntry{}, false
	}
	c := e.Clone()
	c.LogCreatedAt = finished
	c.State = domain.StateFinished
	return c, true
}
