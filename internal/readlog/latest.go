package readlog

import (
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// DateField selects the date column LatestVersion ranks by.
type DateField int

// DateField constants.
const (
	ByLogCreatedAt DateField = iota
	ByFinishDate
)

func (f DateField) value(e *domain.BookLogEntry) (time.Time, bool) {
	switch f {
	case ByFinishDate:
		if e.FinishDate == nil {
			return time.Time{}, false
		}
		return *e.FinishDate, true
	default:
		return e.LogCreatedAt, !e.LogCreatedAt.IsZero()
	}
}

// LatestVersion keeps, per slug, every row whose field equals the slug's
// maximum for that field. Rows are returned in input order. Ties are all
// returned; the stores prevent ties on ByLogCreatedAt by keying on
// (slug, day).
//
// With ByFinishDate, rows without a finish date never match, so slugs that
// were never finished drop out.
func LatestVersion(rows []domain.BookLogEntry, field DateField) ([]domain.BookLogEntry, error) {
	if len(rows) == 0 {
		return []domain.BookLogEntry{}, nil
	}
	if err := Validate(rows); err != nil {
		return nil, err
	}

	latest := make(map[string]time.Time)
	for i := range rows {
		v, ok := field.value(&rows[i])
		if !ok {
			continue
		}
		if cur, seen := latest[rows[i].Slug]; !seen || v.After(cur) {
			latest[rows[i].Slug] = v
		}
	}

	out := make([]domain.BookLogEntry, 0, len(latest))
	for i := range rows {
		v, ok := field.value(&rows[i])
		if !ok {
			continue
		}
		if v.Equal(latest[rows[i].Slug]) {
			out = append(out, rows[i].Clone())
		}
	}
	return out, nil
}

// LatestState is the read path used by sessions: latest snapshot per slug,
// deleted books removed, states attached.
func LatestState(rows []domain.BookLogEntry) ([]domain.BookLogEntry, error) {
	latest, err := LatestVersion(rows, ByLogCreatedAt)
	if err != nil {
		return nil, err
	}
	return ClassifyState(RemoveDeleted(latest)), nil
}
