package readlog

import (
	"slices"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/errors"
)

// snapshotsFor returns the slug's rows sorted ascending by day.
func snapshotsFor(rows []domain.BookLogEntry, slug string) []domain.BookLogEntry {
	logs := LogsForBook(rows, slug)
	slices.SortStableFunc(logs, func(a, b domain.BookLogEntry) int {
		return a.LogCreatedAt.Compare(b.LogCreatedAt)
	})
	return logs
}

func searchDay(logs []domain.BookLogEntry, target time.Time) (int, bool) {
	return slices.BinarySearchFunc(logs, domain.Day(target), func(e domain.BookLogEntry, t time.Time) int {
		return domain.Day(e.LogCreatedAt).Compare(t)
	})
}

// NearestSnapshot returns the slug's first snapshot on or after target.
// It fails with an OUT_OF_RANGE error when the slug has no rows or target is
// later than its last snapshot; callers check the range first.
func NearestSnapshot(rows []domain.BookLogEntry, slug string, target time.Time) (domain.BookLogEntry, error) {
	logs := snapshotsFor(rows, slug)
	if len(logs) == 0 {
		return domain.BookLogEntry{}, errors.OutOfRangef("no snapshots for %s", slug)
	}
	i, _ := searchDay(logs, target)
	if i == len(logs) {
		return domain.BookLogEntry{}, errors.OutOfRangef("%s has no snapshot on or after %s", slug, domain.DayKey(target))
	}
	return logs[i].Clone(), nil
}

// SnapshotAsOf returns the slug's last snapshot on or before target. It fails
// with an OUT_OF_RANGE error when target precedes the first snapshot.
func SnapshotAsOf(rows []domain.BookLogEntry, slug string, target time.Time) (domain.BookLogEntry, error) {
	logs := snapshotsFor(rows, slug)
	if len(logs) == 0 {
		return domain.BookLogEntry{}, errors.OutOfRangef("no snapshots for %s", slug)
	}
	i, found := searchDay(logs, target)
	if found {
		// step past equal days so the last of them is returned
		for i+1 < len(logs) && domain.Day(logs[i+1].LogCreatedAt).Equal(domain.Day(target)) {
			i++
		}
		return logs[i].Clone(), nil
	}
	if i == 0 {
		return domain.BookLogEntry{}, errors.OutOfRangef("%s has no snapshot on or before %s", slug, domain.DayKey(target))
	}
	return logs[i-1].Clone(), nil
}
