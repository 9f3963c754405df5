package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
)

// Velocity windows in days.
const (
	shortWindow = 7
	longWindow  = 14
)

// StatsService computes reading statistics from a session.
type StatsService struct {
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(logger *slog.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// GetStats summarizes the session as of now.
func (s *StatsService) GetStats(_ context.Context, sess *Session, now time.Time) (*domain.ReadingStats, error) {
	stats := &domain.ReadingStats{
		GeneratedAt: now.UTC(),
		TotalBooks:  len(sess.Latest),
		States:      countStates(sess.Latest),
		InProgress:  inProgress(sess.Latest),
		Daily:       []domain.DailyReading{},
		Velocity:    []domain.BookVelocity{},
	}

	timeline, err := readlog.FillDenseTimeline(readlog.RemoveDeleted(sess.Books))
	if err != nil {
		return nil, err
	}
	if len(timeline) == 0 {
		return stats, nil
	}

	stats.Daily = dailySeries(timeline)
	for _, d := range stats.Daily {
		stats.TotalPagesRead += d.PagesRead
	}
	stats.Velocity = velocity(timeline, stats.InProgress, domain.Day(now))
	stats.CurrentStreak, stats.LongestStreak = streaks(stats.Daily, domain.Day(now))

	s.logger.Debug("stats computed",
		"user_id", sess.UserID,
		"books", stats.TotalBooks,
		"days", len(stats.Daily),
		"pages_read", stats.TotalPagesRead,
	)
	return stats, nil
}

func countStates(latest []domain.BookLogEntry) []domain.StateCount {
	counts := make([]domain.StateCount, len(domain.States))
	for i, st := range domain.States {
		counts[i].State = st
	}
	for i := range latest {
		for j := range counts {
			if counts[j].State == latest[i].State {
				counts[j].Count++
			}
		}
	}
	return counts
}

// inProgress lists in-progress books, most advanced first.
func inProgress(latest []domain.BookLogEntry) []domain.BookProgress {
	out := []domain.BookProgress{}
	for i := range latest {
		e := &latest[i]
		if e.State != domain.StateInProgress {
			continue
		}
		out = append(out, domain.BookProgress{
			Slug:        e.Slug,
			Title:       e.Title,
			Author:      e.Author,
			PageCurrent: e.PageCurrent,
			PageN:       e.PageN,
			Percent:     e.ProgressPercent(),
		})
	}
	slices.SortFunc(out, func(a, b domain.BookProgress) int {
		return cmp.Or(cmp.Compare(b.Percent, a.Percent), cmp.Compare(a.Slug, b.Slug))
	})
	return out
}

// dailySeries aggregates the grid per day. Page gains only count against a
// known previous day, so a book's first snapshot is not counted as read.
func dailySeries(timeline []domain.TimelineRow) []domain.DailyReading {
	first, last, _ := readlog.DayRange(timeline)
	days := domain.DaysBetween(first, last) + 1

	series := make([]domain.DailyReading, days)
	for d := range series {
		series[d].Date = first.AddDate(0, 0, d)
	}

	// Rows are sorted by (slug, day), so the previous row of the same slug
	// is the previous day.
	for i := range timeline {
		row := &timeline[i]
		d := domain.DaysBetween(first, row.Day())
		series[d].TotalPages += row.Entry.PageCurrent

		if i == 0 || !row.Known {
			continue
		}
		prev := &timeline[i-1]
		if prev.Entry.Slug != row.Entry.Slug || !prev.Known {
			continue
		}
		if gain := row.Entry.PageCurrent - prev.Entry.PageCurrent; gain > 0 {
			series[d].PagesRead += gain
			series[d].BooksRead++
		}
	}
	return series
}

// velocity measures pages gained over the trailing windows ending on
// min(today, last grid day). A window reaching before a book's history
// counts from zero.
func velocity(timeline []domain.TimelineRow, books []domain.BookProgress, today time.Time) []domain.BookVelocity {
	first, last, _ := readlog.DayRange(timeline)
	end := last
	if today.Before(end) {
		end = today
	}
	out := []domain.BookVelocity{}
	if end.Before(first) {
		return out
	}

	entries := readlog.TimelineEntries(timeline)
	pagesAt := func(slug string, day time.Time) int {
		e, err := readlog.SnapshotAsOf(entries, slug, day)
		if err != nil {
			return 0
		}
		return e.PageCurrent
	}

	for _, b := range books {
		current := pagesAt(b.Slug, end)
		out = append(out, domain.BookVelocity{
			Slug:       b.Slug,
			Title:      b.Title,
			Last7Days:  max(0, current-pagesAt(b.Slug, end.AddDate(0, 0, -shortWindow))),
			Last14Days: max(0, current-pagesAt(b.Slug, end.AddDate(0, 0, -longWindow))),
		})
	}
	return out
}

// streaks returns the current and longest runs of consecutive days with page
// gains. The current streak must include today or yesterday.
func streaks(series []domain.DailyReading, today time.Time) (current, longest int) {
	var active []time.Time
	for _, d := range series {
		if d.PagesRead > 0 {
			active = append(active, d.Date)
		}
	}
	if len(active) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(active); i++ {
		if active[i-1].Equal(active[i].AddDate(0, 0, -1)) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	lastActive := active[len(active)-1]
	if !lastActive.Equal(today) && !lastActive.Equal(today.AddDate(0, 0, -1)) {
		return 0, longest
	}
	current = 1
	for i := len(active) - 1; i > 0; i-- {
		if !active[i-1].Equal(active[i].AddDate(0, 0, -1)) {
			break
		}
		current++
	}
	return current, longest
}
