package readlog

import (
	"slices"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// observation is a snapshot placed on the grid, remembering which logged
// day it came from so corrections and originals can be ranked.
type observation struct {
	entry     domain.BookLogEntry
	sourceDay time.Time
	order     int
}

// outranks reports whether o should occupy a (slug, day) cell held by other.
// The most recently logged source wins; among equals the later input row.
func (o *observation) outranks(other *observation) bool {
	if !o.sourceDay.Equal(other.sourceDay) {
		return o.sourceDay.After(other.sourceDay)
	}
	return o.order > other.order
}

// FillDenseTimeline reconstructs the (book x day) grid over the global range
// of logged days, backdating corrections included. For every book each day
// carries the most recent snapshot at or before it; days before a book's
// first snapshot carry zero pages. Rows are sorted by (slug, day).
func FillDenseTimeline(rows []domain.BookLogEntry) ([]domain.TimelineRow, error) {
	if len(rows) == 0 {
		return []domain.TimelineRow{}, nil
	}
	if err := Validate(rows); err != nil {
		return nil, err
	}

	obs := make([]observation, 0, len(rows))
	for i := range rows {
		e := rows[i].Clone()
		e.LogCreatedAt = domain.Day(e.LogCreatedAt)
		obs = append(obs, observation{entry: e, sourceDay: e.LogCreatedAt, order: i})
	}
	for i := range rows {
		if fixed, ok := backdated(&rows[i]); ok {
			obs = append(obs, observation{
				entry:     fixed,
				sourceDay: domain.Day(rows[i].LogCreatedAt),
				order:     len(obs),
			})
		}
	}

	minDay, maxDay := obs[0].entry.LogCreatedAt, obs[0].entry.LogCreatedAt
	cells := make(map[string]map[time.Time]*observation)
	for i := range obs {
		o := &obs[i]
		day := o.entry.LogCreatedAt
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
		byDay, ok := cells[o.entry.Slug]
		if !ok {
			byDay = make(map[time.Time]*observation)
			cells[o.entry.Slug] = byDay
		}
		if held, ok := byDay[day]; !ok || o.outranks(held) {
			byDay[day] = o
		}
	}

	days := domain.DaysBetween(minDay, maxDay) + 1
	slugs := make([]string, 0, len(cells))
	for slug := range cells {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)

	out := make([]domain.TimelineRow, 0, len(slugs)*days)
	for _, slug := range slugs {
		byDay := cells[slug]
		var last *observation
		for d := range days {
			day := minDay.AddDate(0, 0, d)
			observed := false
			if o, ok := byDay[day]; ok {
				last = o
				observed = true
			}
			out = append(out, timelineRow(slug, day, last, observed))
		}
	}
	return out, nil
}

func timelineRow(slug string, day time.Time, last *observation, observed bool) domain.TimelineRow {
	if last == nil {
		return domain.TimelineRow{
			Entry: domain.BookLogEntry{
				Slug:         slug,
				LogCreatedAt: day,
				State:        domain.StateNotStarted,
			},
		}
	}
	e := last.entry.Clone()
	e.LogCreatedAt = day
	e.State = Classify(&e)
	return domain.TimelineRow{
		Entry:     e,
		SourceDay: last.sourceDay,
		Known:     true,
		Observed:  observed,
	}
}

// TimelineEntries flattens timeline rows back to log entries so the lookup
// functions can run over the dense grid.
func TimelineEntries(rows []domain.TimelineRow) []domain.BookLogEntry {
	out := make([]domain.BookLogEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].Entry.Clone()
	}
	return out
}

// DayRange returns the first and last grid day of a timeline.
func DayRange(rows []domain.TimelineRow) (first, last time.Time, ok bool) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = rows[0].Day(), rows[0].Day()
	for i := range rows {
		d := rows[i].Day()
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last, true
}
