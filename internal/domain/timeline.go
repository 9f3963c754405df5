package domain

import "time"

// TimelineRow is one cell of the dense (book x day) grid.
type TimelineRow struct {
	// Entry holds the forward-filled snapshot values. Entry.LogCreatedAt is
	// always the grid day. Before a book's first snapshot only Slug is set
	// and PageCurrent is 0.
	Entry BookLogEntry `json:"entry"`

	// SourceDay is the day of the snapshot the values were filled from.
	// Zero before the first snapshot.
	SourceDay time.Time `json:"source_day,omitzero"`

	// Known is false for days before the book's first snapshot.
	Known bool `json:"known"`

	// Observed is true when a snapshot (or backdated correction) exists on
	// exactly this day.
	Observed bool `json:"observed"`
}

// Day returns the grid day of the row.
func (r *TimelineRow) Day() time.Time {
	return r.Entry.LogCreatedAt
}
