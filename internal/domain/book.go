package domain

import "time"

// BookState is the reading status derived from a log snapshot. It is never
// persisted; the classifier attaches it on every read.
type BookState string

// BookState constants.
const (
	StateNotStarted BookState = "not started"
	StateInProgress BookState = "in progress"
	StateFinished   BookState = "finished"
)

// States lists every state in display order.
var States = []BookState{StateNotStarted, StateInProgress, StateFinished}

// Valid returns true if the state is a recognized value.
func (s BookState) Valid() bool {
	switch s {
	case StateNotStarted, StateInProgress, StateFinished:
		return true
	default:
		return false
	}
}

// BookLogEntry is one daily snapshot of a book: its metadata plus the reading
// progress as of LogCreatedAt. The canonical store holds at most one entry per
// (Slug, LogCreatedAt).
type BookLogEntry struct {
	Slug          string     `json:"slug" yaml:"slug"`
	Title         string     `json:"title" yaml:"title"`
	Subtitle      string     `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Author        string     `json:"author" yaml:"author"`
	Publisher     string     `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Location      string     `json:"location,omitempty" yaml:"location,omitempty"`
	PublishedYear int        `json:"published_year,omitempty" yaml:"published_year,omitempty"` // 0 = unknown
	PageN         int        `json:"page_n" yaml:"page_n"`
	PageCurrent   int        `json:"page_current" yaml:"page_current"`
	FinishDate    *time.Time `json:"finish_date,omitempty" yaml:"finish_date,omitempty"`
	Tag1          string     `json:"tag1,omitempty" yaml:"tag1,omitempty"`
	Tag2          string     `json:"tag2,omitempty" yaml:"tag2,omitempty"`
	Tag3          string     `json:"tag3,omitempty" yaml:"tag3,omitempty"`
	Language      string     `json:"language,omitempty" yaml:"language,omitempty"`
	LogCreatedAt  time.Time  `json:"log_created_at" yaml:"log_created_at"`
	Started       bool       `json:"started" yaml:"started"`
	Deleted       bool       `json:"deleted" yaml:"deleted"`

	// State is attached by the classifier.
	State BookState `json:"state,omitempty" yaml:"-"`
}

// IsFinished reports whether the snapshot carries a finish date.
func (e *BookLogEntry) IsFinished() bool {
	return e.FinishDate != nil
}

// Tags returns the non-empty tags in slot order.
func (e *BookLogEntry) Tags() []string {
	tags := make([]string, 0, 3)
	for _, t := range []string{e.Tag1, e.Tag2, e.Tag3} {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ProgressPercent returns page_current / page_n as a percentage rounded to
// two decimals. Books without a page count report 0.
func (e *BookLogEntry) ProgressPercent() float64 {
	if e.PageN <= 0 {
		return 0
	}
	return RoundTo(float64(e.PageCurrent)/float64(e.PageN)*100, 2)
}

// Clone returns a copy that shares no pointers with e.
func (e *BookLogEntry) Clone() BookLogEntry {
	c := *e
	if e.FinishDate != nil {
		fd := *e.FinishDate
		c.FinishDate = &fd
	}
	return c
}
