package domain

import "time"

// StateCount is the number of books in one state.
type StateCount struct {
	State BookState `json:"state"`
	Count int       `json:"count"`
}

// BookProgress is a single in-progress book on the statistics page.
type BookProgress struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	PageCurrent int     `json:"page_current"`
	PageN       int     `json:"page_n"`
	Percent     float64 `json:"percent"` // 0-100, two decimals
}

// DailyReading is the reading activity aggregated over all books for one day.
type DailyReading struct {
	Date       time.Time `json:"date"`
	TotalPages int       `json:"total_pages"` // sum of page_current across books
	PagesRead  int       `json:"pages_read"`  // positive page gains against the previous day
	BooksRead  int       `json:"books_read"`  // books with a page gain that day
}

// BookVelocity is the recent reading pace of one book.
type BookVelocity struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Last7Days  int    `json:"last_7_days"`
	Last14Days int    `json:"last_14_days"`
}

// ReadingStats is the full statistics payload for a user.
type ReadingStats struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	TotalBooks     int            `json:"total_books"`
	States         []StateCount   `json:"states"`
	InProgress     []BookProgress `json:"in_progress"`
	Daily          []DailyReading `json:"daily"`
	Velocity       []BookVelocity `json:"velocity"`
	TotalPagesRead int            `json:"total_pages_read"`
	CurrentStreak  int            `json:"current_streak_days"`
	LongestStreak  int            `json:"longest_streak_days"`
}

// Count returns the count for the given state.
func (s *ReadingStats) Count(state BookState) int {
	for _, c := range s.States {
		if c.State == state {
			return c.Count
		}
	}
	return 0
}
