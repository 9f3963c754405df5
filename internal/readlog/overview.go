package readlog

import (
	"strconv"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// OverviewColumns are the display labels of the overview table, in order.
var OverviewColumns = []string{"Author", "Book Title", "Publishing Company", "Published Year", "Number of Pages"}

// OverviewRow is the display projection of a book.
type OverviewRow struct {
	Author        string `json:"Author"`
	Title         string `json:"Book Title"`
	Publisher     string `json:"Publishing Company"`
	PublishedYear int    `json:"Published Year"`
	Pages         int    `json:"Number of Pages"`
}

// Cells renders the row in OverviewColumns order.
func (r OverviewRow) Cells() []string {
	year := ""
	if r.PublishedYear != 0 {
		year = strconv.Itoa(r.PublishedYear)
	}
	return []string{r.Author, r.Title, r.Publisher, year, strconv.Itoa(r.Pages)}
}

// Overview projects rows to their overview columns, preserving order.
func Overview(rows []domain.BookLogEntry) []OverviewRow {
	out := make([]OverviewRow, len(rows))
	for i, e := range rows {
		out[i] = OverviewRow{
			Author:        e.Author,
			Title:         e.Title,
			Publisher:     e.Publisher,
			PublishedYear: e.PublishedYear,
			Pages:         e.PageN,
		}
	}
	return out
}
