package readlog

import (
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// ExampleLogDay is the day every example snapshot is logged on.
var ExampleLogDay = time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)

// ExampleData returns the demo library shown to users with an empty history:
// one book per state, all logged on ExampleLogDay.
func ExampleData() []domain.BookLogEntry {
	finished := time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC)
	return []domain.BookLogEntry{
		{
			Slug:          "marai-sandor-egy-polgar-vallomasai",
			Title:         "Egy polgar vallomasai",
			Author:        "Marai Sandor",
			Publisher:     "Helikon",
			Location:      "shelf",
			PublishedYear: 1934,
			PageN:         512,
			PageCurrent:   62,
			Tag1:          "classic",
			Tag2:          "hungarian",
			Language:      "hu",
			LogCreatedAt:  ExampleLogDay,
			Started:       true,
		},
		{
			Slug:          "alfred-mill-personal-finance-101",
			Title:         "Personal Finance 101",
			Subtitle:      "From saving and investing to taxes and loans, an essential primer on personal finance",
			Author:        "Alfred Mill",
			Publisher:     "Adams Media",
			Location:      "knowledge101",
			PublishedYear: 2020,
			PageN:         252,
			PageCurrent:   100,
			Tag1:          "finance",
			Tag2:          "investing",
			Tag3:          "taxes",
			Language:      "en",
			LogCreatedAt:  ExampleLogDay,
			Started:       true,
		},
		{
			Slug:          "jules-s-damji-learning-spark",
			Title:         "Learning Spark",
			Subtitle:      "Lightning-Fast Data Analytics",
			Author:        "Jules S. Damji",
			Publisher:     "O'Reilly",
			Location:      "coding/bigdata/scala/LearningSpark",
			PublishedYear: 2020,
			PageN:         399,
			PageCurrent:   399,
			FinishDate:    &finished,
			Tag1:          "bigdata",
			Tag2:          "spark",
			Tag3:          "data engineering",
			Language:      "en",
			LogCreatedAt:  ExampleLogDay,
			Started:       true,
		},
	}
}
