package readlog

import (
	"slices"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// Predicate selects log rows.
type Predicate func(e *domain.BookLogEntry) bool

// AuthorIn matches rows whose author is one of authors. An empty set matches
// everything.
func AuthorIn(authors ...string) Predicate {
	return oneOf(authors, func(e *domain.BookLogEntry) string { return e.Author })
}

// PublisherIn matches rows whose publisher is one of publishers. An empty set
// matches everything.
func PublisherIn(publishers ...string) Predicate {
	return oneOf(publishers, func(e *domain.BookLogEntry) string { return e.Publisher })
}

func oneOf(values []string, field func(*domain.BookLogEntry) string) Predicate {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(e *domain.BookLogEntry) bool {
		_, ok := set[field(e)]
		return ok
	}
}

// PublishedFrom matches books published in year or later. Zero matches
// everything; unknown years never match a set bound.
func PublishedFrom(year int) Predicate {
	if year == 0 {
		return nil
	}
	return func(e *domain.BookLogEntry) bool {
		return e.PublishedYear != 0 && e.PublishedYear >= year
	}
}

// PublishedUntil matches books published in year or earlier.
func PublishedUntil(year int) Predicate {
	if year == 0 {
		return nil
	}
	return func(e *domain.BookLogEntry) bool {
		return e.PublishedYear != 0 && e.PublishedYear <= year
	}
}

// SlugIs matches a single book.
func SlugIs(slug string) Predicate {
	return func(e *domain.BookLogEntry) bool { return e.Slug == slug }
}

// StateIs matches rows whose classified state is one of states.
func StateIs(states ...domain.BookState) Predicate {
	if len(states) == 0 {
		return nil
	}
	return func(e *domain.BookLogEntry) bool {
		return slices.Contains(states, Classify(e))
	}
}

// Where returns copies of the rows matching every predicate. Nil predicates
// impose no constraint.
func Where(rows []domain.BookLogEntry, preds ...Predicate) []domain.BookLogEntry {
	active := slices.DeleteFunc(slices.Clone(preds), func(p Predicate) bool { return p == nil })
	out := []domain.BookLogEntry{}
	for i := range rows {
		ok := true
		for _, p := range active {
			if !p(&rows[i]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rows[i].Clone())
		}
	}
	return out
}

// FilterByProperty keeps the rows matching a single predicate.
func FilterByProperty(rows []domain.BookLogEntry, pred Predicate) []domain.BookLogEntry {
	return Where(rows, pred)
}

// Criteria is the user's filter selection on the latest-state table.
type Criteria struct {
	Authors    []string `json:"authors,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	YearMin    int      `json:"year_min,omitempty"`
	YearMax    int      `json:"year_max,omitempty"`
}

// IsEmpty reports whether the criteria constrain nothing.
func (c Criteria) IsEmpty() bool {
	return len(c.Authors) == 0 && len(c.Publishers) == 0 && c.YearMin == 0 && c.YearMax == 0
}

// Predicates returns the conjunctive predicate list for the criteria.
func (c Criteria) Predicates() []Predicate {
	return []Predicate{
		AuthorIn(c.Authors...),
		PublisherIn(c.Publishers...),
		PublishedFrom(c.YearMin),
		PublishedUntil(c.YearMax),
	}
}

// FilterBooks applies the criteria to the latest-state table.
func FilterBooks(latest []domain.BookLogEntry, c Criteria) []domain.BookLogEntry {
	return Where(latest, c.Predicates()...)
}

// LogsForBook returns every row of one book in input order.
func LogsForBook(rows []domain.BookLogEntry, slug string) []domain.BookLogEntry {
	return Where(rows, SlugIs(slug))
}

// Authors returns the distinct non-empty authors, sorted.
func Authors(rows []domain.BookLogEntry) []string {
	return distinct(rows, func(e *domain.BookLogEntry) string { return e.Author })
}

// Publishers returns the distinct non-empty publishers, sorted.
func Publishers(rows []domain.BookLogEntry) []string {
	return distinct(rows, func(e *domain.BookLogEntry) string { return e.Publisher })
}

func distinct(rows []domain.BookLogEntry, field func(*domain.BookLogEntry) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range rows {
		v := field(&rows[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
