package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the latest state of every visible book, optionally filtered",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleListBooks))

	huma.Register(s.api, huma.Operation{
		OperationID: "booksOverview",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/overview",
		Summary:     "Books overview",
		Description: "Returns the overview table projection of the latest state",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleOverview))

	huma.Register(s.api, huma.Operation{
		OperationID: "bookLogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{slug}/logs",
		Summary:     "Book history",
		Description: "Returns every logged snapshot of a book, oldest first",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleBookLogs))

	huma.Register(s.api, huma.Operation{
		OperationID: "bookSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{slug}/snapshot",
		Summary:     "Book snapshot",
		Description: "Returns the snapshot nearest to a date, on or after it (side=after) or on or before it (side=before)",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleSnapshot))

	huma.Register(s.api, huma.Operation{
		OperationID:   "addBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a book to today's log",
		Tags:          []string{"Books"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, withSession(s, s.handleAddBook))

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{slug}",
		Summary:     "Update book",
		Description: "Records new properties or progress for a book as of today",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleUpdateBook))

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{slug}",
		Summary:       "Delete book",
		Description:   "Soft-deletes a book as of today",
		Tags:          []string{"Books"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, withSession(s, s.handleDeleteBook))

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{slug}/restore",
		Summary:     "Restore book",
		Description: "Reverts a deletion recorded today",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleRestoreBook))

	huma.Register(s.api, huma.Operation{
		OperationID: "todayLogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/today",
		Summary:     "Today's log",
		Description: "Returns the rows already logged today",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, withSession(s, s.handleToday))
}

// === DTOs ===

// ListBooksInput contains the latest-state filters.
type ListBooksInput struct {
	Authors    []string `query:"author,explode" doc:"Keep books by any of these authors"`
	Publishers []string `query:"publisher,explode" doc:"Keep books from any of these publishers"`
	YearMin    int      `query:"year_min" minimum:"0" doc:"Earliest published year, inclusive"`
	YearMax    int      `query:"year_max" minimum:"0" doc:"Latest published year, inclusive"`
	State      string   `query:"state" doc:"Keep books in this state: not started, in progress or finished"`
}

// BookListResponse is the filtered latest-state table.
type BookListResponse struct {
	Books      []domain.BookLogEntry `json:"books" doc:"Latest snapshot per book"`
	Total      int                   `json:"total" doc:"Number of books returned"`
	IsExample  bool                  `json:"is_example" doc:"True when showing the example library"`
	Authors    []string              `json:"authors" doc:"Every author in the library, for filter choices"`
	Publishers []string              `json:"publishers" doc:"Every publisher in the library, for filter choices"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// OverviewInput is empty; the overview is not filtered.
type OverviewInput struct{}

// OverviewResponse is the overview table.
type OverviewResponse struct {
	Columns []string              `json:"columns" doc:"Column labels in display order"`
	Rows    []readlog.OverviewRow `json:"rows" doc:"One row per visible book"`
}

// OverviewOutput wraps the overview for Huma.
type OverviewOutput struct {
	Body OverviewResponse
}

// SlugInput addresses one book.
type SlugInput struct {
	Slug string `path:"slug" doc:"Book slug"`
}

// BookLogsResponse is the history of one book.
type BookLogsResponse struct {
	Slug string                `json:"slug" doc:"Book slug"`
	Logs []domain.BookLogEntry `json:"logs" doc:"Snapshots, oldest first"`
}

// BookLogsOutput wraps the history for Huma.
type BookLogsOutput struct {
	Body BookLogsResponse
}

// SnapshotInput selects a snapshot by date.
type SnapshotInput struct {
	Slug string `path:"slug" doc:"Book slug"`
	Date string `query:"date" required:"true" doc:"Target day (YYYY-MM-DD)"`
	Side string `query:"side" enum:"after,before" default:"after" doc:"Search direction from the target day"`
}

// BookOutput wraps a single snapshot for Huma.
type BookOutput struct {
	Body domain.BookLogEntry
}

// AddBookInput contains a new book.
type AddBookInput struct {
	Body service.AddBookRequest
}

// UpdateBookInput contains new properties for a book.
type UpdateBookInput struct {
	Slug string `path:"slug" doc:"Book slug"`
	Body service.UpdateBookRequest
}

// TodayInput is empty.
type TodayInput struct{}

// TodayResponse lists today's log rows.
type TodayResponse struct {
	Date string                `json:"date" doc:"Today (YYYY-MM-DD)"`
	Logs []domain.BookLogEntry `json:"logs" doc:"Rows logged today"`
}

// TodayOutput wraps today's log for Huma.
type TodayOutput struct {
	Body TodayResponse
}

// === Handlers ===

func (s *Server) handleListBooks(_ context.Context, sess *service.Session, input *ListBooksInput) (*BookListOutput, error) {
	crit := readlog.Criteria{
		Authors:    input.Authors,
		Publishers: input.Publishers,
		YearMin:    input.YearMin,
		YearMax:    input.YearMax,
	}
	books := readlog.FilterBooks(sess.Latest, crit)

	if input.State != "" {
		state := domain.BookState(input.State)
		if !state.Valid() {
			return nil, domainerrors.Validationf("unknown state %q", input.State)
		}
		books = readlog.Where(books, readlog.StateIs(state))
	}

	return &BookListOutput{
		Body: BookListResponse{
			Books:      books,
			Total:      len(books),
			IsExample:  sess.IsExample,
			Authors:    readlog.Authors(sess.Latest),
			Publishers: readlog.Publishers(sess.Latest),
		},
	}, nil
}

func (s *Server) handleOverview(_ context.Context, sess *service.Session, _ *OverviewInput) (*OverviewOutput, error) {
	return &OverviewOutput{
		Body: OverviewResponse{
			Columns: readlog.OverviewColumns,
			Rows:    readlog.Overview(sess.Latest),
		},
	}, nil
}

func (s *Server) handleBookLogs(_ context.Context, sess *service.Session, input *SlugInput) (*BookLogsOutput, error) {
	logs := readlog.ClassifyState(readlog.LogsForBook(sess.Books, input.Slug))
	if len(logs) == 0 {
		return nil, domainerrors.NotFoundf("book %s not found", input.Slug)
	}
	return &BookLogsOutput{Body: BookLogsResponse{Slug: input.Slug, Logs: logs}}, nil
}

func (s *Server) handleSnapshot(_ context.Context, sess *service.Session, input *SnapshotInput) (*BookOutput, error) {
	target, err := domain.ParseDay(input.Date)
	if err != nil {
		return nil, domainerrors.Validationf("date %q must be formatted YYYY-MM-DD", input.Date)
	}

	rows := readlog.RemoveDeleted(sess.Books)
	if !sess.HasSlug(input.Slug) && len(readlog.LogsForBook(rows, input.Slug)) == 0 {
		return nil, domainerrors.NotFoundf("book %s not found", input.Slug)
	}

	var snap domain.BookLogEntry
	if input.Side == "before" {
		snap, err = readlog.SnapshotAsOf(rows, input.Slug, target)
	} else {
		snap, err = readlog.NearestSnapshot(rows, input.Slug, target)
	}
	if err != nil {
		return nil, err
	}
	snap.State = readlog.Classify(&snap)
	return &BookOutput{Body: snap}, nil
}

func (s *Server) handleAddBook(ctx context.Context, sess *service.Session, input *AddBookInput) (*BookOutput, error) {
	e, err := s.services.Books.AddBook(ctx, sess, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *e}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, sess *service.Session, input *UpdateBookInput) (*BookOutput, error) {
	e, err := s.services.Books.UpdateBook(ctx, sess, input.Slug, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *e}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, sess *service.Session, input *SlugInput) (*struct{}, error) {
	if err := s.services.Books.DeleteBook(ctx, sess, input.Slug); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleRestoreBook(ctx context.Context, sess *service.Session, input *SlugInput) (*BookOutput, error) {
	e, err := s.services.Books.RevertDeletion(ctx, sess, input.Slug)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *e}, nil
}

func (s *Server) handleToday(_ context.Context, sess *service.Session, _ *TodayInput) (*TodayOutput, error) {
	return &TodayOutput{
		Body: TodayResponse{
			Date: domain.DayKey(sess.Today),
			Logs: readlog.ClassifyState(sess.TodayLogs),
		},
	}, nil
}

// parseOptionalDay parses an optional YYYY-MM-DD query value.
func parseOptionalDay(name, value string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, nil
	}
	d, err := domain.ParseDay(value)
	if err != nil {
		return time.Time{}, false, domainerrors.Validationf("%s %q must be formatted YYYY-MM-DD", name, value)
	}
	return d, true, nil
}
