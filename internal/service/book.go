package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/util"
	"github.com/bookkeeperapp/bookkeeper-server/internal/validation"
)

// BookFields are the editable properties of a book.
type BookFields struct {
	Subtitle      string `json:"subtitle,omitempty" validate:"max=500"`
	Publisher     string `json:"publisher,omitempty" validate:"max=200"`
	Location      string `json:"location,omitempty" validate:"max=500"`
	PublishedYear int    `json:"published_year,omitempty" validate:"gte=0,lte=9999"`
	PageN         int    `json:"page_n" validate:"gte=0"`
	PageCurrent   int    `json:"page_current" validate:"gte=0"`
	Finished      bool   `json:"finished,omitempty"`
	FinishDate    string `json:"finish_date,omitempty" validate:"omitempty,day"`
	Tag1          string `json:"tag1,omitempty" validate:"max=64"`
	Tag2          string `json:"tag2,omitempty" validate:"max=64"`
	Tag3          string `json:"tag3,omitempty" validate:"max=64"`
	Language      string `json:"language,omitempty" validate:"max=16"`
}

// AddBookRequest creates a new book. Title and author determine the slug.
type AddBookRequest struct {
	Title  string `json:"title" validate:"required,max=300"`
	Author string `json:"author" validate:"required,max=200"`
	BookFields
}

// UpdateBookRequest changes a book's properties and progress. Title and
// author are immutable once a book exists.
type UpdateBookRequest struct {
	BookFields
}

// BookService applies the daily edit flows. Every edit rewrites the user's
// batch for today.
type BookService struct {
	logs      store.LogStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a book editing service.
func NewBookService(logs store.LogStore, logger *slog.Logger) *BookService {
	return &BookService{logs: logs, validator: validation.New(), logger: logger}
}

// ValidatePages rejects negative counts and progress past the last page.
func ValidatePages(pageN, pageCurrent int) error {
	switch {
	case pageN < 0 || pageCurrent < 0:
		return domainerrors.ValidationWithDetails("page counts must not be negative",
			map[string]string{"page_current": "must be 0 or greater"})
	case pageCurrent > pageN:
		return domainerrors.ValidationWithDetails("current page exceeds page count",
			map[string]string{"page_current": "must not exceed page_n"})
	}
	return nil
}

// AddBook logs a new book on today's batch.
func (s *BookService) AddBook(ctx context.Context, sess *Session, req AddBookRequest) (*domain.BookLogEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	title, author := strings.TrimSpace(req.Title), strings.TrimSpace(req.Author)
	slug := util.BookSlug(author, title)
	if slug == "" {
		return nil, domainerrors.Validation("title and author must contain letters or digits")
	}
	if sess.HasSlug(slug) {
		return nil, domainerrors.AlreadyExistsf("%s by %s is already in your library", title, author)
	}

	e := domain.BookLogEntry{Slug: slug, Title: title, Author: author}
	if err := applyFields(&e, req.BookFields, sess.Today); err != nil {
		return nil, err
	}

	batch := append(cloneRows(sess.TodayLogs), e)
	if err := s.save(ctx, sess, batch); err != nil {
		return nil, err
	}

	s.logger.Info("book added", "user_id", sess.UserID, "slug", slug, "day", sess.Today)
	return classified(e), nil
}

// UpdateBook records new properties for slug on today's batch.
func (s *BookService) UpdateBook(ctx context.Context, sess *Session, slug string, req UpdateBookRequest) (*domain.BookLogEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	batch := cloneRows(sess.TodayLogs)
	idx := sess.todayIndex(slug)

	var base domain.BookLogEntry
	switch {
	case idx >= 0 && !batch[idx].Deleted:
		base = batch[idx]
	default:
		latest, ok := sess.LatestFor(slug)
		if !ok {
			return nil, domainerrors.NotFoundf("book %s not found", slug)
		}
		base = latest
	}

	e := domain.BookLogEntry{Slug: base.Slug, Title: base.Title, Author: base.Author}
	if err := applyFields(&e, req.BookFields, sess.Today); err != nil {
		return nil, err
	}
	batch = putRow(batch, idx, e)

	if err := s.save(ctx, sess, batch); err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "user_id", sess.UserID, "slug", slug, "page_current", e.PageCurrent)
	return classified(e), nil
}

// DeleteBook soft-deletes slug as of today.
func (s *BookService) DeleteBook(ctx context.Context, sess *Session, slug string) error {
	batch := cloneRows(sess.TodayLogs)
	idx := sess.todayIndex(slug)

	var e domain.BookLogEntry
	if idx >= 0 {
		e = batch[idx]
	} else {
		latest, ok := sess.LatestFor(slug)
		if !ok {
			return domainerrors.NotFoundf("book %s not found", slug)
		}
		e = latest
		e.LogCreatedAt = sess.Today
	}
	if e.Deleted {
		return domainerrors.NotFoundf("book %s not found", slug)
	}
	e.Deleted = true
	e.State = ""
	batch = putRow(batch, idx, e)

	if err := s.save(ctx, sess, batch); err != nil {
		return err
	}

	s.logger.Info("book deleted", "user_id", sess.UserID, "slug", slug)
	return nil
}

// RevertDeletion undoes a deletion made earlier the same day.
func (s *BookService) RevertDeletion(ctx context.Context, sess *Session, slug string) (*domain.BookLogEntry, error) {
	idx := sess.todayIndex(slug)
	if idx < 0 || !sess.TodayLogs[idx].Deleted {
		return nil, domainerrors.NotFoundf("no deletion of %s recorded today", slug)
	}

	batch := cloneRows(sess.TodayLogs)
	batch[idx].Deleted = false
	if err := s.save(ctx, sess, batch); err != nil {
		return nil, err
	}

	s.logger.Info("book deletion reverted", "user_id", sess.UserID, "slug", slug)
	return classified(batch[idx]), nil
}

func (s *BookService) save(ctx context.Context, sess *Session, batch []domain.BookLogEntry) error {
	if err := s.logs.UpsertDay(ctx, sess.UserID, sess.Today, batch); err != nil {
		return domainerrors.Storage(err, "save today's log")
	}
	return nil
}

// applyFields copies f onto e, logged on today.
func applyFields(e *domain.BookLogEntry, f BookFields, today time.Time) error {
	if err := ValidatePages(f.PageN, f.PageCurrent); err != nil {
		return err
	}

	e.Subtitle = strings.TrimSpace(f.Subtitle)
	e.Publisher = strings.TrimSpace(f.Publisher)
	e.Location = strings.TrimSpace(f.Location)
	e.PublishedYear = f.PublishedYear
	e.PageN = f.PageN
	e.PageCurrent = f.PageCurrent
	e.Tag1, e.Tag2, e.Tag3 = f.Tag1, f.Tag2, f.Tag3
	e.Language = f.Language
	e.LogCreatedAt = today
	e.FinishDate = nil
	if f.Finished {
		e.FinishDate = domain.DayPtr(today)
		if f.FinishDate != "" {
			d, err := domain.ParseDay(f.FinishDate)
			if err != nil {
				return domainerrors.Validationf("finish_date %q is not a date", f.FinishDate)
			}
			e.FinishDate = &d
		}
	}
	e.Started = e.PageCurrent > 0 || e.FinishDate != nil
	return nil
}

func cloneRows(rows []domain.BookLogEntry) []domain.BookLogEntry {
	out := make([]domain.BookLogEntry, len(rows), len(rows)+1)
	for i := range rows {
		out[i] = rows[i].Clone()
	}
	return out
}

// putRow replaces batch[idx] or appends when idx is -1.
func putRow(batch []domain.BookLogEntry, idx int, e domain.BookLogEntry) []domain.BookLogEntry {
	if idx >= 0 {
		batch[idx] = e
		return batch
	}
	return append(batch, e)
}

func classified(e domain.BookLogEntry) *domain.BookLogEntry {
	e.State = readlog.Classify(&e)
	return &e
}
