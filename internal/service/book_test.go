package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
)

func addReq(title, author string, pageN, current int) AddBookRequest {
	return AddBookRequest{
		Title:  title,
		Author: author,
		BookFields: BookFields{
			PageN:       pageN,
			PageCurrent: current,
		},
	}
}

func TestValidatePages(t *testing.T) {
	assert.NoError(t, ValidatePages(100, 0))
	assert.NoError(t, ValidatePages(100, 100))
	assert.ErrorIs(t, ValidatePages(100, 101), domainerrors.ErrValidation)
	assert.ErrorIs(t, ValidatePages(-1, 0), domainerrors.ErrValidation)
	assert.ErrorIs(t, ValidatePages(10, -2), domainerrors.ErrValidation)
}

func TestAddBook(t *testing.T) {
	env := setupEnv(t, false)
	ctx := context.Background()

	e, err := env.books.AddBook(ctx, env.load(t, "u1"), addReq("Egy polgár vallomásai", "Márai Sándor", 512, 62))
	require.NoError(t, err)
	assert.Equal(t, "marai-sandor-egy-polgar-vallomasai", e.Slug)
	assert.Equal(t, domain.StateInProgress, e.State)
	assert.True(t, e.Started)
	assert.Equal(t, testToday, e.LogCreatedAt)

	rows, err := env.store.ReadAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, testToday, rows[0].LogCreatedAt)
}

func TestAddBook_KeepsTodaysBatch(t *testing.T) {
	env := setupEnv(t, false)
	ctx := context.Background()

	_, err := env.books.AddBook(ctx, env.load(t, "u1"), addReq("First", "Writer", 10, 0))
	require.NoError(t, err)
	_, err = env.books.AddBook(ctx, env.load(t, "u1"), addReq("Second", "Writer", 10, 0))
	require.NoError(t, err)

	sess := env.load(t, "u1")
	assert.Len(t, sess.TodayLogs, 2)
}

func TestAddBook_Duplicate(t *testing.T) {
	env := setupEnv(t, false)
	env.seed(t, "u1", "2024-03-01", domain.BookLogEntry{Slug: "writer-first", Title: "First", Author: "Writer", PageN: 10})

	_, err := env.books.AddBook(context.Background(), env.load(t, "u1"), addReq("First", "Writer", 10, 0))
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAddBook_Invalid(t *testing.T) {
	env := setupEnv(t, false)
	sess := env.load(t, "u1")

	_, err := env.books.AddBook(context.Background(), sess, addReq("", "Writer", 10, 0))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.books.AddBook(context.Background(), sess, addReq("Book", "Writer", 10, 11))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.books.AddBook(context.Background(), sess, addReq("???", "!!!", 10, 0))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAddBook_Finished(t *testing.T) {
	env := setupEnv(t, false)
	req := addReq("Done", "Writer", 10, 10)
	req.Finished = true

	e, err := env.books.AddBook(context.Background(), env.load(t, "u1"), req)
	require.NoError(t, err)
	require.NotNil(t, e.FinishDate)
	assert.Equal(t, testToday, *e.FinishDate)
	assert.Equal(t, domain.StateFinished, e.State)

	req = addReq("Explicit", "Writer", 10, 10)
	req.Finished = true
	req.FinishDate = "2024-04-01"
	e, err = env.books.AddBook(context.Background(), env.load(t, "u1"), req)
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseDay("2024-04-01"), *e.FinishDate)
}

func TestUpdateBook(t *testing.T) {
	env := setupEnv(t, false)
	ctx := context.Background()
	env.seed(t, "u1", "2024-04-01", book("a", 100, 10))

	e, err := env.books.UpdateBook(ctx, env.load(t, "u1"), "a", UpdateBookRequest{BookFields{PageN: 100, PageCurrent: 40, Publisher: "Press"}})
	require.NoError(t, err)
	assert.Equal(t, "Title a", e.Title, "title is immutable")
	assert.Equal(t, 40, e.PageCurrent)

	// a second update on the same day replaces the row
	_, err = env.books.UpdateBook(ctx, env.load(t, "u1"), "a", UpdateBookRequest{BookFields{PageN: 100, PageCurrent: 55}})
	require.NoError(t, err)

	rows, err := env.store.ReadAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 10, rows[0].PageCurrent, "history is untouched")
	assert.Equal(t, 55, rows[1].PageCurrent)
	assert.Empty(t, rows[1].Publisher)
}

func TestUpdateBook_NotFound(t *testing.T) {
	env := setupEnv(t, false)

	_, err := env.books.UpdateBook(context.Background(), env.load(t, "u1"), "ghost", UpdateBookRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteAndRevert(t *testing.T) {
	env := setupEnv(t, false)
	ctx := context.Background()
	env.seed(t, "u1", "2024-04-01", book("a", 100, 10))

	require.NoError(t, env.books.DeleteBook(ctx, env.load(t, "u1"), "a"))

	sess := env.load(t, "u1")
	assert.Empty(t, sess.Latest)
	assert.ErrorIs(t, env.books.DeleteBook(ctx, sess, "a"), domainerrors.ErrNotFound)

	e, err := env.books.RevertDeletion(ctx, sess, "a")
	require.NoError(t, err)
	assert.False(t, e.Deleted)
	assert.Equal(t, 10, e.PageCurrent)

	sess = env.load(t, "u1")
	require.Len(t, sess.Latest, 1)
	assert.Equal(t, "a", sess.Latest[0].Slug)
}

func TestDeleteBook_TodaysRow(t *testing.T) {
	env := setupEnv(t, false)
	ctx := context.Background()
	env.seed(t, "u1", "2024-04-10", book("a", 100, 10), book("b", 100, 0))

	require.NoError(t, env.books.DeleteBook(ctx, env.load(t, "u1"), "a"))

	sess := env.load(t, "u1")
	assert.Len(t, sess.TodayLogs, 2)
	require.Len(t, sess.Latest, 1)
	assert.Equal(t, "b", sess.Latest[0].Slug)
}

func TestRevertDeletion_OnlySameDay(t *testing.T) {
	env := setupEnv(t, false)
	gone := book("a", 100, 10)
	gone.Deleted = true
	env.seed(t, "u1", "2024-04-09", gone)

	_, err := env.books.RevertDeletion(context.Background(), env.load(t, "u1"), "a")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteBook_NotFound(t *testing.T) {
	env := setupEnv(t, false)
	assert.ErrorIs(t, env.books.DeleteBook(context.Background(), env.load(t, "u1"), "ghost"), domainerrors.ErrNotFound)
}
