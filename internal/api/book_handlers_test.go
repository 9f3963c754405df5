package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookkeeperapp/bookkeeper-server/internal/backup"
	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

func newBook(title, author string, pageN, current int) map[string]any {
	return map[string]any{
		"title":        title,
		"author":       author,
		"publisher":    "Tor",
		"page_n":       pageN,
		"page_current": current,
	}
}

func TestBooks_AddUpdateDeleteRestore(t *testing.T) {
	ts := setupTestServer(t, Options{})
	bearer := ts.register(t, "reader")

	resp := ts.api.Post("/api/v1/books", bearer, newBook("Dune", "Frank Herbert", 600, 50))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	added := decode[domain.BookLogEntry](t, resp)
	assert.Equal(t, "frank-herbert-dune", added.Data.Slug)
	assert.Equal(t, domain.StateInProgress, added.Data.State)

	resp = ts.api.Post("/api/v1/books", bearer, newBook("Dune", "Frank Herbert", 600, 0))
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Put("/api/v1/books/frank-herbert-dune", bearer, map[string]any{
		"page_n":       600,
		"page_current": 600,
		"finished":     true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[domain.BookLogEntry](t, resp)
	assert.Equal(t, domain.StateFinished, updated.Data.State)
	require.NotNil(t, updated.Data.FinishDate)

	resp = ts.api.Put("/api/v1/books/frank-herbert-dune", bearer, map[string]any{
		"page_n":       100,
		"page_current": 200,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	list := decode[BookListResponse](t, ts.api.Get("/api/v1/books", bearer))
	require.Len(t, list.Data.Books, 1)
	assert.Equal(t, 600, list.Data.Books[0].PageCurrent)

	resp = ts.api.Delete("/api/v1/books/frank-herbert-dune", bearer)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	list = decode[BookListResponse](t, ts.api.Get("/api/v1/books", bearer))
	assert.Empty(t, list.Data.Books)

	resp = ts.api.Post("/api/v1/books/frank-herbert-dune/restore", bearer)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	list = decode[BookListResponse](t, ts.api.Get("/api/v1/books", bearer))
	assert.Len(t, list.Data.Books, 1)

	resp = ts.api.Delete("/api/v1/books/missing-book", bearer)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBooks_Filters(t *testing.T) {
	ts := setupTestServer(t, Options{})
	bearer := ts.register(t, "reader")

	for _, b := range []map[string]any{
		newBook("Dune", "Frank Herbert", 600, 0),
		newBook("Emma", "Jane Austen", 400, 10),
		newBook("Persuasion", "Jane Austen", 250, 0),
	} {
		resp := ts.api.Post("/api/v1/books", bearer, b)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}

	list := decode[BookListResponse](t, ts.api.Get("/api/v1/books?author=Jane%20Austen", bearer))
	assert.Equal(t, 2, list.Data.Total)
	assert.Equal(t, []string{"Frank Herbert", "Jane Austen"}, list.Data.Authors)
	assert.False(t, list.Data.IsExample)

	list = decode[BookListResponse](t, ts.api.Get("/api/v1/books?state=in%20progress", bearer))
	require.Equal(t, 1, list.Data.Total)
	assert.Equal(t, "Emma", list.Data.Books[0].Title)

	resp := ts.api.Get("/api/v1/books?state=abandoned", bearer)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	overview := decode[OverviewResponse](t, ts.api.Get("/api/v1/books/overview", bearer))
	assert.Len(t, overview.Data.Rows, 3)
	assert.Equal(t, "Number of Pages", overview.Data.Columns[4])
}

func TestBooks_HistoryAndSnapshot(t *testing.T) {
	ts := setupTestServer(t, Options{})
	bearer := ts.register(t, "reader")

	user, err := ts.store.GetUserByUsername(t.Context(), "reader")
	require.NoError(t, err)

	require.NoError(t, ts.store.UpsertDay(t.Context(), user.ID, domain.MustParseDay("2024-03-01"), []domain.BookLogEntry{
		{Slug: "a-book", Title: "Book", Author: "A", PageN: 100, PageCurrent: 10, Started: true},
	}))
	require.NoError(t, ts.store.UpsertDay(t.Context(), user.ID, domain.MustParseDay("2024-03-05"), []domain.BookLogEntry{
		{Slug: "a-book", Title: "Book", Author: "A", PageN: 100, PageCurrent: 40, Started: true},
	}))

	logs := decode[BookLogsResponse](t, ts.api.Get("/api/v1/books/a-book/logs", bearer))
	require.Len(t, logs.Data.Logs, 2)
	assert.Equal(t, 10, logs.Data.Logs[0].PageCurrent)

	after := decode[domain.BookLogEntry](t, ts.api.Get("/api/v1/books/a-book/snapshot?date=2024-03-03", bearer))
	assert.Equal(t, 40, after.Data.PageCurrent)

	before := decode[domain.BookLogEntry](t, ts.api.Get("/api/v1/books/a-book/snapshot?date=2024-03-03&side=before", bearer))
	assert.Equal(t, 10, before.Data.PageCurrent)

	resp := ts.api.Get("/api/v1/books/a-book/snapshot?date=2024-04-01", bearer)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "OUT_OF_RANGE", decode[any](t, resp).Code)

	resp = ts.api.Get("/api/v1/books/a-book/snapshot?date=March", bearer)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/v1/books/other/logs", bearer).Code)

	timeline := decode[TimelineResponse](t, ts.api.Get("/api/v1/timeline?from=2024-03-02&to=2024-03-04", bearer))
	assert.Equal(t, "2024-03-01", timeline.Data.First)
	assert.Equal(t, "2024-03-05", timeline.Data.Last)
	require.Len(t, timeline.Data.Rows, 3)
	for _, row := range timeline.Data.Rows {
		assert.Equal(t, 10, row.Entry.PageCurrent, "gap days carry the earlier snapshot")
		assert.False(t, row.Observed)
	}

	resp = ts.api.Get("/api/v1/timeline?from=2024-03-05&to=2024-03-01", bearer)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestToday_And_Stats(t *testing.T) {
	ts := setupTestServer(t, Options{})
	bearer := ts.register(t, "reader")

	resp := ts.api.Post("/api/v1/books", bearer, newBook("Emma", "Jane Austen", 400, 10))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	today := decode[TodayResponse](t, ts.api.Get("/api/v1/today", bearer))
	assert.Equal(t, domain.DayKey(domain.Day(time.Now())), today.Data.Date)
	require.Len(t, today.Data.Logs, 1)

	stats := decode[domain.ReadingStats](t, ts.api.Get("/api/v1/stats", bearer))
	assert.Equal(t, 1, stats.Data.TotalBooks)
	assert.Equal(t, 1, stats.Data.Count(domain.StateInProgress))
	require.Len(t, stats.Data.InProgress, 1)
	assert.Equal(t, 2.5, stats.Data.InProgress[0].Percent)
}

func TestExport(t *testing.T) {
	ts := setupTestServer(t, Options{})
	bearer := ts.register(t, "reader")

	resp := ts.api.Post("/api/v1/books", bearer, newBook("Emma", "Jane Austen", 400, 10))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/export?format=yaml", bearer)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, backup.FormatYAML.ContentType(), resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, resp.Body.String(), "jane-austen-emma")

	resp = ts.api.Get("/api/v1/export", bearer)
	require.Equal(t, http.StatusOK, resp.Code)
	var doc backup.Document
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, 1, doc.Manifest.Rows)
	assert.True(t, strings.HasSuffix(resp.Header().Get("Content-Disposition"), `.json"`))

	resp = ts.api.Get("/api/v1/export?format=csv", bearer)
	assert.GreaterOrEqual(t, resp.Code, http.StatusBadRequest)
}
