package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

// logColumns is the ordered list of columns selected in log queries.
// Must match the scan order in scanLog.
const logColumns = `slug, title, subtitle, author, publisher, location, published_year,
	page_n, page_current, finish_date, tag1, tag2, tag3, language, log_created_at, started, deleted`

// scanLog scans one book_logs row.
func scanLog(scanner interface{ Scan(dest ...any) error }) (domain.BookLogEntry, error) {
	var (
		e                                   domain.BookLogEntry
		subtitle, publisher, location, lang sql.NullString
		tag1, tag2, tag3, finishDate        sql.NullString
		year                                sql.NullInt64
		logDay                              string
		started, deleted                    int
	)

	err := scanner.Scan(
		&e.Slug, &e.Title, &subtitle, &e.Author, &publisher, &location, &year,
		&e.PageN, &e.PageCurrent, &finishDate, &tag1, &tag2, &tag3, &lang,
		&logDay, &started, &deleted,
	)
	if err != nil {
		return e, err
	}

	e.Subtitle = subtitle.String
	e.Publisher = publisher.String
	e.Location = location.String
	e.PublishedYear = int(year.Int64)
	e.Tag1, e.Tag2, e.Tag3 = tag1.String, tag2.String, tag3.String
	e.Language = lang.String
	e.Started = started != 0
	e.Deleted = deleted != 0

	if e.LogCreatedAt, err = domain.ParseDay(logDay); err != nil {
		return e, fmt.Errorf("parse log_created_at: %w", err)
	}
	fd, err := parseNullableDay(finishDate)
	if err != nil {
		return e, fmt.Errorf("parse finish_date: %w", err)
	}
	e.FinishDate = domain.NormalizeFinishDate(fd)
	return e, nil
}

// ReadAll implements store.LogStore.
func (s *Store) ReadAll(ctx context.Context, userID string) ([]domain.BookLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM book_logs WHERE user_id = ? ORDER BY log_created_at, slug`, userID)
	if err != nil {
		return nil, fmt.Errorf("read logs: %w", err)
	}
	defer rows.Close()

	out := []domain.BookLogEntry{}
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read logs: %w", err)
	}
	return out, nil
}

// UpsertDay implements store.LogStore. The delete and inserts share one
// transaction so readers never see a partial day.
func (s *Store) UpsertDay(ctx context.Context, userID string, day time.Time, rows []domain.BookLogEntry) error {
	batch, err := store.PrepareDay(day, rows)
	if err != nil {
		return err
	}
	dayKey := domain.DayKey(domain.Day(day))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM book_logs WHERE user_id = ? AND log_created_at = ?`, userID, dayKey); err != nil {
		return fmt.Errorf("clear day %s: %w", dayKey, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO book_logs (user_id, `+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, slug, log_created_at) DO UPDATE SET
			title = excluded.title, subtitle = excluded.subtitle, author = excluded.author,
			publisher = excluded.publisher, location = excluded.location,
			published_year = excluded.published_year, page_n = excluded.page_n,
			page_current = excluded.page_current, finish_date = excluded.finish_date,
			tag1 = excluded.tag1, tag2 = excluded.tag2, tag3 = excluded.tag3,
			language = excluded.language, started = excluded.started, deleted = excluded.deleted`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range batch {
		e := &batch[i]
		_, err := stmt.ExecContext(ctx, userID,
			e.Slug, e.Title, nullString(e.Subtitle), e.Author, nullString(e.Publisher),
			nullString(e.Location), nullInt64(int64(e.PublishedYear)),
			e.PageN, e.PageCurrent, nullDayString(e.FinishDate),
			nullString(e.Tag1), nullString(e.Tag2), nullString(e.Tag3), nullString(e.Language),
			dayKey, boolInt(e.Started), boolInt(e.Deleted),
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", e.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day %s: %w", dayKey, err)
	}

	s.logger.Debug("day upserted", "user_id", userID, "day", dayKey, "rows", len(batch))
	return nil
}
