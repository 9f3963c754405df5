package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// Log rows live under log:<user>:<YYYY-MM-DD>:<slug>. The fixed-width day
// segment makes prefix iteration return rows ordered by (day, slug).
const logPrefix = "log:"

func userLogPrefix(userID string) []byte {
	return []byte(logPrefix + userID + ":")
}

func dayLogPrefix(userID string, day time.Time) []byte {
	return []byte(logPrefix + userID + ":" + domain.DayKey(day) + ":")
}

func logKey(userID string, day time.Time, slug string) []byte {
	return append(dayLogPrefix(userID, day), slug...)
}

// ReadAll implements LogStore.
func (s *Store) ReadAll(ctx context.Context, userID string) ([]domain.BookLogEntry, error) {
	prefix := userLogPrefix(userID)
	rows := []domain.BookLogEntry{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var e domain.BookLogEntry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
				}
				e.FinishDate = domain.NormalizeFinishDate(e.FinishDate)
				e.State = ""
				rows = append(rows, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read logs: %w", err)
	}
	return rows, nil
}

// UpsertDay implements LogStore.
func (s *Store) UpsertDay(ctx context.Context, userID string, day time.Time, rows []domain.BookLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch, err := PrepareDay(day, rows)
	if err != nil {
		return err
	}
	day = domain.Day(day)

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keysWithPrefix(txn, dayLogPrefix(userID, day)) {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for i := range batch {
			if err := setTxn(txn, logKey(userID, day, batch[i].Slug), &batch[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert day %s: %w", domain.DayKey(day), err)
	}

	s.logger.Debug("day upserted", "user_id", userID, "day", day, "rows", len(batch))
	return nil
}
