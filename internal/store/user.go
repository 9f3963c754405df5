package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

const (
	userPrefix           = "user:"
	userByUsernamePrefix = "idx:users:username:" // For login lookups
)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// CreateUser creates a new user account.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)
	nameKey := []byte(userByUsernamePrefix + normalizeUsername(user.Username))

	return s.db.Update(func(txn *badger.Txn) error {
		exists, err := existsTxn(txn, key)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if exists {
			return ErrAlreadyExists.WithMessage("user already exists")
		}

		taken, err := existsTxn(txn, nameKey)
		if err != nil {
			return fmt.Errorf("check username exists: %w", err)
		}
		if taken {
			return ErrAlreadyExists.WithMessage("username already in use")
		}

		if err := setTxn(txn, key, user); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.get([]byte(userPrefix+id), &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound.WithMessage("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username, ignoring case.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	nameKey := []byte(userByUsernamePrefix + normalizeUsername(username))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound.WithMessage("user not found")
		}
		return nil, fmt.Errorf("lookup user by username: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// UpdateUser updates an existing user, moving the username index if the
// username changed.
func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.User
		if err := getTxn(txn, key, &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound.WithMessage("user not found")
			}
			return err
		}

		oldName, newName := normalizeUsername(old.Username), normalizeUsername(user.Username)
		if oldName != newName {
			newKey := []byte(userByUsernamePrefix + newName)
			taken, err := existsTxn(txn, newKey)
			if err != nil {
				return fmt.Errorf("check new username: %w", err)
			}
			if taken {
				return ErrAlreadyExists.WithMessage("username already in use")
			}
			if err := txn.Delete([]byte(userByUsernamePrefix + oldName)); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(user.ID)); err != nil {
				return err
			}
		}

		return setTxn(txn, key, user)
	})
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	prefix := []byte(userPrefix)
	var users []*domain.User

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
				var u domain.User
				if err := json.Unmarshal(val, &u); err != nil {
					return err
				}
				users = append(users, &u)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	slices.SortFunc(users, func(a, b *domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}
