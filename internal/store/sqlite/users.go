package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, display_name, password_hash, created_at, last_login_at`

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// scanUser scans a sql.Row (or sql.Rows) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u           domain.User
		displayName sql.NullString
		createdAt   string
		lastLoginAt sql.NullString
	)

	err := scanner.Scan(&u.ID, &u.Username, &displayName, &u.PasswordHash, &createdAt, &lastLoginAt)
	if err != nil {
		return nil, err
	}

	u.DisplayName = displayName.String
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.LastLoginAt, err = parseNullableTime(lastLoginAt); err != nil {
		return nil, fmt.Errorf("parse last_login_at: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user. Returns store.ErrAlreadyExists on a
// duplicate ID or username.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, username_key, display_name, password_hash, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, usernameKey(u.Username), nullString(u.DisplayName),
		u.PasswordHash, formatTime(u.CreatedAt), nullTimeString(u.LastLoginAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("user already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return s.userFromRow(row)
}

// GetUserByUsername retrieves a user by username, ignoring case.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username_key = ?`, usernameKey(username))
	return s.userFromRow(row)
}

func (s *Store) userFromRow(row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateUser overwrites the mutable fields of an existing user.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, username_key = ?, display_name = ?, password_hash = ?, last_login_at = ?
		WHERE id = ?`,
		u.Username, usernameKey(u.Username), nullString(u.DisplayName),
		u.PasswordHash, nullTimeString(u.LastLoginAt), u.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("username already in use")
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
