package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

const userColumns = `id, username, email, image_file, password, created_at`

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.ImageFile == "" {
		user.ImageFile = models.DefaultImageFile
	}

	query := `
		INSERT INTO users (username, email, image_file, password, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.ImageFile,
		user.PasswordHash,
		toUnix(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.getUser(ctx, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.getUser(ctx, "email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.getUser(ctx, "username = ?", username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// UpdateUser writes the mutable profile fields of an existing user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ? WHERE id = ?",
		user.Username, user.Email, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translateError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", user.ID, storage.ErrNotFound)
	}

	return nil
}

// getUser returns nil, nil when no row matches.
func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where,
		arg,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.ImageFile,
		&user.PasswordHash,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, err
	}

	user.CreatedAt = fromUnix(createdAt)
	return user, nil
}
