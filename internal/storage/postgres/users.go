package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

// CreateUser inserts a new user. A taken username or email is storage.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.ImageFile == "" {
		user.ImageFile = models.DefaultImageFile
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return nil
}

// GetUserByID retrieves a user by ID. Returns storage.ErrNotFound on a miss.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("user %d: %w", id, translateError(err))
	}
	return &user, nil
}

// GetUserByEmail returns nil, nil if no user has this email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

// GetUserByUsername returns nil, nil if no user has this username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

// UpdateUser writes the username and email of an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"username": user.Username, "email": user.Email})
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, storage.ErrNotFound)
	}
	return nil
}

// findUser returns nil, nil when nothing matches.
func (s *Store) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
