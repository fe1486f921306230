// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/runlog/internal/models"
)

var (
	// ErrNotFound is returned when a record looked up by ID does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)

// UserStore is the user half of Store.
type UserStore interface {
	// CreateUser persists a new user. user.ID is populated by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if there is no such user.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByEmail returns nil, nil if no user has this email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername returns nil, nil if no user has this username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateUser writes the username and email of an existing user.
	UpdateUser(ctx context.Context, user *models.User) error
}

// RunStore is the run half of Store.
type RunStore interface {
	// CreateRun persists a new run. run.ID is populated by the store.
	CreateRun(ctx context.Context, run *models.Run) error

	// GetRun retrieves a run with its author. Returns ErrNotFound on a miss.
	GetRun(ctx context.Context, id int64) (*models.Run, error)

	// ListRunsByAuthor returns one page of the author's runs, newest first.
	ListRunsByAuthor(ctx context.Context, authorID int64, page, perPage int) (*models.Page[*models.Run], error)

	// DeleteRun removes a run. Returns ErrNotFound if it does not exist.
	DeleteRun(ctx context.Context, id int64) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	RunStore

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Offset returns the row offset of a 1-based page.
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}
