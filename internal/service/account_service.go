package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/runlog/internal/auth"
	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

// AccountService registers, authenticates and updates users.
type AccountService struct {
	authenticator auth.Authenticator
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(authenticator auth.Authenticator, users storage.UserStore, logger *slog.Logger) *AccountService {
	return &AccountService{
		authenticator: authenticator,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account.
// Returns auth.ErrEmailExists or auth.ErrUsernameTaken when either is in use.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := s.authenticator.Register(ctx, username, email, password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks an email and password.
// Any mismatch is auth.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return user, nil
}

// UpdateAccount changes the username and email of user.
// user is only modified once the store accepts the change.
func (s *AccountService) UpdateAccount(ctx context.Context, user *models.User, username, email string) error {
	if user == nil {
		return ErrUnauthenticated
	}

	updated := *user
	updated.Username = username
	updated.Email = email

	if err := s.users.UpdateUser(ctx, &updated); err != nil {
		s.logger.Error("UpdateAccount failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	*user = updated
	s.logger.Info("Account updated", "user_id", user.ID)
	return nil
}

// UserByID loads the user a session token refers to.
func (s *AccountService) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}
