package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/runlog/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingPassword    = errors.New("password is required")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
)

// dummyHash is compared against when the email is unknown, so a miss costs
// the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("runlog-dummy-password"), bcrypt.DefaultCost)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// HashPassword returns a salted bcrypt hash of plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches hash.
// A malformed hash is a mismatch, not an error.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential only requires a password to be present.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if credential == "" {
		return ErrMissingPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, email, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	existing, err = a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := HashPassword(credential)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(username, email, hashedPassword)

	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(credential))
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(credential, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
