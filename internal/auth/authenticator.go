package auth

import (
	"context"

	"github.com/mmynk/runlog/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given username, email and credential.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, username, email, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Every kind of mismatch yields ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
