package models

import "time"

// DefaultImageFile is the avatar assigned to every new account.
const DefaultImageFile = "default.svg"

// User represents a registered user account.
type User struct {
	// ID is the unique, immutable identifier assigned by the store.
	ID int64 `gorm:"primaryKey"`

	// Username is the public display name (unique, 2-20 characters).
	Username string `gorm:"size:20;uniqueIndex;not null"`

	// Email is the login identifier (unique).
	Email string `gorm:"size:120;uniqueIndex;not null"`

	// ImageFile names the avatar under the static profile_pics directory.
	ImageFile string `gorm:"size:20;not null;default:default.svg"`

	// PasswordHash is the bcrypt hash of the password. Never plaintext.
	PasswordHash string `gorm:"column:password;size:60;not null"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time
}

// NewUser creates a user with the default avatar.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Username:     username,
		Email:        email,
		ImageFile:    DefaultImageFile,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}
