// Package forms parses and validates the HTML forms of the site.
//
// Each form is parsed from url.Values, then validated. Validation never
// fails the request: field problems are collected in Errors and the form is
// shown again. The error return of Validate is reserved for storage failures
// during uniqueness checks.
package forms

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/runlog/internal/models"
)

const (
	msgRequired      = "This field is required."
	msgInvalidEmail  = "Invalid email address."
	msgUsernameTaken = "That username is taken. Please choose a different one."
	msgEmailTaken    = "That email is taken. Please choose a different one."
	msgLength        = "Field must be between %d and %d characters long."
	msgInvalidChoice = "Not a valid choice."

	usernameMin = 2
	usernameMax = 20
	emailMax    = 120
)

// UserLookup is what uniqueness checks need from storage.
// Both methods return nil, nil when nothing matches.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Errors maps a field name to its messages.
type Errors map[string][]string

// Add records a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has any message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Valid reports whether no field has a message.
func (e Errors) Valid() bool {
	return len(e) == 0
}

func required(errs Errors, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, msgRequired)
		return false
	}
	return true
}

func length(errs Errors, field, value string, min, max int) bool {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		errs.Add(field, fmt.Sprintf(msgLength, min, max))
		return false
	}
	return true
}

// email accepts a bare address such as "alice@example.com".
// Display-name forms ("Alice <alice@example.com>") are rejected.
func email(errs Errors, field, value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@")+1:], ".") {
		errs.Add(field, msgInvalidEmail)
		return false
	}
	if utf8.RuneCountInString(value) > emailMax {
		errs.Add(field, fmt.Sprintf(msgLength, 1, emailMax))
		return false
	}
	return true
}

// uniqueUsername adds an error when username belongs to a user other than self.
func uniqueUsername(ctx context.Context, lookup UserLookup, errs Errors, username string, self *models.User) error {
	u, err := lookup.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("username lookup: %w", err)
	}
	if u != nil && (self == nil || u.ID != self.ID) {
		errs.Add("username", msgUsernameTaken)
	}
	return nil
}

// uniqueEmail adds an error when addr belongs to a user other than self.
func uniqueEmail(ctx context.Context, lookup UserLookup, errs Errors, addr string, self *models.User) error {
	u, err := lookup.GetUserByEmail(ctx, addr)
	if err != nil {
		return fmt.Errorf("email lookup: %w", err)
	}
	if u != nil && (self == nil || u.ID != self.ID) {
		errs.Add("email", msgEmailTaken)
	}
	return nil
}

func checkbox(v string) bool {
	switch strings.ToLower(v) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}
