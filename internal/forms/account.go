package forms

import (
	"context"
	"net/url"
	"strings"

	"github.com/mmynk/runlog/internal/models"
)

// RegistrationForm is the sign-up form.
type RegistrationForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Errors          Errors
}

func ParseRegistration(v url.Values) *RegistrationForm {
	return &RegistrationForm{
		Username:        strings.TrimSpace(v.Get("username")),
		Email:           strings.TrimSpace(v.Get("email")),
		Password:        v.Get("password"),
		ConfirmPassword: v.Get("confirm_password"),
		Errors:          Errors{},
	}
}

// Validate checks the fields and that username and email are free.
func (f *RegistrationForm) Validate(ctx context.Context, lookup UserLookup) (bool, error) {
	if required(f.Errors, "username", f.Username) &&
		length(f.Errors, "username", f.Username, usernameMin, usernameMax) {
		if err := uniqueUsername(ctx, lookup, f.Errors, f.Username, nil); err != nil {
			return false, err
		}
	}

	if required(f.Errors, "email", f.Email) && email(f.Errors, "email", f.Email) {
		if err := uniqueEmail(ctx, lookup, f.Errors, f.Email, nil); err != nil {
			return false, err
		}
	}

	required(f.Errors, "password", f.Password)

	if required(f.Errors, "confirm_password", f.ConfirmPassword) && f.ConfirmPassword != f.Password {
		f.Errors.Add("confirm_password", "Field must be equal to password.")
	}

	return f.Errors.Valid(), nil
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string
	Password string
	Remember bool
	Errors   Errors
}

func ParseLogin(v url.Values) *LoginForm {
	return &LoginForm{
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
		Remember: checkbox(v.Get("remember")),
		Errors:   Errors{},
	}
}

// Validate checks field shape only. Whether the credentials are right is
// decided by the authenticator.
func (f *LoginForm) Validate() bool {
	if required(f.Errors, "email", f.Email) {
		email(f.Errors, "email", f.Email)
	}
	required(f.Errors, "password", f.Password)
	return f.Errors.Valid()
}

// AccountForm updates the username and email of the current user.
type AccountForm struct {
	Username string
	Email    string
	Errors   Errors
}

func ParseAccount(v url.Values) *AccountForm {
	return &AccountForm{
		Username: strings.TrimSpace(v.Get("username")),
		Email:    strings.TrimSpace(v.Get("email")),
		Errors:   Errors{},
	}
}

// AccountFormFor pre-populates the form from the user's current values.
func AccountFormFor(u *models.User) *AccountForm {
	return &AccountForm{Username: u.Username, Email: u.Email, Errors: Errors{}}
}

// Validate checks the fields. A username or email only has to be free when
// it differs from the user's own.
func (f *AccountForm) Validate(ctx context.Context, lookup UserLookup, self *models.User) (bool, error) {
	if required(f.Errors, "username", f.Username) &&
		length(f.Errors, "username", f.Username, usernameMin, usernameMax) &&
		f.Username != self.Username {
		if err := uniqueUsername(ctx, lookup, f.Errors, f.Username, self); err != nil {
			return false, err
		}
	}

	if required(f.Errors, "email", f.Email) && email(f.Errors, "email", f.Email) &&
		f.Email != self.Email {
		if err := uniqueEmail(ctx, lookup, f.Errors, f.Email, self); err != nil {
			return false, err
		}
	}

	return f.Errors.Valid(), nil
}
