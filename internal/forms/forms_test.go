package forms

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/runlog/internal/models"
)

type fakeLookup struct {
	users []*models.User
	err   error
}

func (f *fakeLookup) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func alice() *models.User {
	return &models.User{ID: 1, Username: "alice", Email: "a@x.io"}
}

func TestRegistrationForm(t *testing.T) {
	ctx := context.Background()
	lookup := &fakeLookup{users: []*models.User{alice()}}

	tests := []struct {
		name   string
		values url.Values
		valid  bool
		fields []string
	}{
		{
			name:   "valid",
			values: url.Values{"username": {"bob"}, "email": {"b@x.io"}, "password": {"pw123"}, "confirm_password": {"pw123"}},
			valid:  true,
		},
		{
			name:   "empty",
			values: url.Values{},
			fields: []string{"username", "email", "password", "confirm_password"},
		},
		{
			name:   "username too short",
			values: url.Values{"username": {"b"}, "email": {"b@x.io"}, "password": {"pw"}, "confirm_password": {"pw"}},
			fields: []string{"username"},
		},
		{
			name:   "username too long",
			values: url.Values{"username": {"abcdefghijklmnopqrstu"}, "email": {"b@x.io"}, "password": {"pw"}, "confirm_password": {"pw"}},
			fields: []string{"username"},
		},
		{
			name:   "taken username and email",
			values: url.Values{"username": {"alice"}, "email": {"a@x.io"}, "password": {"pw"}, "confirm_password": {"pw"}},
			fields: []string{"username", "email"},
		},
		{
			name:   "malformed email",
			values: url.Values{"username": {"bob"}, "email": {"not-an-email"}, "password": {"pw"}, "confirm_password": {"pw"}},
			fields: []string{"email"},
		},
		{
			name:   "confirm mismatch",
			values: url.Values{"username": {"bob"}, "email": {"b@x.io"}, "password": {"pw"}, "confirm_password": {"px"}},
			fields: []string{"confirm_password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseRegistration(tt.values)
			ok, err := f.Validate(ctx, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, ok)
			assert.Len(t, f.Errors, len(tt.fields))
			for _, field := range tt.fields {
				assert.True(t, f.Errors.Has(field), "expected error on %s", field)
			}
		})
	}

	t.Run("taken messages", func(t *testing.T) {
		f := ParseRegistration(url.Values{"username": {"alice"}, "email": {"a@x.io"}, "password": {"pw"}, "confirm_password": {"pw"}})
		_, err := f.Validate(ctx, lookup)
		require.NoError(t, err)
		assert.Equal(t, []string{msgUsernameTaken}, f.Errors["username"])
		assert.Equal(t, []string{msgEmailTaken}, f.Errors["email"])
	})

	t.Run("lookup failure", func(t *testing.T) {
		boom := errors.New("boom")
		f := ParseRegistration(url.Values{"username": {"bob"}, "email": {"b@x.io"}, "password": {"pw"}, "confirm_password": {"pw"}})
		_, err := f.Validate(ctx, &fakeLookup{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestLoginForm(t *testing.T) {
	f := ParseLogin(url.Values{"email": {"a@x.io"}, "password": {"pw"}, "remember": {"y"}})
	assert.True(t, f.Validate())
	assert.True(t, f.Remember)

	f = ParseLogin(url.Values{"email": {"a@x.io"}, "password": {"pw"}})
	assert.True(t, f.Validate())
	assert.False(t, f.Remember)

	f = ParseLogin(url.Values{"email": {"nope"}})
	assert.False(t, f.Validate())
	assert.Equal(t, []string{msgInvalidEmail}, f.Errors["email"])
	assert.Equal(t, []string{msgRequired}, f.Errors["password"])
}

func TestAccountForm(t *testing.T) {
	ctx := context.Background()
	self := alice()
	bob := &models.User{ID: 2, Username: "bob", Email: "b@x.io"}
	lookup := &fakeLookup{users: []*models.User{self, bob}}

	t.Run("unchanged values are valid", func(t *testing.T) {
		f := AccountFormFor(self)
		ok, err := f.Validate(ctx, lookup, self)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("new free values are valid", func(t *testing.T) {
		f := ParseAccount(url.Values{"username": {"alice2"}, "email": {"a2@x.io"}})
		ok, err := f.Validate(ctx, lookup, self)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("another user's values are taken", func(t *testing.T) {
		f := ParseAccount(url.Values{"username": {"bob"}, "email": {"b@x.io"}})
		ok, err := f.Validate(ctx, lookup, self)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []string{msgUsernameTaken}, f.Errors["username"])
		assert.Equal(t, []string{msgEmailTaken}, f.Errors["email"])
	})
}

func TestRunForm(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := ParseRun(url.Values{"sequence": {"ACGT"}})
		assert.True(t, f.Validate())
		assert.Equal(t, "a", f.Option1)
		assert.Equal(t, "a", f.Option2)
		assert.Equal(t, "a", f.Option3)
	})

	t.Run("explicit options", func(t *testing.T) {
		f := ParseRun(url.Values{"sequence": {"ACGT"}, "option1": {"b"}, "option2": {"c"}, "option3": {"b"}})
		assert.True(t, f.Validate())
		assert.Equal(t, "b", f.Option1)
		assert.Equal(t, "c", f.Option2)
	})

	t.Run("sequence is kept as submitted", func(t *testing.T) {
		f := ParseRun(url.Values{"sequence": {"  ACGT\n"}})
		assert.True(t, f.Validate())
		assert.Equal(t, "  ACGT\n", f.Sequence)
	})

	t.Run("blank sequence", func(t *testing.T) {
		f := ParseRun(url.Values{"sequence": {"   "}})
		assert.False(t, f.Validate())
		assert.Equal(t, []string{msgRequired}, f.Errors["sequence"])
	})

	t.Run("unknown option", func(t *testing.T) {
		f := ParseRun(url.Values{"sequence": {"ACGT"}, "option2": {"z"}})
		assert.False(t, f.Validate())
		assert.Equal(t, []string{msgInvalidChoice}, f.Errors["option2"])
	})
}
