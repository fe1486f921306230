package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/runlog/internal/models"
)

type fakeUserStorage struct {
	users     []*models.User
	nextID    int64
	lookupErr error
}

func (f *fakeUserStorage) CreateUser(_ context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123", hash)
	assert.True(t, CheckPassword("pw123", hash))
	assert.False(t, CheckPassword("pw124", hash))

	again, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("pw123", ""))
	assert.False(t, CheckPassword("pw123", "not-a-bcrypt-hash"))
	assert.False(t, CheckPassword("", "$2a$10$"))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hash, not the password", func(t *testing.T) {
		store := &fakeUserStorage{}
		a := NewPasswordAuthenticator(store)

		user, err := a.Register(ctx, "alice", "alice@example.com", "pw123")
		require.NoError(t, err)

		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, models.DefaultImageFile, user.ImageFile)
		assert.NotEqual(t, "pw123", user.PasswordHash)
		assert.True(t, CheckPassword("pw123", user.PasswordHash))
	})

	t.Run("duplicate email", func(t *testing.T) {
		store := &fakeUserStorage{}
		a := NewPasswordAuthenticator(store)

		_, err := a.Register(ctx, "alice", "alice@example.com", "pw123")
		require.NoError(t, err)

		_, err = a.Register(ctx, "alice2", "alice@example.com", "pw123")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		store := &fakeUserStorage{}
		a := NewPasswordAuthenticator(store)

		_, err := a.Register(ctx, "alice", "alice@example.com", "pw123")
		require.NoError(t, err)

		_, err = a.Register(ctx, "alice", "other@example.com", "pw123")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("empty password", func(t *testing.T) {
		a := NewPasswordAuthenticator(&fakeUserStorage{})

		_, err := a.Register(ctx, "alice", "alice@example.com", "")
		assert.ErrorIs(t, err, ErrMissingPassword)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := &fakeUserStorage{}
	a := NewPasswordAuthenticator(store)

	_, err := a.Register(ctx, "alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "alice@example.com", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, wrongPw := a.Authenticate(ctx, "alice@example.com", "nope")
		_, unknown := a.Authenticate(ctx, "bob@example.com", "pw123")

		assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
		assert.ErrorIs(t, unknown, ErrInvalidCredentials)
		assert.Equal(t, wrongPw.Error(), unknown.Error())
	})

	t.Run("storage failure is not a credential error", func(t *testing.T) {
		boom := errors.New("boom")
		failing := NewPasswordAuthenticator(&fakeUserStorage{lookupErr: boom})

		_, err := failing.Authenticate(ctx, "alice@example.com", "pw123")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
