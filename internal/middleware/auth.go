package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mmynk/runlog/internal/auth"
	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// UserKey is the context key for storing the authenticated user.
const UserKey contextKey = "user"

// UserLoader resolves the user id carried by a session token.
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// CurrentUser extracts the authenticated user from the context.
// Returns nil for an anonymous request.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// Authenticate resolves the session cookie to a user and adds it to the
// request context. A missing, invalid or expired token, or a token for a user
// that no longer exists, leaves the request anonymous.
func Authenticate(jwtManager *auth.JWTManager, users UserLoader, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtManager.Validate(cookie.Value)
			if err != nil {
				slog.Debug("Ignoring session token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.UserByID(r.Context(), claims.UserID)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					slog.Error("Failed to load session user", "user_id", claims.UserID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth returns a middleware that only lets authenticated requests
// through. Anonymous requests are redirected to loginPath with the requested
// path and query in the "next" parameter. onDenied, if set, runs before the
// redirect is written.
func RequireAuth(loginPath string, onDenied func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentUser(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			if onDenied != nil {
				onDenied(w, r)
			}
			target := loginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}
