package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmynk/runlog/internal/models"
)

// login issues a session cookie for user. Without remember the cookie ends
// with the browser session; with it the cookie lasts as long as the token.
func (s *Server) login(w http.ResponseWriter, user *models.User, remember bool) error {
	token, expires, err := s.jwt.Generate(user, remember)
	if err != nil {
		return fmt.Errorf("failed to issue session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = expires
	}
	http.SetCookie(w, cookie)
	return nil
}

// logout clears the session cookie.
func (s *Server) logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext returns next if it is a path on this site, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
