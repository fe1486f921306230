package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"net/http"
)

const (
	// CSRFField is the form field every POST must carry.
	CSRFField = "csrf_token"

	csrfCookie = "csrf_token"

	csrfKey contextKey = "csrf"
)

// CSRFToken returns the token to embed in forms rendered for this request.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

// CSRF protects unsafe methods with a double-submit cookie. The token is
// issued in a cookie on first contact and must be echoed in the csrf_token
// form field. Requests that fail the check go to onFailure.
func CSRF(secure bool, onFailure http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(csrfCookie); err == nil && len(c.Value) > 0 {
				token = c.Value
			}

			if !isSafeMethod(r.Method) {
				sent := r.PostFormValue(CSRFField)
				if token == "" || sent == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sent)) != 1 {
					onFailure.ServeHTTP(w, r)
					return
				}
			}

			if token == "" {
				token = rand.Text()
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey, token)))
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
