package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/runlog/internal/auth"
	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

type fakeUsers map[int64]*models.User

func (f fakeUsers) UserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

// whoami writes the current username, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u := CurrentUser(r.Context()); u != nil {
		io.WriteString(w, u.Username)
		return
	}
	io.WriteString(w, "anonymous")
})

func TestAuthenticate(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	alice := &models.User{ID: 1, Username: "alice"}
	ghost := &models.User{ID: 2, Username: "ghost"}
	handler := Authenticate(jwtManager, fakeUsers{1: alice}, "session")(whoami)

	token, _, err := jwtManager.Generate(alice, false)
	require.NoError(t, err)
	ghostToken, _, err := jwtManager.Generate(ghost, false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   string
	}{
		{"no cookie", nil, "anonymous"},
		{"valid token", &http.Cookie{Name: "session", Value: token}, "alice"},
		{"garbage token", &http.Cookie{Name: "session", Value: "garbage"}, "anonymous"},
		{"deleted user", &http.Cookie{Name: "session", Value: ghostToken}, "anonymous"},
		{"other cookie name", &http.Cookie{Name: "other", Value: token}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	t.Run("token signed with another key", func(t *testing.T) {
		other := auth.NewJWTManager("other-secret", time.Hour, time.Hour)
		forged, _, err := other.Generate(alice, false)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: forged})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "anonymous", rec.Body.String())
	})
}

func TestRequireAuth(t *testing.T) {
	denied := 0
	handler := RequireAuth("/login", func(http.ResponseWriter, *http.Request) { denied++ })(whoami)

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user_runs?page=2", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/login", loc.Path)
		assert.Equal(t, "/user_runs?page=2", loc.Query().Get("next"))
		assert.Equal(t, 1, denied)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/account", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 1, Username: "alice"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Body.String())
		assert.Equal(t, 1, denied)
	})
}

func TestCSRF(t *testing.T) {
	failed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad csrf", http.StatusBadRequest)
	})
	handler := CSRF(false, failed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, CSRFToken(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Body.String()
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)

	post := func(cookie, field string) int {
		form := url.Values{}
		if field != "" {
			form.Set(CSRFField, field)
		}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "csrf_token", Value: cookie})
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post(token, token))
	assert.Equal(t, http.StatusBadRequest, post(token, ""))
	assert.Equal(t, http.StatusBadRequest, post("", token))
	assert.Equal(t, http.StatusBadRequest, post(token, token+"x"))

	t.Run("existing cookie is reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, token, rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/run/7", nil)
	req = req.WithContext(WithUser(req.Context(), &models.User{ID: 42}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"path":"/run/7"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"user_id":42`)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/run/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	r.Handle("/metrics", m.Handler())

	for _, path := range []string{"/run/1", "/run/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `runlog_http_requests_total{method="GET",route="/run/{id}",status="200"} 2`)
	assert.Contains(t, body, "runlog_http_request_duration_seconds")
}
