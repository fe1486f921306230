package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	flashCookie = "flash"

	categorySuccess = "success"
	categoryInfo    = "info"
	categoryDanger  = "danger"

	flashKey ctxKey = "flash"
)

type ctxKey string

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// flashBag holds the notices of one request: those carried in by the
// cookie plus those added while handling it.
type flashBag struct {
	messages   []Flash
	fromCookie bool
}

// flashes loads pending notices from the flash cookie into the request.
func (s *Server) flashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bag := &flashBag{}
		if c, err := r.Cookie(flashCookie); err == nil {
			bag.messages = decodeFlashes(c.Value)
			bag.fromCookie = true
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), flashKey, bag)))
	})
}

func bagFrom(ctx context.Context) *flashBag {
	bag, _ := ctx.Value(flashKey).(*flashBag)
	if bag == nil {
		bag = &flashBag{}
	}
	return bag
}

// flash queues a notice. It is shown by this response if it renders a page,
// otherwise by the next page rendered.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	bag := bagFrom(r.Context())
	bag.messages = append(bag.messages, Flash{Category: category, Message: message})
	http.SetCookie(w, s.flashCookie(encodeFlashes(bag.messages), 0))
}

// popFlashes returns every pending notice and clears the cookie.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	bag := bagFrom(r.Context())
	msgs := bag.messages

	// Notices queued by this request are being shown now.
	dropSetCookie(w.Header(), flashCookie)
	if bag.fromCookie {
		http.SetCookie(w, s.flashCookie("", -1))
	}

	bag.messages = nil
	bag.fromCookie = false
	return msgs
}

func dropSetCookie(h http.Header, name string) {
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, name+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}

func (s *Server) flashCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func encodeFlashes(msgs []Flash) string {
	b, err := json.Marshal(msgs)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeFlashes drops a malformed cookie rather than failing the request.
func decodeFlashes(value string) []Flash {
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs []Flash
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil
	}
	return msgs
}
