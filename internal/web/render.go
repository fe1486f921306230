package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/mmynk/runlog/internal/forms"
	"github.com/mmynk/runlog/internal/middleware"
	"github.com/mmynk/runlog/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{
	"home.html",
	"current_run.html",
	"user_runs.html",
	"run.html",
	"about.html",
	"login.html",
	"register.html",
	"account.html",
	"error.html",
}

var funcs = template.FuncMap{
	"avatar": func(file string) string {
		if file == "" {
			file = models.DefaultImageFile
		}
		return "/static/profile_pics/" + file
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04 MST")
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
	"choices": func(n int) []forms.Choice {
		switch n {
		case 1:
			return forms.Option1Choices
		case 2:
			return forms.Option2Choices
		default:
			return forms.Option3Choices
		}
	},
}

// pages holds one template set per page, each combined with the layout.
type pages struct {
	sets map[string]*template.Template
}

func loadPages() (*pages, error) {
	p := &pages{sets: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		p.sets[name] = t
	}
	return p, nil
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

// view is what every page template receives.
type view struct {
	Title     string
	User      *models.User
	Flashes   []Flash
	CSRFToken string
	Data      any
}

// render writes page name with the given status. The page is executed into
// a buffer first so a template failure still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := s.pages.sets[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown page %q", name))
		return
	}

	v := view{
		Title:     title,
		User:      middleware.CurrentUser(r.Context()),
		CSRFToken: middleware.CSRFToken(r.Context()),
		Data:      data,
	}
	// Flashes are consumed only once the page is known to render.
	v.Flashes = bagFrom(r.Context()).messages

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		s.logger.Error("Failed to render page", "page", name, "error", err)
		if name != "error.html" {
			s.renderError(w, r, http.StatusInternalServerError)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.popFlashes(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errorData struct {
	Status  int
	Heading string
	Message string
}

var errorMessages = map[int]errorData{
	http.StatusBadRequest: {
		Heading: "Bad request (400)",
		Message: "The form could not be accepted. Please reload the page and try again.",
	},
	http.StatusForbidden: {
		Heading: "You don't have permission to do that (403)",
		Message: "Please check your account and try again.",
	},
	http.StatusNotFound: {
		Heading: "Oops. Page Not Found (404)",
		Message: "That page does not exist. Please try a different location.",
	},
	http.StatusMethodNotAllowed: {
		Heading: "Method not allowed (405)",
		Message: "That page does not accept this kind of request.",
	},
	http.StatusInternalServerError: {
		Heading: "Something went wrong (500)",
		Message: "We're experiencing some trouble on our end. Please try again in the near future.",
	},
}

// renderError writes the error page for status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	data, ok := errorMessages[status]
	if !ok {
		data = errorData{Heading: http.StatusText(status)}
	}
	data.Status = status
	s.render(w, r, status, "error.html", http.StatusText(status), data)
}

// serverError logs err and writes the 500 page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	s.renderError(w, r, http.StatusInternalServerError)
}
