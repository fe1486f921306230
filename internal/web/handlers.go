package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/runlog/internal/auth"
	"github.com/mmynk/runlog/internal/forms"
	"github.com/mmynk/runlog/internal/middleware"
	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/service"
	"github.com/mmynk/runlog/internal/storage"
)

type homeData struct {
	Form *forms.RunForm
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	form := forms.NewRunForm()

	if r.Method == http.MethodPost {
		if !s.parseForm(w, r) {
			return
		}
		form = forms.ParseRun(r.PostForm)
		if form.Validate() {
			user := middleware.CurrentUser(r.Context())
			if _, err := s.runs.Submit(r.Context(), user, form.Sequence, form.Option1, form.Option2, form.Option3); err != nil {
				s.serverError(w, r, err)
				return
			}
			s.flash(w, r, categorySuccess, "Your run has started and has been registered!")
			http.Redirect(w, r, "/current_run", http.StatusFound)
			return
		}
	}

	s.render(w, r, http.StatusOK, "home.html", "Home", homeData{Form: form})
}

func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "current_run.html", "Run", nil)
}

type userRunsData struct {
	Owner *models.User
	Runs  *models.Page[*models.Run]
	Pages []int
}

func (s *Server) handleUserRuns(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	user := middleware.CurrentUser(r.Context())
	runs, err := s.runs.ListByAuthor(r.Context(), user, page)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "user_runs.html", user.Username, userRunsData{
		Owner: user,
		Runs:  runs,
		Pages: runs.IterPages(1, 1, 2, 1),
	})
}

type runData struct {
	Run     *models.Run
	IsOwner bool
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	run, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "run.html", run.Sequence, runData{
		Run:     run,
		IsOwner: run.OwnedBy(middleware.CurrentUser(r.Context())),
	})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	if err := s.runs.Delete(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.flash(w, r, categorySuccess, "Your run has been deleted!")
	http.Redirect(w, r, "/user_runs", http.StatusFound)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about.html", "About", nil)
}

type loginData struct {
	Form *forms.LoginForm
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseLogin(nil)

	if r.Method == http.MethodPost {
		if !s.parseForm(w, r) {
			return
		}
		form = forms.ParseLogin(r.PostForm)
		if form.Validate() {
			user, err := s.accounts.Authenticate(r.Context(), form.Email, form.Password)
			switch {
			case err == nil:
				if err := s.login(w, user, form.Remember); err != nil {
					s.serverError(w, r, err)
					return
				}
				http.Redirect(w, r, safeNext(r.URL.Query().Get("next"), "/home"), http.StatusFound)
				return
			case errors.Is(err, auth.ErrInvalidCredentials):
				s.flash(w, r, categoryDanger, "Login Unsuccessful. Please check email and password")
			default:
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "login.html", "Login", loginData{Form: form})
}

type registerData struct {
	Form *forms.RegistrationForm
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseRegistration(nil)

	if r.Method == http.MethodPost {
		if !s.parseForm(w, r) {
			return
		}
		form = forms.ParseRegistration(r.PostForm)
		ok, err := form.Validate(r.Context(), s.lookup)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if ok {
			_, err := s.accounts.Register(r.Context(), form.Username, form.Email, form.Password)
			switch {
			case err == nil:
				s.flash(w, r, categorySuccess, "Your account has been created! You are now able to log in")
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			// Lost a race with a concurrent registration.
			case errors.Is(err, auth.ErrUsernameTaken):
				form.Errors.Add("username", "That username is taken. Please choose a different one.")
			case errors.Is(err, auth.ErrEmailExists):
				form.Errors.Add("email", "That email is taken. Please choose a different one.")
			case errors.Is(err, storage.ErrConflict):
				if err := s.registerConflict(r.Context(), form); err != nil {
					s.serverError(w, r, err)
					return
				}
			default:
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "register.html", "Register", registerData{Form: form})
}

// registerConflict attributes a unique-constraint failure on insert to the
// field that now collides by validating the form again.
func (s *Server) registerConflict(ctx context.Context, form *forms.RegistrationForm) error {
	form.Errors = forms.Errors{}
	ok, err := form.Validate(ctx, s.lookup)
	if err != nil {
		return err
	}
	if ok {
		// The other row is gone again; the insert still failed.
		form.Errors.Add("username", "That username or email is taken. Please choose a different one.")
	}
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logout(w)
	http.Redirect(w, r, "/home", http.StatusFound)
}

type accountData struct {
	Form *forms.AccountForm
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	form := forms.AccountFormFor(user)

	if r.Method == http.MethodPost {
		if !s.parseForm(w, r) {
			return
		}
		form = forms.ParseAccount(r.PostForm)
		ok, err := form.Validate(r.Context(), s.lookup, user)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if ok {
			err := s.accounts.UpdateAccount(r.Context(), user, form.Username, form.Email)
			switch {
			case err == nil:
				s.flash(w, r, categorySuccess, "Your account has been updated!")
				http.Redirect(w, r, "/account", http.StatusFound)
				return
			case errors.Is(err, storage.ErrConflict):
				s.flash(w, r, categoryDanger, "That username or email is taken. Please choose a different one.")
			default:
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "account.html", "Account", accountData{Form: form})
}

// handleServiceError maps service and storage sentinels to error pages.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		s.renderError(w, r, http.StatusForbidden)
	case errors.Is(err, service.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusFound)
	default:
		s.serverError(w, r, err)
	}
}

func runID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parseForm reports whether the request body could be read. A malformed
// body gets the 400 page.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("Malformed form", "path", r.URL.Path, "error", err)
		s.renderError(w, r, http.StatusBadRequest)
		return false
	}
	return true
}
