package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// authCookieName is the session cookie set after a successful login.
const authCookieName = "work_report_auth"

const authCookieValue = "authenticated"

// isAuthenticated reports whether the request carries a valid session cookie.
func isAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(authCookieName)
	return err == nil && c.Value == authCookieValue
}

// requireAuth redirects unauthenticated requests to the login page. Every
// route except /login and /logout sits behind it.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if isAuthenticated(r) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		s.renderLogin(w, r, "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			slog.ErrorContext(r.Context(), "Parse login form error", "error", err)
			s.renderLogin(w, r, "Некорректный запрос")
			return
		}
		login := sanitizeInput(r.Form.Get("login"))
		password := r.Form.Get("password")

		loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(s.adminLogin)) == 1
		passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
		if !loginOK || !passwordOK {
			slog.WarnContext(r.Context(), "Failed login attempt", "login", login)
			w.WriteHeader(http.StatusUnauthorized)
			s.renderLogin(w, r, "Неверный логин или пароль")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authCookieName,
			Value:    authCookieValue,
			Path:     "/",
			MaxAge:   int(s.sessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		slog.InfoContext(r.Context(), "Login successful", "login", login)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	data := struct {
		Error string
	}{Error: errMsg}
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
