package api

import (
	"net/http"
	"time"

	"learnhub/internal/apperrors"
	"learnhub/internal/auth"
)

// setSessionCookie writes the session token as an HttpOnly cookie scoped to
// the whole site. Secure is only set in production so local development over
// plain HTTP keeps working.
func (s *Server) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, session, err := s.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, true, "account created", map[string]any{
		"user": user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, session, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, true, "logged in", map[string]any{
		"user": user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, true, "logged out", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	user, err := s.auth.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{"user": user})
}

// handleCheck reports session state without ever failing the request: a
// missing or invalid token is a 200 with isAuthenticated=false, so the SPA
// can probe on load without tripping error handling.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, true, "", map[string]any{
			"isAuthenticated": false,
		})
		return
	}

	user, err := s.auth.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		// Token valid but user since deleted: still an unauthenticated
		// answer, not an error, unless the lookup itself failed.
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			writeJSON(w, http.StatusOK, true, "", map[string]any{
				"isAuthenticated": false,
			})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, true, "", map[string]any{
		"isAuthenticated": true,
		"user":            user,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var in auth.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), id.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "profile updated", map[string]any{
		"user": user,
	})
}
