package server

import (
	"net/http"

	"resumeats/internal/session"
)

const (
	defaultSessionCookie = "resumeats_session"
	sessionHeader        = "X-Session-ID"
)

// pageSession returns the browser's session, starting a new one and setting
// the cookie when the request carries no live session.
func (s *Server) pageSession(w http.ResponseWriter, r *http.Request) *session.State {
	st, created := s.Sessions.GetOrCreate(s.cookieSessionID(r))
	if created {
		s.setSessionCookie(w, st.ID())
	}
	return st
}

// apiSession resolves the session from X-Session-ID or the cookie and echoes
// the effective ID back in X-Session-ID.
func (s *Server) apiSession(w http.ResponseWriter, r *http.Request) *session.State {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id = s.cookieSessionID(r)
	}

	st, created := s.Sessions.GetOrCreate(id)
	if created {
		s.Logger.Debug("Started API session", "session_id", st.ID())
	}
	w.Header().Set(sessionHeader, st.ID())
	return st
}

func (s *Server) cookieSessionID(r *http.Request) string {
	c, err := r.Cookie(s.Session.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Session.SecureCookie || s.tlsEnabled(),
		SameSite: http.SameSiteLaxMode,
	})
}
