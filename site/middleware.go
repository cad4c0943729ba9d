package site

import (
	"context"
	"net/http"
	"time"

	"folio/auth"
	"folio/constants"

	"github.com/google/uuid"
)

type contextKey string

const sessionContextKey = contextKey("admin_session")

func getSignedInUserOrNil(r *http.Request) *auth.SessionInfo {
	session, _ := r.Context().Value(sessionContextKey).(*auth.SessionInfo)
	return session
}

func (s *Server) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SESSION_COOKIE_NAME,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Server.Production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SESSION_COOKIE_NAME,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Server.Production,
		SameSite: http.SameSiteStrictMode,
	})
}

// TryPutUserInContextMiddleware resolves the session cookie, if any, and
// stores the session in the request context. Stale cookies are cleared.
func (s *Server) TryPutUserInContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(constants.SESSION_COOKIE_NAME)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := s.auth.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			logger.Errorf("validating session: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if session == nil {
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthProtectedMiddleware sends visitors without a valid session to the
// login page.
func AuthProtectedMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getSignedInUserOrNil(r) == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// conversationID returns the visitor's chat conversation, issuing a new one
// when the cookie is missing or malformed.
func (s *Server) conversationID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(constants.CHAT_COOKIE_NAME); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     constants.CHAT_COOKIE_NAME,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Server.Production,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := s.cfg.Chat.HistoryTTL; ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, cookie)
	return id
}
