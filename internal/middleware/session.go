package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/backend"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/session"
	"github.com/Lixing-Zhang/restaurant-storefront/pkg/logger"
)

// Session id transport
const (
	SessionCookie = "storefront_session"
	SessionHeader = "X-Session-ID"
)

type contextKeyType string

const sessionKey contextKeyType = "session"

// SessionManager loads and creates sessions
type SessionManager interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Start(ctx context.Context) (*session.Session, error)
}

// CookieOptions controls the session cookie
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// Sessions resolves the caller's session from the cookie or header, starting
// a new one when none is valid. The session is stored in the context and the
// backend access token of a signed-in session is attached to it.
func Sessions(sessions SessionManager, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := sessions.Get(ctx, sessionID(r))
			if errors.Is(err, session.ErrNotFound) {
				sess, err = sessions.Start(ctx)
				if err == nil {
					SetSessionCookie(w, sess.ID, opts)
				}
			}
			if err != nil {
				logger.FromContext(ctx).ErrorContext(ctx, "resolve session", slog.String("error", err.Error()))
				writeError(w, http.StatusServiceUnavailable, "SESSION_UNAVAILABLE", "sessions are temporarily unavailable")
				return
			}

			w.Header().Set(SessionHeader, sess.ID)

			ctx = WithSession(ctx, sess)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("session_id", sess.ID)))
			if sess.AccessToken != "" {
				ctx = backend.WithToken(ctx, sess.AccessToken)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionHeader)
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(w http.ResponseWriter, id string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFromContext returns the session stored by Sessions, or nil
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// RequireAuth rejects requests whose session is not signed in
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil || !s.Authenticated() {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from sessions without the admin flag
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).IsAdmin {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
