package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/backend"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/session"
	"github.com/Lixing-Zhang/restaurant-storefront/pkg/logger"
)

type fakeSessions struct {
	sessions map[string]*session.Session
	started  int
	err      error
}

func (f *fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, session.ErrNotFound
}

func (f *fakeSessions) Start(context.Context) (*session.Session, error) {
	f.started++
	s := &session.Session{ID: "new-session"}
	f.sessions[s.ID] = s
	return s, nil
}

func decodeError(t *testing.T, body *bytes.Buffer) (string, string) {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error.Code, resp.Error.Message
}

func TestSessions_StartsNewSession(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*session.Session{}}
	var got *session.Session
	h := Sessions(sessions, CookieOptions{MaxAge: time.Hour})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	require.NotNil(t, got)
	assert.Equal(t, "new-session", got.ID)
	assert.Equal(t, 1, sessions.started)
	assert.Equal(t, "new-session", w.Header().Get(SessionHeader))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, "new-session", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestSessions_ReusesCookieAndHeader(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*session.Session{
		"abc": {ID: "abc", ClientID: 7, AccessToken: "tok"},
	}}
	var token string
	var sess *session.Session
	h := Sessions(sessions, CookieOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess = SessionFromContext(r.Context())
		token = backend.TokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, sess)
	assert.Equal(t, int64(7), sess.ClientID)
	assert.Equal(t, "tok", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc", sess.ID)
	assert.Empty(t, w.Result().Cookies())
	assert.Zero(t, sessions.started)
}

func TestSessions_StoreUnavailable(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("redis down")}
	called := false
	h := Sessions(sessions, CookieOptions{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	code, _ := decodeError(t, w.Body)
	assert.Equal(t, "SESSION_UNAVAILABLE", code)
}

func TestRequireAuthAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name      string
		session   *session.Session
		handler   http.Handler
		wantCode  int
		wantError string
	}{
		{"auth no session", nil, RequireAuth(ok), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"auth anonymous", &session.Session{ID: "a"}, RequireAuth(ok), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"auth signed in", &session.Session{ID: "a", ClientID: 3}, RequireAuth(ok), http.StatusNoContent, ""},
		{"admin anonymous", &session.Session{ID: "a"}, RequireAdmin(ok), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"admin customer", &session.Session{ID: "a", ClientID: 3}, RequireAdmin(ok), http.StatusForbidden, "FORBIDDEN"},
		{"admin", &session.Session{ID: "a", ClientID: 3, IsAdmin: true}, RequireAdmin(ok), http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = req.WithContext(WithSession(req.Context(), tt.session))
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantError != "" {
				code, _ := decodeError(t, w.Body)
				assert.Equal(t, tt.wantError, code)
			}
		})
	}
}

func TestLogger_AttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("info", &buf)

	var reqID string
	h := chimiddleware.RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = logger.RequestIDFromContext(r.Context())
		logger.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-1", reqID)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var access map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "http request", access["msg"])
	assert.Equal(t, "req-1", access["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), access["status"])
	assert.Contains(t, string(lines[0]), `"request_id":"req-1"`)
}

func TestMetricsAndTracing_UseRoutePattern(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Use(Metrics)
	r.Get("/api/menu/{dishId}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/menu/{dishId}", routePattern(r))
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/menu/5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutePattern_OutsideChi(t *testing.T) {
	assert.Equal(t, "unknown", routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusCreated, rw.statusCode)
}
