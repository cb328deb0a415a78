package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npezzotti/go-roomreg/internal/auth"
	"github.com/npezzotti/go-roomreg/internal/database"
	"github.com/npezzotti/go-roomreg/internal/logger"
	"github.com/npezzotti/go-roomreg/internal/session"
	"github.com/npezzotti/go-roomreg/internal/stats"
	"github.com/npezzotti/go-roomreg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newMiddlewareApp(t *testing.T, sessions session.Store) *RoomRegApp {
	t.Helper()
	return NewRoomRegApp(
		http.NewServeMux(),
		testutil.TestLogger(t),
		database.NewMemRoomRepository(),
		sessions,
		nil,
		stats.NewPermissiveMock(),
		testConfig(),
	)
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	log, logs := testutil.ObservedLogger()
	app := &RoomRegApp{log: log}

	// handler that panics
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("test panic"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := app.errorHandler(panicHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))

	entries := logs.FilterMessage("panic").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "test panic", entries[0].ContextMap()["error"])
}

func Test_errorHandler_NoPanic(t *testing.T) {
	app := &RoomRegApp{}

	// simple handler that does not panic
	called := false
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := app.errorHandler(okHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.True(t, called, "expected handler to be called")
}

func Test_requestId(t *testing.T) {
	app := &RoomRegApp{log: testutil.TestLogger(t)}

	var seen string
	handler := app.requestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestId(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(requestIdHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIdHeader, "abc123")
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc123", seen)
		assert.Equal(t, "abc123", rr.Header().Get(requestIdHeader))
	})
}

func Test_loadSession(t *testing.T) {
	store := session.NewCookieStore([]byte("test_signing_key"), time.Hour)
	app := newMiddlewareApp(t, store)

	var (
		identity string
		ok       bool
	)
	handler := app.loadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok = auth.Identity(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid session", func(t *testing.T) {
		saved := httptest.NewRecorder()
		require.NoError(t, store.Save(context.Background(), saved, testUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range saved.Result().Cookies() {
			req.AddCookie(c)
		}

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, ok)
		assert.Equal(t, testUser, identity)
	})

	t.Run("no session", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, ok)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "invalid-token"})

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected invalid session to be treated as anonymous")
		assert.False(t, ok)
	})
}

func Test_requireAuth(t *testing.T) {
	app := newMiddlewareApp(t, nil)

	handler := app.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	t.Run("authenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), testUser))
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
		assert.Equal(t, "no-store, no-cache, must-revalidate, private", rr.Header().Get("Cache-Control"))
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
	})
}

func Test_requireAdmin(t *testing.T) {
	app := newMiddlewareApp(t, nil)

	handler := app.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tcases := []struct {
		name     string
		identity string
		status   int
	}{
		{"admin", testAdmin, http.StatusOK},
		{"non-admin", testUser, http.StatusForbidden},
		{"anonymous", "", http.StatusForbidden},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/activity", nil)
			if tc.identity != "" {
				req = req.WithContext(auth.WithIdentity(req.Context(), tc.identity))
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	app := NewRoomRegApp(http.NewServeMux(), testutil.TestLogger(t), database.NewMemRoomRepository(),
		session.NewCookieStore(cfg.SigningKey, cfg.SessionTTL), nil, stats.NewPermissiveMock(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get(requestIdHeader))
}

func Test_countRequests(t *testing.T) {
	su := &stats.MockStatsUpdater{}
	su.On("Incr", stats.Requests).Twice()
	app := &RoomRegApp{stats: su}

	handler := app.countRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	su.AssertExpectations(t)
}
