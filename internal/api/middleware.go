package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/npezzotti/go-roomreg/internal/auth"
	"github.com/npezzotti/go-roomreg/internal/logger"
	"github.com/npezzotti/go-roomreg/internal/session"
	"github.com/npezzotti/go-roomreg/internal/stats"
	"github.com/teris-io/shortid"
	"go.uber.org/zap"
)

const requestIdHeader = "X-Request-Id"

func (s *RoomRegApp) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Error("panic", zap.Error(panicError), zap.String("request_id", logger.RequestId(r.Context())))
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestId tags the request with the caller's X-Request-Id or a fresh
// short id, and echoes it back on the response.
func (s *RoomRegApp) requestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" {
			var err error
			if id, err = shortid.Generate(); err != nil {
				s.log.Warn("generate request id", zap.Error(err))
			}
		}

		if id != "" {
			w.Header().Set(requestIdHeader, id)
			r = r.WithContext(logger.WithRequestId(r.Context(), id))
		}

		next.ServeHTTP(w, r)
	})
}

func (s *RoomRegApp) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.stats.Incr(stats.Requests)
		next.ServeHTTP(w, r)
	})
}

// loadSession resolves the session identity, if any, into the request
// context. It never rejects a request.
func (s *RoomRegApp) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := s.sessions.Load(r.Context(), r)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				s.log.Warn("load session", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), email)))
	})
}

// requireAuth redirects to the login page when the request has no session
// identity.
func (s *RoomRegApp) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.Identity(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next(w, r)
	}
}

// requireAdmin answers 403 to everyone outside the admin set, including
// requests with no session.
func (s *RoomRegApp) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.Identity(r.Context())
		if !s.policy.IsAdmin(identity) {
			writeForbidden(w)
			return
		}

		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next(w, r)
	}
}
