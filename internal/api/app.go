package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/sessions"
	"github.com/npezzotti/go-roomreg/internal/activity"
	"github.com/npezzotti/go-roomreg/internal/auth"
	"github.com/npezzotti/go-roomreg/internal/config"
	"github.com/npezzotti/go-roomreg/internal/database"
	"github.com/npezzotti/go-roomreg/internal/registry"
	"github.com/npezzotti/go-roomreg/internal/session"
	"github.com/npezzotti/go-roomreg/internal/stats"
	"go.uber.org/zap"
)

type RoomRegApp struct {
	log      *zap.Logger
	db       database.RoomRepository
	mux      *http.Server
	sessions session.Store
	flashes  *sessions.CookieStore
	gate     *auth.Gate
	policy   *auth.Policy
	rooms    *registry.Registry
	activity *activity.Recorder
	stats    stats.StatsProvider
}

func NewRoomRegApp(
	mux *http.ServeMux,
	logger *zap.Logger,
	db database.RoomRepository,
	sessionStore session.Store,
	recorder *activity.Recorder,
	su stats.StatsProvider,
	cfg *config.Config,
) *RoomRegApp {
	policy := auth.NewPolicy(cfg.AdminEmails...)
	s := &RoomRegApp{
		log:      logger,
		db:       db,
		sessions: sessionStore,
		flashes:  newFlashStore(cfg.SigningKey),
		gate:     auth.NewGate(cfg.AllowedDomain),
		policy:   policy,
		rooms:    registry.New(logger, db, policy),
		activity: recorder,
		stats:    su,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /logout", s.logout)
	mux.HandleFunc("GET /{$}", s.requireAuth(s.home))
	mux.HandleFunc("GET /add_room", s.requireAuth(s.addRoomForm))
	mux.HandleFunc("POST /add_room", s.requireAuth(s.addRoom))
	mux.HandleFunc("POST /delete_room/{room_id}", s.requireAdmin(s.deleteRoom))
	mux.HandleFunc("GET /admin/activity", s.requireAdmin(s.adminActivity))
	mux.HandleFunc("GET /admin/view_rooms", s.requireAdmin(s.adminRooms))

	var h http.Handler = mux
	if len(cfg.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.MaxAge(3600),
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
			handlers.AllowCredentials(),
		)(h)
	}

	// CORS answers preflight requests itself, so everything that has to see
	// every request wraps it.
	if recorder != nil {
		h = recorder.Middleware(h)
	}
	h = s.loadSession(h)
	h = handlers.CombinedLoggingHandler(zap.NewStdLog(logger.Named("access")).Writer(), h)
	h = s.countRequests(h)
	h = s.requestId(h)
	h = s.errorHandler(h)

	s.mux = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *RoomRegApp) Handler() http.Handler {
	return s.mux.Handler
}

func (s *RoomRegApp) Start() error {
	s.log.Info("starting server", zap.String("addr", s.mux.Addr))
	return s.mux.ListenAndServe()
}

func (s *RoomRegApp) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
