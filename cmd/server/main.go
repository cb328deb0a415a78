package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/npezzotti/go-roomreg/internal/activity"
	"github.com/npezzotti/go-roomreg/internal/api"
	"github.com/npezzotti/go-roomreg/internal/auth"
	"github.com/npezzotti/go-roomreg/internal/config"
	"github.com/npezzotti/go-roomreg/internal/database"
	"github.com/npezzotti/go-roomreg/internal/logger"
	"github.com/npezzotti/go-roomreg/internal/session"
	"github.com/npezzotti/go-roomreg/internal/stats"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repository interface {
	database.RoomRepository
	io.Closer
}

func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("roomreg", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	dotenv := fs.String("env-file", ".env", "path to a dotenv file")
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := config.DefaultOptions()
	if *configPath != "" {
		if err := opts.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}
	if err := opts.LoadEnv(*dotenv); err != nil {
		return nil, err
	}
	flags.Apply(&opts)

	return config.NewConfig(opts)
}

func openRepository(cfg *config.Config, log *zap.Logger) (repository, error) {
	if cfg.DatabaseDSN == database.MemoryDSN {
		log.Warn("using in-memory storage, data will not survive a restart")
		return database.NewMemRoomRepository(), nil
	}

	db, err := database.NewPgRoomRepository(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	return db, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewCookieStore(cfg.SigningKey, cfg.SessionTTL), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return session.NewRedisStore(client, cfg.SessionTTL), client.Close, nil
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := openRepository(cfg, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("db close", zap.Error(err))
		}
	}()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	sessions, closeSessions, err := openSessionStore(startCtx, cfg)
	cancelStart()
	if err != nil {
		log.Fatal("session store", zap.Error(err))
	}
	defer closeSessions()

	mux := http.NewServeMux()
	statsUpdater := stats.NewStatsUpdater(mux)

	recorder, err := activity.NewFileRecorder(cfg.ActivityLogPath, log, db, statsUpdater, auth.NewPolicy(cfg.AdminEmails...))
	if err != nil {
		log.Fatal("activity log", zap.Error(err))
	}

	srv := api.NewRoomRegApp(mux, log, db, sessions, recorder, statsUpdater, cfg)

	statsUpdater.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Info("received signal", zap.Stringer("signal", sig))
	case err := <-errCh:
		log.Error("server", zap.Error(err))
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		log.Error("HTTP server shutdown", zap.Error(err))
	}

	statsUpdater.Stop()

	if err := recorder.Close(); err != nil {
		log.Error("activity log close", zap.Error(err))
	}

	log.Info("shutdown complete")
}
