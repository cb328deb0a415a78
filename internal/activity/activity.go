// Package activity audits every inbound request to an append-only text file
// and to the user_activity table.
package activity

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/npezzotti/go-roomreg/internal/auth"
	"github.com/npezzotti/go-roomreg/internal/database"
	"github.com/npezzotti/go-roomreg/internal/logger"
	"github.com/npezzotti/go-roomreg/internal/stats"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Anonymous stands in for the actor of requests without a session.
const Anonymous = "anonymous"

const storeTimeout = 5 * time.Second

type Record struct {
	Id        int       `json:"id"`
	UserEmail string    `json:"user_email"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type Store interface {
	CreateActivity(ctx context.Context, params database.CreateActivityParams) (database.Activity, error)
	ListActivity(ctx context.Context) ([]database.Activity, error)
}

type AdminChecker interface {
	IsAdmin(identity string) bool
}

type Recorder struct {
	log    *zap.Logger
	file   zapcore.Core
	sink   zapcore.WriteSyncer
	closer func() error
	db     Store
	stats  stats.StatsProvider
	policy AdminChecker
}

// NewFileRecorder opens (or creates) the activity log at path in append mode.
func NewFileRecorder(path string, logger *zap.Logger, db Store, su stats.StatsProvider, policy AdminChecker) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}

	r := NewRecorder(f, logger, db, su, policy)
	r.closer = f.Close
	return r, nil
}

// NewRecorder writes activity lines to w.
func NewRecorder(w zapcore.WriteSyncer, logger *zap.Logger, db Store, su stats.StatsProvider, policy AdminChecker) *Recorder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.CallerKey = zapcore.OmitKey
	encCfg.StacktraceKey = zapcore.OmitKey

	return &Recorder{
		log:    logger.With(zap.String("component", "activity")),
		file:   zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), w, zapcore.InfoLevel),
		sink:   w,
		closer: func() error { return nil },
		db:     db,
		stats:  su,
		policy: policy,
	}
}

// Record appends one line to the activity file and inserts one row into the
// store. Failures are logged and counted but never returned: auditing must not
// fail the request being audited.
func (r *Recorder) Record(ctx context.Context, actor, method, path string) {
	if actor == "" {
		actor = Anonymous
	}
	action := method + " " + path

	fields := []zapcore.Field{zap.String("user", actor), zap.String("action", action)}
	if id := logger.RequestId(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	entry := zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Now(),
		Message: actor + " " + action,
	}
	if err := r.file.Write(entry, fields); err != nil {
		r.fail("write activity file", err, actor, action)
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if _, err := r.db.CreateActivity(storeCtx, database.CreateActivityParams{
		UserEmail: actor,
		Action:    action,
	}); err != nil {
		r.fail("insert activity", err, actor, action)
	}
}

func (r *Recorder) fail(op string, err error, actor, action string) {
	r.log.Error(op, zap.Error(err), zap.String("user", actor), zap.String("action", action))
	r.stats.Incr(stats.ActivityLogFailures)
}

// List returns every activity record, most recent first. Only admins may
// read the log.
func (r *Recorder) List(ctx context.Context, identity string) ([]Record, error) {
	if !r.policy.IsAdmin(identity) {
		return nil, auth.ErrForbidden
	}

	dbActivity, err := r.db.ListActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	records := make([]Record, 0, len(dbActivity))
	for _, a := range dbActivity {
		records = append(records, Record{
			Id:        a.Id,
			UserEmail: a.UserEmail,
			Action:    a.Action,
			Timestamp: a.Timestamp,
		})
	}

	return records, nil
}

func (r *Recorder) Close() error {
	if err := r.sink.Sync(); err != nil {
		r.log.Warn("sync activity log", zap.Error(err))
	}
	return r.closer()
}
