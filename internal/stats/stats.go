// Package stats exposes service counters through expvar at /debug/vars.
package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"time"
)

const (
	Requests            = "Requests"
	LoginsSucceeded     = "LoginsSucceeded"
	LoginsRejected      = "LoginsRejected"
	RoomsCreated        = "RoomsCreated"
	RoomsDeleted        = "RoomsDeleted"
	ActivityLogFailures = "ActivityLogFailures"
)

var counters = []string{
	Requests,
	LoginsSucceeded,
	LoginsRejected,
	RoomsCreated,
	RoomsDeleted,
	ActivityLogFailures,
}

type StatsProvider interface {
	Incr(name string)
	RegisterMetric(name string)
	Run()
}

// StatsUpdater serializes counter updates through a single goroutine.
// Updates sent after Stop are dropped.
type StatsUpdater struct {
	vars       *expvar.Map
	updateChan chan metricsUpdateReq
	done       chan struct{}

	mu      sync.RWMutex
	stopped bool
}

type metricsUpdateReq struct {
	name string
}

var (
	varsOnce sync.Once
	varsMap  *expvar.Map
)

// publishedVars returns the process-wide expvar map. expvar panics on
// duplicate names, so every updater shares one map.
func publishedVars() *expvar.Map {
	varsOnce.Do(func() {
		varsMap = expvar.NewMap("roomreg-stats")
	})
	return varsMap
}

func (su *StatsUpdater) expvarHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	expvarData := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		expvarData[kv.Key] = value
	})

	json.NewEncoder(w).Encode(expvarData)
}

// NewStatsUpdater resets the service counters and mounts the expvar handler
// on mux.
func NewStatsUpdater(mux *http.ServeMux) *StatsUpdater {
	su := &StatsUpdater{
		vars:       publishedVars(),
		updateChan: make(chan metricsUpdateReq, 512),
		done:       make(chan struct{}),
	}
	mux.Handle("GET /debug/vars", http.HandlerFunc(su.expvarHandler))
	su.initializeMetrics()

	return su
}

func (su *StatsUpdater) initializeMetrics() {
	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))

	for _, name := range counters {
		su.RegisterMetric(name)
	}
}

func (su *StatsUpdater) updateMetrics() {
	defer close(su.done)
	for req := range su.updateChan {
		metric, ok := su.vars.Get(req.name).(*expvar.Int)
		if !ok {
			continue
		}
		metric.Add(1)
	}
}

func (su *StatsUpdater) Incr(name string) {
	su.mu.RLock()
	defer su.mu.RUnlock()
	if su.stopped {
		return
	}
	su.updateChan <- metricsUpdateReq{name: name}
}

func (su *StatsUpdater) RegisterMetric(name string) {
	su.vars.Set(name, new(expvar.Int))
}

// Value returns the current value of a counter, or 0 if it is unknown.
func (su *StatsUpdater) Value(name string) int64 {
	if metric, ok := su.vars.Get(name).(*expvar.Int); ok {
		return metric.Value()
	}
	return 0
}

func (su *StatsUpdater) Run() {
	go su.updateMetrics()
}

// Stop closes the update channel and waits for queued updates to be applied.
// Run must have been called.
func (su *StatsUpdater) Stop() {
	su.mu.Lock()
	if su.stopped {
		su.mu.Unlock()
		return
	}
	su.stopped = true
	close(su.updateChan)
	su.mu.Unlock()

	<-su.done
}
