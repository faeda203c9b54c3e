// Package stats keeps process counters and serves them as JSON.
package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"time"
)

const mapName = "chat-stats"

// Counter names shared by the chat server and the HTTP API.
const (
	ActiveClients      = "NumActiveClients"
	MessagesRelayed    = "MessagesRelayed"
	OnlineBroadcasts   = "OnlineBroadcasts"
	MessagesStored     = "MessagesStored"
	AccountsCreated    = "AccountsCreated"
	CheckoutsCompleted = "CheckoutsCompleted"
)

type StatsProvider interface {
	Incr(name string)
	Decr(name string)
	RegisterMetric(name string)
	Run()
}

type StatsUpdater struct {
	vars       *expvar.Map
	updateChan chan *metricsUpdateReq
	stopOnce   sync.Once
}

type metricsUpdateReq struct {
	name  string
	value int64
}

func (su *StatsUpdater) expvarHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	data := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		data[kv.Key] = value
	})

	json.NewEncoder(w).Encode(map[string]any{mapName: data})
}

// NewStatsUpdater creates a stats updater and serves its counters on
// GET /debug/vars. The map is kept out of the global expvar registry so
// more than one updater can exist in a process.
func NewStatsUpdater(mux *http.ServeMux) *StatsUpdater {
	su := &StatsUpdater{
		vars:       new(expvar.Map).Init(),
		updateChan: make(chan *metricsUpdateReq, 512),
	}
	mux.HandleFunc("GET /debug/vars", su.expvarHandler)

	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))

	return su
}

// updateMetrics applies counter changes in order. A counter that was never
// registered is created on first use.
func (su *StatsUpdater) updateMetrics() {
	for req := range su.updateChan {
		su.vars.Add(req.name, req.value)
	}
}

func (su *StatsUpdater) Incr(name string) {
	su.updateChan <- &metricsUpdateReq{name: name, value: 1}
}

func (su *StatsUpdater) Decr(name string) {
	su.updateChan <- &metricsUpdateReq{name: name, value: -1}
}

func (su *StatsUpdater) RegisterMetric(name string) {
	if su.vars.Get(name) == nil {
		su.vars.Set(name, new(expvar.Int))
	}
}

func (su *StatsUpdater) Run() {
	go su.updateMetrics()
}

func (su *StatsUpdater) Stop() {
	su.stopOnce.Do(func() { close(su.updateChan) })
}
