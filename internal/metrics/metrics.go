// Package metrics holds the process-wide prometheus instruments and the
// localhost-only debug listener that serves them. Label values are bounded
// (tick cause, rejection reason); nothing per-player or per-lobby ever
// becomes a label.
package metrics

import (
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	lobbiesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_lobbies_active",
		Help: "Lobbies currently held in the directory",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_ws_connections_active",
		Help: "Currently registered websocket connections",
	})

	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_ticks_total",
		Help: "Tick advances by cause",
	}, []string{"cause"}) // Bounded: "start", "early", "deadline"

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent inside one tick advance (lock held)",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_broadcast_frames_total",
		Help: "Snapshot frames enqueued to clients",
	})

	connectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_connections_rejected_total",
		Help: "Connections rejected at admission",
	}, []string{"reason"}) // Bounded: "rate_limit", "bad_url", "lobby", "admission"

	inputsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_inputs_total",
		Help: "Client inputs by admission result",
	}, []string{"result"}) // Bounded: the InputResult string set
)

// UpdateLobbies sets the active-lobby gauge.
func UpdateLobbies(n int) { lobbiesActive.Set(float64(n)) }

// UpdateWSConnections sets the registered-connection gauge.
func UpdateWSConnections(n int) { wsConnectionsActive.Set(float64(n)) }

// ObserveTick records one completed advance and its in-lock duration.
func ObserveTick(cause string, d time.Duration) {
	ticksTotal.WithLabelValues(cause).Inc()
	tickDuration.Observe(d.Seconds())
}

// RecordBroadcast counts frames enqueued during one fan-out.
func RecordBroadcast(frames int) { broadcastsTotal.Add(float64(frames)) }

// RecordConnectionRejected counts one admission rejection.
func RecordConnectionRejected(reason string) { connectionsRejected.WithLabelValues(reason).Inc() }

// RecordInput counts one client input by its admission result.
func RecordInput(result string) { inputsTotal.WithLabelValues(result).Inc() }

// DebugConfig configures the internal observability listener.
type DebugConfig struct {
	Enabled    bool
	ListenAddr string // keep on 127.0.0.1; pprof must never be public
}

// StartDebugServer serves /metrics, /healthz and pprof on the debug address.
func StartDebugServer(cfg DebugConfig) error {
	if !cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	go func() {
		log.Printf("🔍 Debug server on http://%s (metrics + pprof)", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ Debug server stopped: %v", err)
		}
	}()

	return nil
}
