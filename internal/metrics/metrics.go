// Package metrics exposes Prometheus instrumentation for the network
// runtime: process lifecycle, channel backpressure, and broadcast fanout.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/svenknobloch/ebb/internal/logging"
)

var (
	ActiveProcesses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ebb_active_processes",
		Help: "Number of accounted processes currently registered with a network.",
	})
	ProcessesSpawned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebb_processes_spawned_total",
		Help: "Total processes spawned, by pool.",
	}, []string{"pool"})
	TasksSpawned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebb_tasks_spawned_total",
		Help: "Total unaccounted tasks spawned, by pool.",
	}, []string{"pool"})
	NetworkShutdowns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebb_network_shutdowns_total",
		Help: "Total times a network's active-process counter reached zero.",
	})
	ChannelsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebb_channels_created_total",
		Help: "Total channels created across all receivers.",
	})
	ChannelClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebb_channel_closed_total",
		Help: "Total channels that transitioned to closed.",
	})
	ChannelPushBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebb_channel_push_blocked_total",
		Help: "Total send attempts that had to wait for capacity.",
	})
	ChannelPushDroppedUnbound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebb_channel_push_dropped_unbound_total",
		Help: "Total sends silently dropped because the sender had no bound target.",
	})
	BroadcastFanout = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ebb_broadcast_fanout",
		Help: "Number of targets reached by the most recent broadcast send.",
	})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebb_errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})
)

// Error label constants (stable label values to bound cardinality).
const (
	ErrSendClosed = "send_closed"
	ErrSendFull   = "send_full"
)

// StartHTTP serves Prometheus metrics at /metrics.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

func IncProcessesSpawned(pool string) { ProcessesSpawned.WithLabelValues(pool).Inc() }
func IncTasksSpawned(pool string)     { TasksSpawned.WithLabelValues(pool).Inc() }
func IncActiveProcesses()             { ActiveProcesses.Inc() }
func DecActiveProcesses()             { ActiveProcesses.Dec() }
func IncNetworkShutdowns()            { NetworkShutdowns.Inc() }
func IncChannelsCreated()             { ChannelsCreated.Inc() }
func IncChannelClosed()               { ChannelClosed.Inc() }
func IncPushBlocked()                 { ChannelPushBlocked.Inc() }
func IncPushDroppedUnbound()          { ChannelPushDroppedUnbound.Inc() }
func SetBroadcastFanout(n int)        { BroadcastFanout.Set(float64(n)) }
func IncError(label string)           { Errors.WithLabelValues(label).Inc() }
