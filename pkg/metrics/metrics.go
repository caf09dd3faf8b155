// Package metrics exposes Prometheus counters and gauges for the
// device manager and protocol handlers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DevicesRegistered is the total number of devices added to the live map.
	DevicesRegistered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hapticbridge_devices_registered_total",
		Help: "Total number of devices registered by protocol name",
	}, []string{"protocol"})

	// DevicesRemoved is the total number of devices removed from the live map.
	DevicesRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hapticbridge_devices_removed_total",
		Help: "Total number of devices removed by protocol name",
	}, []string{"protocol"})

	// DevicesConnected is the current number of live devices.
	DevicesConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hapticbridge_devices_connected",
		Help: "Current number of devices in the live map",
	})

	// CommandsRouted counts client commands routed to a device, by message name and outcome.
	CommandsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hapticbridge_commands_routed_total",
		Help: "Total number of device commands routed, by message type and status",
	}, []string{"message", "status"})

	// WritesSuppressed counts hardware writes suppressed by a protocol handler's last-sent cache.
	WritesSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hapticbridge_writes_suppressed_total",
		Help: "Total number of hardware writes suppressed as no-ops by the last-sent cache",
	}, []string{"protocol"})

	// PingTimeouts counts ping-watchdog triggered stop-all events.
	PingTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hapticbridge_ping_timeouts_total",
		Help: "Total number of times the ping watchdog stopped all devices",
	})

	// DiscoveryDropped counts discovery attempts that failed before registration, by stage.
	DiscoveryDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hapticbridge_discovery_dropped_total",
		Help: "Total number of discovery attempts dropped, by the stage that failed",
	}, []string{"stage"})
)

// Status label values for CommandsRouted.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
