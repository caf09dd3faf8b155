package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/metrics"
)

// PingWatchdog enforces the handshake-negotiated MaxPingTime: if no Ping
// arrives within the interval, it stops every device and reports
// ERROR_PING (spec.md §6 "Handshake" step 3, §8 scenario 5).
type PingWatchdog struct {
	maxPingTime time.Duration
	manager     *Manager
	log         *slog.Logger

	resetCh  chan struct{}
	timedOut chan *message.Error
}

// NewPingWatchdog returns a disabled watchdog when maxPingTime is 0
// (spec.md §6: "If MaxPingTime > 0"). Callers should check Enabled
// before calling Run.
func NewPingWatchdog(maxPingTime time.Duration, manager *Manager, log *slog.Logger) *PingWatchdog {
	return &PingWatchdog{
		maxPingTime: maxPingTime,
		manager:     manager,
		log:         log,
		resetCh:     make(chan struct{}, 1),
		timedOut:    make(chan *message.Error, 1),
	}
}

// Enabled reports whether this watchdog should run at all.
func (w *PingWatchdog) Enabled() bool { return w.maxPingTime > 0 }

// Reset signals that a Ping arrived, restarting the countdown.
func (w *PingWatchdog) Reset() {
	select {
	case w.resetCh <- struct{}{}:
	default:
	}
}

// TimedOut returns the channel that receives the wire Error to send the
// client once a ping timeout fires.
func (w *PingWatchdog) TimedOut() <-chan *message.Error { return w.timedOut }

// Run blocks until ctx is cancelled or a ping timeout fires, at which
// point it calls StopAllDevices and publishes an ERROR_PING on
// TimedOut, then returns (the session is expected to close).
func (w *PingWatchdog) Run(ctx context.Context) {
	if !w.Enabled() {
		<-ctx.Done()
		return
	}
	timer := time.NewTimer(w.maxPingTime)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.resetCh:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.maxPingTime)
		case <-timer.C:
			metrics.PingTimeouts.Inc()
			w.log.Warn("ping timeout, stopping all devices")
			if _, err := w.manager.StopAllDevices(ctx); err != nil {
				w.log.Warn("stop all devices after ping timeout failed", "error", err)
			}
			select {
			case w.timedOut <- &message.Error{Id: 0, ErrorMessage: "ping timeout", ErrorCode: message.ErrorPing}:
			default:
			}
			return
		}
	}
}
