package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/commatea/hapticbridge/pkg/message"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPingWatchdogDisabledWhenZero(t *testing.T) {
	w := NewPingWatchdog(0, NewManager(), newTestLogger())
	if w.Enabled() {
		t.Fatal("expected watchdog with 0 maxPingTime to be disabled")
	}
}

func TestPingWatchdogResetPreventsTimeout(t *testing.T) {
	w := NewPingWatchdog(50*time.Millisecond, NewManager(), newTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Keep resetting faster than the timeout would fire.
	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		w.Reset()
	}

	select {
	case err := <-w.TimedOut():
		t.Fatalf("expected no timeout while resets keep arriving, got %v", err)
	default:
	}
	cancel()
	<-done
}

func TestPingWatchdogFiresOnTimeout(t *testing.T) {
	w := NewPingWatchdog(20*time.Millisecond, NewManager(), newTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go w.Run(ctx)

	select {
	case err := <-w.TimedOut():
		if err.ErrorCode != message.ErrorPing {
			t.Fatalf("ErrorCode = %v, want ErrorPing", err.ErrorCode)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected ping timeout to fire")
	}
}
