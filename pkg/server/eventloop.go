package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/metrics"
	"github.com/commatea/hapticbridge/pkg/protocol"
)

// discoveryState tracks one candidate device through the pipeline a scan
// hit must clear before it is registered (spec.md §4.5: Advertised ->
// Matched -> Connected -> Identified -> AttributesResolved -> Ready ->
// Registered, or Dropped at any stage).
type discoveryState int

const (
	stateAdvertised discoveryState = iota
	stateMatched
	stateConnected
	stateIdentified
	stateAttributesResolved
	stateReady
	stateRegistered
	stateDropped
)

func (s discoveryState) String() string {
	names := [...]string{"advertised", "matched", "connected", "identified", "attributes_resolved", "ready", "registered", "dropped"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// CommManager is the narrow surface a transport exposes to the event
// loop: a stream of discovered advertisements, and start/stop controls
// for whatever native scan it runs (spec.md §4.5; adapted from the
// teacher's transport.Transport Discover contract).
type CommManager interface {
	Name() string
	StartScanning(ctx context.Context) error
	StopScanning(ctx context.Context) error
	Events() <-chan CommManagerEvent
}

// CommManagerEvent is one event a CommManager publishes: either a scan
// hit ready for matching, or a signal that its own scan pass completed.
type CommManagerEvent struct {
	ScanFinished bool
	Address      string
	Advertised   string
	ServiceUUIDs []string
	Factory      hardware.Factory
}

// EventLoop fans in every registered CommManager's discovery events,
// drives each hit through the Advertised->Registered state machine
// against the configuration manager and protocol registry, and
// aggregates per-manager ScanningFinished signals into a single
// ScanningFinished for the client (spec.md §4.5).
type EventLoop struct {
	manager     *Manager
	config      *deviceconfig.Manager
	protocols   *protocol.Registry
	commManagers []CommManager
	log         *slog.Logger

	scanFinishedCh chan struct{}
}

// NewEventLoop wires a Manager to the configuration manager, protocol
// registry, and the set of transports it should fan in from.
func NewEventLoop(manager *Manager, config *deviceconfig.Manager, protocols *protocol.Registry, commManagers []CommManager, log *slog.Logger) *EventLoop {
	return &EventLoop{
		manager:        manager,
		config:         config,
		protocols:      protocols,
		commManagers:   commManagers,
		log:            log,
		scanFinishedCh: make(chan struct{}, 1),
	}
}

// ScanningFinished returns the channel the server selects on to emit a
// ScanningFinished notification.
func (l *EventLoop) ScanningFinished() <-chan struct{} { return l.scanFinishedCh }

// Run fans in every comm manager's event channel and the manager's own
// scan-control channel until ctx is cancelled (spec.md §5 "event loop is
// the single writer of the device map").
func (l *EventLoop) Run(ctx context.Context) {
	cases := make(chan CommManagerEvent)
	for _, cm := range l.commManagers {
		go forward(ctx, cm.Events(), cases)
	}

	pendingFinished := map[string]bool{}
	for _, cm := range l.commManagers {
		pendingFinished[cm.Name()] = false
	}

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.manager.ScanControl():
			l.handleScanControl(ctx, cmd, pendingFinished)
		case ev, ok := <-cases:
			if !ok {
				return
			}
			l.handleEvent(ctx, ev, pendingFinished)
		}
	}
}

func forward(ctx context.Context, in <-chan CommManagerEvent, out chan<- CommManagerEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *EventLoop) handleScanControl(ctx context.Context, cmd scanCommand, pendingFinished map[string]bool) {
	for _, cm := range l.commManagers {
		var err error
		switch cmd {
		case scanStart:
			for name := range pendingFinished {
				pendingFinished[name] = false
			}
			err = cm.StartScanning(ctx)
		case scanStop:
			err = cm.StopScanning(ctx)
		}
		if err != nil {
			l.log.Warn("comm manager scan control failed", "manager", cm.Name(), "error", err)
		}
	}
}

func (l *EventLoop) handleEvent(ctx context.Context, ev CommManagerEvent, pendingFinished map[string]bool) {
	if ev.ScanFinished {
		l.onScanFinished(pendingFinished)
		return
	}
	l.matchAndRegister(ctx, ev)
}

// onScanFinished tracks per-manager completion and emits a single
// aggregated ScanningFinished once every manager has reported, matching
// original_source's warning about overlapping scan managers: a second
// StartScanning before the first round's ScanningFinished fired resets
// the tracking table rather than silently losing a manager's signal.
// Events carry no manager name, so each report marks one still-pending
// entry finished: ScanningFinished fires after as many reports as there
// are managers.
func (l *EventLoop) onScanFinished(pendingFinished map[string]bool) {
	for name, done := range pendingFinished {
		if !done {
			pendingFinished[name] = true
			break
		}
	}
	for _, done := range pendingFinished {
		if !done {
			return
		}
	}
	select {
	case l.scanFinishedCh <- struct{}{}:
	default:
	}
}

// matchAndRegister drives one scan hit through the discovery state
// machine, dropping it with a log line at whichever stage fails (spec.md
// §4.5 "Dropped").
func (l *EventLoop) matchAndRegister(ctx context.Context, ev CommManagerEvent) {
	state := stateAdvertised
	corrID := uuid.NewString()

	if !l.config.AddressAllowed(ev.Address) {
		l.drop(corrID, state, ev.Address, fmt.Errorf("address not allowed"))
		return
	}

	protocolName, _, ok := l.config.MatchBLE(ev.Advertised, ev.ServiceUUIDs)
	if !ok {
		protocolName, _, ok = l.config.MatchSerial(ev.Advertised)
	}
	if !ok {
		protocolName, _, ok = l.config.MatchWebsocket(ev.Advertised)
	}
	if !ok {
		l.drop(corrID, state, ev.Address, fmt.Errorf("no protocol specifier matched"))
		return
	}
	state = stateMatched

	factory, ok := l.protocols.Lookup(protocolName)
	if !ok {
		l.drop(corrID, state, ev.Address, fmt.Errorf("protocol %q has no registered factory", protocolName))
		return
	}

	hw, err := ev.Factory.TryCreateHardware(ctx, ev.Address)
	if err != nil {
		l.drop(corrID, state, ev.Address, err)
		return
	}
	state = stateConnected

	attrID, err := factory.NewIdentifier().Identify(ctx, hw)
	if err != nil {
		_ = hw.Disconnect(ctx)
		l.drop(corrID, state, ev.Address, err)
		return
	}
	state = stateIdentified

	endpoints := hw.Info().Endpoints
	attrs, err := l.config.AttributesFor(protocolName, attrID, endpoints)
	if err != nil {
		_ = hw.Disconnect(ctx)
		l.drop(corrID, state, ev.Address, err)
		return
	}
	state = stateAttributesResolved

	handler, err := factory.NewInitializer().Initialize(ctx, hw, attrs)
	if err != nil {
		_ = hw.Disconnect(ctx)
		l.drop(corrID, state, ev.Address, err)
		return
	}
	state = stateReady

	id := deviceconfig.DeviceIdentifier{ProtocolName: protocolName, Address: ev.Address}
	reservedIndex, hasReserved := l.config.ReservedIndexFor(id)
	index := l.manager.AllocateIndex(reservedIndex, hasReserved)

	name := l.config.DisplayName(hw.Info().Name)
	dev := NewServerDevice(index, name, protocolName, attrs, hw, handler)
	l.manager.Register(dev)
	state = stateRegistered

	l.log.Info("device registered", "correlation_id", corrID, "index", index, "protocol", protocolName, "address", ev.Address, "state", state.String())
}

func (l *EventLoop) drop(corrID string, state discoveryState, address string, err error) {
	metrics.DiscoveryDropped.WithLabelValues(state.String()).Inc()
	l.log.Warn("device discovery dropped", "correlation_id", corrID, "state", state.String(), "next_state", stateDropped.String(), "address", address, "error", err)
}
