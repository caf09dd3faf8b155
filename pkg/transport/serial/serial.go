// Package serial implements the hardware.Hardware contract over RS232
// style serial ports using go.bug.st/serial, adapted from the teacher's
// transport.Transport serial adapter: the same port-open/configure/
// read/write shape, generalized from a single anonymous byte stream to
// the two endpoints a serial device actually exposes (spec.md §3: tx,
// rx) and to enumeration-based discovery instead of a single
// preconfigured port (spec.md §6 "Specifier matching" — Serial: port
// name prefix).
package serial

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/server"
)

// PortConfig carries the line settings a matched protocol requires.
// Defaults mirror the teacher's DefaultConfig.
type PortConfig struct {
	BaudRate    int
	DataBits    int
	Parity      string
	StopBits    float64
	ReadTimeout time.Duration
}

// DefaultPortConfig returns the teacher's baseline 8N1 9600bps settings.
func DefaultPortConfig() PortConfig {
	return PortConfig{
		BaudRate:    9600,
		DataBits:    8,
		Parity:      "none",
		StopBits:    1,
		ReadTimeout: 100 * time.Millisecond,
	}
}

func (c PortConfig) mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		Parity:   c.parity(),
		StopBits: c.stopBits(),
	}
}

func (c PortConfig) parity() serial.Parity {
	switch c.Parity {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	case "mark":
		return serial.MarkParity
	case "space":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func (c PortConfig) stopBits() serial.StopBits {
	switch c.StopBits {
	case 1.5:
		return serial.OnePointFiveStopBits
	case 2:
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

// CommManager discovers serial ports by enumerating the host's port
// list and matching against a prefix predicate, implementing
// server.CommManager. Serial has no native advertisement stream, so a
// scan is a single enumeration pass followed immediately by
// ScanFinished, unlike BLE's continuous callback.
type CommManager struct {
	matcher func(portName string) bool
	config  PortConfig

	mu      sync.Mutex
	events  chan server.CommManagerEvent
	running bool
}

// NewCommManager returns a CommManager that reports every enumerated
// port matcher accepts, opened with config's line settings.
func NewCommManager(matcher func(portName string) bool, config PortConfig) *CommManager {
	return &CommManager{
		matcher: matcher,
		config:  config,
		events:  make(chan server.CommManagerEvent, 32),
	}
}

func (c *CommManager) Name() string { return "serial" }

// StartScanning enumerates the host's serial ports once and reports
// every matching one, then signals ScanFinished.
func (c *CommManager) StartScanning(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("serial: list ports: %w", err)
	}

	for _, port := range ports {
		if !c.matcher(port) {
			continue
		}
		select {
		case c.events <- server.CommManagerEvent{
			Address:    port,
			Advertised: port,
			Factory:    Factory{Config: c.config},
		}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case c.events <- server.CommManagerEvent{ScanFinished: true}:
	default:
	}
	return nil
}

// StopScanning is a no-op past the single enumeration pass; serial
// scanning completes synchronously within StartScanning.
func (c *CommManager) StopScanning(ctx context.Context) error {
	return nil
}

func (c *CommManager) Events() <-chan server.CommManagerEvent { return c.events }

// Factory opens a serial port by path and wraps it as a
// hardware.Hardware handle, implementing hardware.Factory.
type Factory struct {
	Config PortConfig
}

func (f Factory) TryCreateHardware(ctx context.Context, address string) (hardware.Hardware, error) {
	cfg := f.Config
	if cfg.BaudRate == 0 {
		cfg = DefaultPortConfig()
	}
	port, err := serial.Open(address, cfg.mode())
	if err != nil {
		return nil, fmt.Errorf("serial: open %q: %w", address, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial: set read timeout: %w", err)
	}

	h := &Hardware{
		port:      port,
		address:   address,
		endpoints: []hardware.Endpoint{hardware.EndpointTx, hardware.EndpointRx},
		events:    make(chan hardware.Notification, 32),
		connected: true,
	}
	return h, nil
}

// Hardware is the connected hardware.Hardware handle for one serial
// port. Serial ports are a single bidirectional byte stream, so
// EndpointTx and EndpointRx address the same underlying port's
// Write/Read pair; subscribing to EndpointRx starts a read-pump
// goroutine that turns the blocking Read loop into Notifications.
type Hardware struct {
	mu sync.RWMutex

	port      serial.Port
	address   string
	endpoints []hardware.Endpoint

	events     chan hardware.Notification
	subscribed bool
	connected  bool
	pumpCancel context.CancelFunc
}

func (h *Hardware) Info() hardware.Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return hardware.Info{Name: h.address, Address: h.address, Endpoints: h.endpoints, Connected: h.connected}
}

func (h *Hardware) Connected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connected
}

func (h *Hardware) ReadValue(ctx context.Context, endpoint hardware.Endpoint, expectedLength uint32, timeout time.Duration) ([]byte, error) {
	if endpoint != hardware.EndpointRx {
		return nil, hardware.ErrEndpointNotFound
	}
	h.mu.RLock()
	if !h.connected {
		h.mu.RUnlock()
		return nil, hardware.ErrNotConnected
	}
	port := h.port
	h.mu.RUnlock()

	size := expectedLength
	if size == 0 {
		size = 256
	}
	buf := make([]byte, size)
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		n, err := port.Read(buf)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{data: buf[:n]}
	}()
	select {
	case r := <-done:
		if r.err == io.EOF {
			return nil, hardware.ErrNotConnected
		}
		return r.data, r.err
	case <-time.After(timeout):
		return nil, hardware.ErrReadTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hardware) WriteValue(ctx context.Context, endpoint hardware.Endpoint, data []byte, writeWithResponse bool) error {
	if endpoint != hardware.EndpointTx {
		return hardware.ErrEndpointNotFound
	}
	h.mu.RLock()
	if !h.connected {
		h.mu.RUnlock()
		return hardware.ErrNotConnected
	}
	port := h.port
	h.mu.RUnlock()
	_, err := port.Write(data)
	return err
}

// SubscribeToNotifications starts a read-pump goroutine that turns the
// port's blocking reads into Notifications; serial has no native
// notify mechanism, so this is the only way to observe unsolicited
// device output.
func (h *Hardware) SubscribeToNotifications(ctx context.Context, endpoint hardware.Endpoint) error {
	if endpoint != hardware.EndpointRx {
		return hardware.ErrEndpointNotFound
	}
	h.mu.Lock()
	if h.subscribed {
		h.mu.Unlock()
		return hardware.ErrAlreadySubscribed
	}
	pumpCtx, cancel := context.WithCancel(ctx)
	h.subscribed = true
	h.pumpCancel = cancel
	port := h.port
	h.mu.Unlock()

	go func() {
		buf := make([]byte, 256)
		for {
			select {
			case <-pumpCtx.Done():
				return
			default:
			}
			n, err := port.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case h.events <- hardware.Notification{Endpoint: hardware.EndpointRx, Data: data, Timestamp: time.Now()}:
			default:
			}
		}
	}()
	return nil
}

func (h *Hardware) UnsubscribeFromNotifications(ctx context.Context, endpoint hardware.Endpoint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.subscribed {
		return hardware.ErrNotSubscribed
	}
	h.subscribed = false
	if h.pumpCancel != nil {
		h.pumpCancel()
		h.pumpCancel = nil
	}
	return nil
}

func (h *Hardware) Events() <-chan hardware.Notification { return h.events }

func (h *Hardware) Disconnect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connected {
		return nil
	}
	h.connected = false
	if h.pumpCancel != nil {
		h.pumpCancel()
	}
	err := h.port.Close()
	close(h.events)
	return err
}
