// Package wsdevice implements the hardware.Hardware contract over
// inbound WebSocket connections using gorilla/websocket, adapted from
// the teacher's transport.Transport server-mode WebSocket adapter: the
// same listen/upgrade/read-loop shape, generalized from a single
// anonymous byte stream and single-client restriction to many
// concurrently connected devices, each announcing its own name over a
// query parameter (spec.md §6 "Specifier matching" — Websocket: name
// set/prefix).
package wsdevice

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/server"
)

// Config configures the inbound device listener.
type Config struct {
	ListenAddr string
	Path       string
}

// DefaultConfig mirrors the teacher's server-mode defaults.
func DefaultConfig() Config {
	return Config{ListenAddr: ":54817", Path: "/ws/device"}
}

// CommManager runs an HTTP server that accepts one WebSocket connection
// per device and reports each accepted connection as a discovered
// address, implementing server.CommManager. Unlike BLE/serial, a
// "scan" here just means "the listener is up"; ScanningFinished never
// fires since new devices may connect at any time, so StopScanning
// leaves the listener running and this CommManager only reports real
// connections as they arrive.
type CommManager struct {
	config  Config
	matcher func(announcedName string) bool

	mu       sync.Mutex
	server   *http.Server
	events   chan server.CommManagerEvent
	upgrader websocket.Upgrader
}

// NewCommManager returns a CommManager listening on config.ListenAddr,
// accepting devices whose announced name (the "name" query parameter)
// matcher accepts.
func NewCommManager(config Config, matcher func(announcedName string) bool) *CommManager {
	return &CommManager{
		config:  config,
		matcher: matcher,
		events:  make(chan server.CommManagerEvent, 32),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (c *CommManager) Name() string { return "websocket" }

// StartScanning starts the HTTP listener if it isn't already running.
func (c *CommManager) StartScanning(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.server != nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc(c.config.Path, c.handleUpgrade)
	srv := &http.Server{Addr: c.config.ListenAddr, Handler: mux}
	c.server = srv

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return
		}
	}()
	return nil
}

func (c *CommManager) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if !c.matcher(name) {
		http.Error(w, "device name not accepted", http.StatusForbidden)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	address := fmt.Sprintf("%s@%s", name, r.RemoteAddr)
	hw := &Hardware{
		conn:      conn,
		address:   address,
		name:      name,
		endpoints: []hardware.Endpoint{hardware.EndpointTx, hardware.EndpointRx},
		events:    make(chan hardware.Notification, 32),
		connected: true,
	}

	select {
	case c.events <- server.CommManagerEvent{
		Address:    address,
		Advertised: name,
		Factory:    connectedFactory{hw: hw},
	}:
	default:
		conn.Close()
	}
}

// StopScanning closes the listener; any already-connected devices keep
// running independently of it.
func (c *CommManager) StopScanning(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.server == nil {
		return nil
	}
	err := c.server.Close()
	c.server = nil
	return err
}

func (c *CommManager) Events() <-chan server.CommManagerEvent { return c.events }

// connectedFactory hands back an already-upgraded connection as a
// hardware.Factory; the event loop always connects to the address it
// was just given, and for inbound connections that address IS the live
// socket, so TryCreateHardware has nothing left to do.
type connectedFactory struct {
	hw *Hardware
}

func (f connectedFactory) TryCreateHardware(ctx context.Context, address string) (hardware.Hardware, error) {
	return f.hw, nil
}

// Hardware is the connected hardware.Hardware handle for one inbound
// device socket. Like serial, it is a single bidirectional stream so
// EndpointTx and EndpointRx both address the one connection; a
// read-pump goroutine feeds SubscribeToNotifications.
type Hardware struct {
	mu sync.RWMutex

	conn      *websocket.Conn
	address   string
	name      string
	endpoints []hardware.Endpoint

	events     chan hardware.Notification
	subscribed bool
	connected  bool
	pumpCancel context.CancelFunc
}

func (h *Hardware) Info() hardware.Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return hardware.Info{Name: h.name, Address: h.address, Endpoints: h.endpoints, Connected: h.connected}
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
	conn := h.conn
	connected := h.connected
	h.mu.RUnlock()
	if !connected {
		return nil, hardware.ErrNotConnected
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
			return nil, hardware.ErrReadTimeout
		}
		return nil, err
	}
	return data, nil
}

func (h *Hardware) WriteValue(ctx context.Context, endpoint hardware.Endpoint, data []byte, writeWithResponse bool) error {
	if endpoint != hardware.EndpointTx {
		return hardware.ErrEndpointNotFound
	}
	h.mu.RLock()
	conn := h.conn
	connected := h.connected
	h.mu.RUnlock()
	if !connected {
		return hardware.ErrNotConnected
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

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
	conn := h.conn
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-pumpCtx.Done():
				return
			default:
			}
			_, data, err := conn.ReadMessage()
			if err != nil {
				h.Disconnect(context.Background())
				return
			}
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
	err := h.conn.Close()
	close(h.events)
	return err
}
