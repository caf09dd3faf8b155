// Package hardware defines the capability contract that transports hand
// to the server core: a connected, endpoint-addressed device handle with
// read/write/subscribe and a broadcast notification stream. Concrete
// transports (BLE, serial, websocket, HID, ...) are external
// collaborators; this package only names the contract they must satisfy.
package hardware

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Endpoint is a logical addressable channel on a piece of hardware: a BLE
// characteristic, a serial direction, or an HID report. The set is closed
// and serializes to a lowercase wire string (spec.md §3/§6).
type Endpoint int

const (
	EndpointTx Endpoint = iota
	EndpointRx
	EndpointCommand
	EndpointFirmware
	EndpointTxMode
	EndpointTxVibrate
	EndpointTxShock
	EndpointTxVendorControl
	EndpointRxAccel
	EndpointRxPressure
	EndpointRxTouch
	EndpointRxBLEBattery
	EndpointRxBLEModel
	EndpointWhitelist
	endpointGenericBase
)

// Generic returns the Generic<n> endpoint tag, n in [0,31].
func Generic(n int) Endpoint {
	if n < 0 || n > 31 {
		panic(fmt.Sprintf("hardware: generic endpoint index out of range: %d", n))
	}
	return endpointGenericBase + Endpoint(n)
}

var endpointNames = map[Endpoint]string{
	EndpointTx:              "tx",
	EndpointRx:              "rx",
	EndpointCommand:         "command",
	EndpointFirmware:        "firmware",
	EndpointTxMode:          "txmode",
	EndpointTxVibrate:       "txvibrate",
	EndpointTxShock:         "txshock",
	EndpointTxVendorControl: "txvendorcontrol",
	EndpointRxAccel:         "rxaccel",
	EndpointRxPressure:      "rxpressure",
	EndpointRxTouch:         "rxtouch",
	EndpointRxBLEBattery:    "rxblebattery",
	EndpointRxBLEModel:      "rxblemodel",
	EndpointWhitelist:       "whitelist",
}

// String renders the endpoint in its lowercase wire form.
func (e Endpoint) String() string {
	if e >= endpointGenericBase && e < endpointGenericBase+32 {
		return fmt.Sprintf("generic%d", int(e-endpointGenericBase))
	}
	if name, ok := endpointNames[e]; ok {
		return name
	}
	return "unknown"
}

// ParseEndpoint parses the lowercase wire form back into an Endpoint.
func ParseEndpoint(s string) (Endpoint, bool) {
	for e, name := range endpointNames {
		if name == s {
			return e, true
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "generic%d", &n); err == nil && n >= 0 && n <= 31 {
		return Generic(n), true
	}
	return 0, false
}

// Common hardware errors.
var (
	ErrNotConnected       = errors.New("hardware: not connected")
	ErrEndpointNotFound   = errors.New("hardware: endpoint not supported by this device")
	ErrAlreadySubscribed  = errors.New("hardware: endpoint already subscribed")
	ErrNotSubscribed      = errors.New("hardware: endpoint not subscribed")
	ErrReadTimeout        = errors.New("hardware: read timed out")
)

// Notification is a single inbound event from a subscribed endpoint.
type Notification struct {
	Endpoint  Endpoint
	Data      []byte
	Timestamp time.Time
}

// Info is static/runtime information about a connected hardware handle.
type Info struct {
	Name      string
	Address   string
	Endpoints []Endpoint
	Connected bool
}

// HasEndpoint reports whether the endpoint is advertised by this hardware.
func (i Info) HasEndpoint(e Endpoint) bool {
	for _, have := range i.Endpoints {
		if have == e {
			return true
		}
	}
	return false
}

// Hardware is the live capability surface a transport hands to the server
// core for one physical device. Implementations must be safe for
// concurrent use: the event loop and a device's protocol handler both
// hold a reference to the same Hardware instance (spec.md §3/§9).
type Hardware interface {
	// Info returns the hardware's static/runtime info.
	Info() Info

	// Connected reports whether the handle is currently usable.
	Connected() bool

	// ReadValue performs a single read from an endpoint. expectedLength of
	// 0 is intentionally unvalidated here (spec.md §9) — protocols decide
	// what it means for their endpoints.
	ReadValue(ctx context.Context, endpoint Endpoint, expectedLength uint32, timeout time.Duration) ([]byte, error)

	// WriteValue writes data to an endpoint. writeWithResponse requests a
	// write that blocks for an acknowledgement where the transport
	// supports the distinction (e.g. BLE write-with/-without-response);
	// transports that don't support the distinction ignore it.
	WriteValue(ctx context.Context, endpoint Endpoint, data []byte, writeWithResponse bool) error

	// SubscribeToNotifications begins delivering endpoint notifications on
	// the Events channel.
	SubscribeToNotifications(ctx context.Context, endpoint Endpoint) error

	// UnsubscribeFromNotifications stops delivering notifications for an
	// endpoint previously passed to SubscribeToNotifications.
	UnsubscribeFromNotifications(ctx context.Context, endpoint Endpoint) error

	// Events returns the hardware's broadcast notification stream. It is
	// closed when Disconnect completes.
	Events() <-chan Notification

	// Disconnect tears down the connection and closes Events.
	Disconnect(ctx context.Context) error
}

// Factory produces a connected Hardware instance for a discovered device
// record. Concrete transports implement this; it is how
// "transports → DeviceFound" (spec.md §2) hands off to the core.
type Factory interface {
	// TryCreateHardware attempts to establish a connection to the
	// advertised device and returns a ready-to-use Hardware handle.
	TryCreateHardware(ctx context.Context, address string) (Hardware, error)
}
