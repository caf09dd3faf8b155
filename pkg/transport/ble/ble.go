// Package ble implements the hardware.Hardware contract over Bluetooth
// Low Energy using tinygo.org/x/bluetooth, adapted from the teacher's
// transport.Transport BLE adapter: the same
// adapter-scan-connect-discover-notify shape, but the result is an
// endpoint-addressed hardware.Hardware handle rather than a raw byte
// stream, and discovery reports hits through a CommManager instead of a
// single preconfigured device name (spec.md §6 "Specifier matching" —
// BLE: name set/prefix plus required service UUIDs).
package ble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/server"
)

// EndpointCharacteristics maps each logical hardware.Endpoint this
// device exposes to the BLE characteristic UUID that backs it. A real
// deviceconfig entry supplies one of these per protocol; the zero value
// (no entries) means the device only exposes whatever the protocol's
// Identifier probe discovers at runtime.
type EndpointCharacteristics map[hardware.Endpoint]string

// CommManager scans for BLE advertisements and reports matches to the
// server event loop, implementing server.CommManager.
type CommManager struct {
	adapter *bluetooth.Adapter
	matcher func(name string, serviceUUIDs []string) bool
	factory hardware.Factory

	mu      sync.Mutex
	events  chan server.CommManagerEvent
	scanCtx context.CancelFunc
}

// NewCommManager returns a CommManager that reports an advertisement to
// Events whenever matcher accepts its (name, serviceUUIDs). matcher is
// typically deviceconfig.Manager.MatchBLE's name/UUID half, called once
// per protocol specifier by the caller that wires this manager in.
// factory is handed back on every reported event so the event loop can
// connect to whichever address it decides to match.
func NewCommManager(matcher func(name string, serviceUUIDs []string) bool, factory hardware.Factory) *CommManager {
	return &CommManager{
		adapter: bluetooth.DefaultAdapter,
		matcher: matcher,
		factory: factory,
		events:  make(chan server.CommManagerEvent, 32),
	}
}

func (c *CommManager) Name() string { return "ble" }

// StartScanning enables the adapter and begins reporting every
// advertisement the matcher accepts (spec.md §4.5).
func (c *CommManager) StartScanning(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}

	scanCtx, cancel := context.WithCancel(ctx)
	c.scanCtx = cancel

	go func() {
		err := c.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			name := result.LocalName()
			uuids := serviceUUIDStrings(result)
			if !c.matcher(name, uuids) {
				return
			}
			select {
			case c.events <- server.CommManagerEvent{
				Address:      result.Address.String(),
				Advertised:   name,
				ServiceUUIDs: uuids,
				Factory:      c.factory,
			}:
			default:
			}
		})
		if err != nil {
			return
		}
		<-scanCtx.Done()
		_ = c.adapter.StopScan()
		select {
		case c.events <- server.CommManagerEvent{ScanFinished: true}:
		default:
		}
	}()

	return nil
}

// StopScanning cancels the in-flight scan, if any.
func (c *CommManager) StopScanning(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanCtx != nil {
		c.scanCtx()
		c.scanCtx = nil
	}
	return nil
}

// Events returns the channel server.EventLoop fans in from.
func (c *CommManager) Events() <-chan server.CommManagerEvent { return c.events }

func serviceUUIDStrings(result bluetooth.ScanResult) []string {
	ids := result.AdvertisementPayload.ServiceUUIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// defaultEndpointCharacteristics covers the characteristics this
// module's bundled vendor protocols assume are already discovered when
// their Identifier/Initializer run (lovense: tx/rx, kiiroo:
// firmware/command, vorze: tx) — every characteristic lives on the same
// vendor service the teacher's ble.go hardcoded as a single
// ServiceUUID/CharacteristicUUID pair. A protocol needing a
// characteristic outside this set supplies its own
// EndpointCharacteristics via Factory.Endpoints; deviceconfig has no
// per-device characteristic-UUID override yet (open question, see
// DESIGN.md).
var defaultEndpointCharacteristics = EndpointCharacteristics{
	hardware.EndpointTx:       "0000fff2-0000-1000-8000-00805f9b34fb",
	hardware.EndpointRx:       "0000fff1-0000-1000-8000-00805f9b34fb",
	hardware.EndpointFirmware: "00002a26-0000-1000-8000-00805f9b34fb",
	hardware.EndpointCommand:  "0000fff3-0000-1000-8000-00805f9b34fb",
}

// Factory connects to a discovered BLE address and wraps it as a
// hardware.Hardware handle, implementing hardware.Factory. A zero-value
// Factory falls back to defaultEndpointCharacteristics.
type Factory struct {
	Endpoints EndpointCharacteristics
}

func (f Factory) TryCreateHardware(ctx context.Context, address string) (hardware.Hardware, error) {
	endpoints := f.Endpoints
	if len(endpoints) == 0 {
		endpoints = defaultEndpointCharacteristics
	}

	addr, err := bluetooth.ParseMAC(address)
	if err != nil {
		return nil, fmt.Errorf("ble: parse address %q: %w", address, err)
	}
	adapter := bluetooth.DefaultAdapter
	device, err := adapter.Connect(bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: addr}}, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("ble: connect %q: %w", address, err)
	}

	services, err := device.DiscoverServices(nil)
	if err != nil {
		_ = device.Disconnect()
		return nil, fmt.Errorf("ble: discover services: %w", err)
	}

	// Not every endpoint in the default/configured set exists on every
	// matched device (e.g. lovense devices have no firmware/command
	// characteristic, kiiroo devices have no tx/rx pair); a missing
	// characteristic is skipped rather than treated as a connect
	// failure, and the protocol's own Identify/Initialize step is what
	// discovers whether the endpoints it actually needs came through.
	chars := map[hardware.Endpoint]bluetooth.DeviceCharacteristic{}
	for endpoint, uuidStr := range endpoints {
		uuid, err := bluetooth.ParseUUID(uuidStr)
		if err != nil {
			continue
		}
		for _, svc := range services {
			discovered, err := svc.DiscoverCharacteristics([]bluetooth.UUID{uuid})
			if err == nil && len(discovered) > 0 {
				chars[endpoint] = discovered[0]
				break
			}
		}
	}

	resolvedEndpoints := make([]hardware.Endpoint, 0, len(chars))
	for e := range chars {
		resolvedEndpoints = append(resolvedEndpoints, e)
	}

	return &Hardware{
		device:     device,
		address:    address,
		chars:      chars,
		endpoints:  resolvedEndpoints,
		events:     make(chan hardware.Notification, 32),
		subscribed: map[hardware.Endpoint]bool{},
		connected:  true,
	}, nil
}

// Hardware is the connected hardware.Hardware handle for one BLE
// device: a characteristic per declared endpoint, and a fan-in
// notification channel every subscribed characteristic writes into.
type Hardware struct {
	mu sync.RWMutex

	device    bluetooth.Device
	address   string
	chars     map[hardware.Endpoint]bluetooth.DeviceCharacteristic
	endpoints []hardware.Endpoint

	events     chan hardware.Notification
	subscribed map[hardware.Endpoint]bool
	connected  bool
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

func (h *Hardware) characteristic(endpoint hardware.Endpoint) (bluetooth.DeviceCharacteristic, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.chars[endpoint]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, hardware.ErrEndpointNotFound
	}
	return c, nil
}

// ReadValue reads the characteristic's current value. BLE has no native
// read-with-timeout primitive beyond the call itself, so timeout only
// bounds ctx cancellation via a goroutine handoff.
func (h *Hardware) ReadValue(ctx context.Context, endpoint hardware.Endpoint, expectedLength uint32, timeout time.Duration) ([]byte, error) {
	c, err := h.characteristic(endpoint)
	if err != nil {
		return nil, err
	}
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		buf := make([]byte, 512)
		n, err := c.Read(buf)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{data: buf[:n]}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(timeout):
		return nil, hardware.ErrReadTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hardware) WriteValue(ctx context.Context, endpoint hardware.Endpoint, data []byte, writeWithResponse bool) error {
	c, err := h.characteristic(endpoint)
	if err != nil {
		return err
	}
	if !h.connected {
		return hardware.ErrNotConnected
	}
	_, err = c.WriteWithoutResponse(data)
	if writeWithResponse {
		_, err = c.Write(data)
	}
	return err
}

func (h *Hardware) SubscribeToNotifications(ctx context.Context, endpoint hardware.Endpoint) error {
	c, err := h.characteristic(endpoint)
	if err != nil {
		return err
	}
	h.mu.Lock()
	if h.subscribed[endpoint] {
		h.mu.Unlock()
		return hardware.ErrAlreadySubscribed
	}
	h.subscribed[endpoint] = true
	h.mu.Unlock()

	return c.EnableNotifications(func(buf []byte) {
		data := make([]byte, len(buf))
		copy(data, buf)
		select {
		case h.events <- hardware.Notification{Endpoint: endpoint, Data: data, Timestamp: time.Now()}:
		default:
		}
	})
}

func (h *Hardware) UnsubscribeFromNotifications(ctx context.Context, endpoint hardware.Endpoint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.subscribed[endpoint] {
		return hardware.ErrNotSubscribed
	}
	delete(h.subscribed, endpoint)
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
	err := h.device.Disconnect()
	close(h.events)
	return err
}
