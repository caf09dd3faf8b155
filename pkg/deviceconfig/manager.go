package deviceconfig

import (
	"fmt"
	"strings"
	"sync"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
)

// ProtocolFactory constructs the protocol-specific identify/initialize
// chain for a device matched against this protocol (spec.md §4.4). The
// concrete type lives in pkg/protocol; deviceconfig only needs the
// interface to keep the registry decoupled from protocol internals.
type ProtocolFactory interface {
	Name() string
}

// ProtocolDeviceConfiguration bundles everything the manager needs once
// a specifier has matched: the factory to hand off to, and the
// attribute set(s) keyed by ProtocolAttributesIdentifier (spec.md
// §4.3/§4.4).
type ProtocolDeviceConfiguration struct {
	Factory    ProtocolFactory
	Specifiers []CommunicationSpecifier
	Attributes map[string]message.AttributesMap // keyed by ProtocolAttributesIdentifier.Identifier
}

// Manager resolves discovered hardware into a bound protocol
// configuration, and governs which addresses the server will talk to
// and whether raw messages are exposed (spec.md §4.3).
type Manager struct {
	mu sync.RWMutex

	protocols map[string]*ProtocolDeviceConfiguration

	allowedAddresses map[string]bool
	deniedAddresses  map[string]bool
	reservedIndices  map[DeviceIdentifier]uint32

	skipDefaultProtocols bool
	rawMessagesAllowed   bool
}

// Builder accumulates configuration before Manager is built, mirroring
// original_source's ServerDeviceManagerBuilder (spec.md §4.3).
type Builder struct {
	m *Manager
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{m: &Manager{
		protocols:        map[string]*ProtocolDeviceConfiguration{},
		allowedAddresses: map[string]bool{},
		deniedAddresses:  map[string]bool{},
		reservedIndices:  map[DeviceIdentifier]uint32{},
	}}
}

// ProtocolFactory registers a protocol's factory and its matching
// specifiers/attributes.
func (b *Builder) ProtocolFactory(cfg ProtocolDeviceConfiguration) *Builder {
	b.m.protocols[cfg.Factory.Name()] = &cfg
	return b
}

// AllowedAddress adds an address to the allow-list. A non-empty
// allow-list takes priority over the deny-list (spec.md §4.3
// "address_allowed").
func (b *Builder) AllowedAddress(address string) *Builder {
	b.m.allowedAddresses[address] = true
	return b
}

// DeniedAddress adds an address to the deny-list.
func (b *Builder) DeniedAddress(address string) *Builder {
	b.m.deniedAddresses[address] = true
	return b
}

// ReservedIndex binds a device identifier to a fixed device index, so a
// device that disconnects and reconnects is reassigned the same index
// (spec.md §4.5).
func (b *Builder) ReservedIndex(id DeviceIdentifier, index uint32) *Builder {
	b.m.reservedIndices[id] = index
	return b
}

// SkipDefaultProtocols records the skip-default-protocols flag. The
// Manager holds no built-in protocol set, so only factories registered
// via ProtocolFactory are matched whether or not it is called.
func (b *Builder) SkipDefaultProtocols() *Builder {
	b.m.skipDefaultProtocols = true
	return b
}

// AllowRawMessages opens the raw-message gate (spec.md §4.6).
func (b *Builder) AllowRawMessages() *Builder {
	b.m.rawMessagesAllowed = true
	return b
}

// Finish returns the built, immutable-from-here Manager.
func (b *Builder) Finish() *Manager {
	return b.m
}

// AddressAllowed reports whether the manager should attempt to connect
// to address, per spec.md §4.3.
func (m *Manager) AddressAllowed(address string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.allowedAddresses) > 0 {
		return m.allowedAddresses[address]
	}
	return !m.deniedAddresses[address]
}

// ReservedIndexFor returns the index previously bound to id, if any.
func (m *Manager) ReservedIndexFor(id DeviceIdentifier) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.reservedIndices[id]
	return idx, ok
}

// RawMessagesAllowed reports whether the raw-message gate is open.
func (m *Manager) RawMessagesAllowed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rawMessagesAllowed
}

// MatchBLE finds the protocol configuration whose BLE specifier matches
// the advertisement, or ("", nil, false) if none do.
func (m *Manager) MatchBLE(advertisedName string, serviceUUIDs []string) (string, *ProtocolDeviceConfiguration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, cfg := range m.protocols {
		for _, spec := range cfg.Specifiers {
			if spec.BLE != nil && spec.BLE.Matches(advertisedName, serviceUUIDs) {
				return name, cfg, true
			}
		}
	}
	return "", nil, false
}

// MatchSerial finds the protocol configuration whose Serial specifier
// matches the port name.
func (m *Manager) MatchSerial(portName string) (string, *ProtocolDeviceConfiguration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, cfg := range m.protocols {
		for _, spec := range cfg.Specifiers {
			if spec.Serial != nil && spec.Serial.Matches(portName) {
				return name, cfg, true
			}
		}
	}
	return "", nil, false
}

// MatchWebsocket finds the protocol configuration whose Websocket
// specifier matches the announced bridge name.
func (m *Manager) MatchWebsocket(announcedName string) (string, *ProtocolDeviceConfiguration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, cfg := range m.protocols {
		for _, spec := range cfg.Specifiers {
			if spec.Websocket != nil && spec.Websocket.Matches(announcedName) {
				return name, cfg, true
			}
		}
	}
	return "", nil, false
}

// MatchUSB finds the protocol configuration whose USB specifier matches
// (vendorID, productID). No shipped transport drives this path (spec.md
// §9 / SPEC_FULL.md §12 "No HID transport ships"); it exists so the contract is
// complete if one is registered later.
func (m *Manager) MatchUSB(vendorID, productID uint16) (string, *ProtocolDeviceConfiguration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, cfg := range m.protocols {
		for _, spec := range cfg.Specifiers {
			if spec.USB != nil && spec.USB.Matches(vendorID, productID) {
				return name, cfg, true
			}
		}
	}
	return "", nil, false
}

// AttributesFor returns the attribute map for protocolName's given
// attribute identifier, augmented with raw messages on every advertised
// endpoint when the raw-message gate is open (spec.md §4.3
// "raw_messages_allowed").
func (m *Manager) AttributesFor(protocolName string, attrID ProtocolAttributesIdentifier, endpoints []hardware.Endpoint) (message.AttributesMap, error) {
	m.mu.RLock()
	cfg, ok := m.protocols[protocolName]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("deviceconfig: unknown protocol %q", protocolName)
	}
	base, ok := cfg.Attributes[attrID.Identifier]
	if !ok {
		return nil, fmt.Errorf("deviceconfig: protocol %q has no attributes for identifier %q", protocolName, attrID.Identifier)
	}

	out := message.NewAttributesMap()
	for pair := base.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}

	if m.RawMessagesAllowed() {
		names := make([]string, len(endpoints))
		for i, e := range endpoints {
			names[i] = e.String()
		}
		attrs := message.Attributes{Endpoints: names}
		out.Set("RawReadCmd", attrs)
		out.Set("RawWriteCmd", attrs)
		out.Set("RawSubscribeCmd", attrs)
		out.Set("RawUnsubscribeCmd", attrs)
	}

	return out, nil
}

// DisplayName annotates name with the raw-messages suffix when the gate
// is open (spec.md §4.3).
func (m *Manager) DisplayName(name string) string {
	if m.RawMessagesAllowed() && !strings.HasSuffix(name, " (Raw Messages Allowed)") {
		return name + " (Raw Messages Allowed)"
	}
	return name
}
