package deviceconfig

import "strings"

// BLESpecifier matches a BLE advertisement by name set/prefix and
// required service UUIDs (spec.md §6 "Specifier matching").
type BLESpecifier struct {
	Names           []string
	NamePrefix      string
	ServiceUUIDs    []string
}

// Matches reports whether an advertised name and service UUID set
// satisfy this specifier: the name must be an exact member of Names or
// start with NamePrefix (when set), AND every required UUID must be
// present.
func (s BLESpecifier) Matches(advertisedName string, advertisedServiceUUIDs []string) bool {
	if !s.nameMatches(advertisedName) {
		return false
	}
	have := make(map[string]bool, len(advertisedServiceUUIDs))
	for _, u := range advertisedServiceUUIDs {
		have[strings.ToLower(u)] = true
	}
	for _, required := range s.ServiceUUIDs {
		if !have[strings.ToLower(required)] {
			return false
		}
	}
	return true
}

func (s BLESpecifier) nameMatches(name string) bool {
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	if s.NamePrefix != "" && strings.HasPrefix(name, s.NamePrefix) {
		return true
	}
	return false
}

// SerialSpecifier matches a serial port by its reported name prefix
// (spec.md §6).
type SerialSpecifier struct {
	PortPrefix string
}

func (s SerialSpecifier) Matches(portName string) bool {
	return strings.HasPrefix(portName, s.PortPrefix)
}

// USBSpecifier matches a USB/HID device by exact (VID, PID) equality
// (spec.md §6). No HID transport ships in this module (no corpus
// library backs one); the specifier and matching rule exist so a future
// hardware.Factory can be registered against it without touching
// pkg/deviceconfig.
type USBSpecifier struct {
	VendorID  uint16
	ProductID uint16
}

func (s USBSpecifier) Matches(vendorID, productID uint16) bool {
	return s.VendorID == vendorID && s.ProductID == productID
}

// WebsocketSpecifier matches a websocket device bridge (e.g. a
// Lovense-Connect-style local companion app) by the name it announces
// over its own handshake, mirroring BLESpecifier's name-set/prefix rule
// since the wire-level advertisement shape is bridge-defined rather than
// BLE/Serial/USB-standardized.
type WebsocketSpecifier struct {
	Names      []string
	NamePrefix string
}

func (s WebsocketSpecifier) Matches(announcedName string) bool {
	for _, n := range s.Names {
		if n == announcedName {
			return true
		}
	}
	return s.NamePrefix != "" && strings.HasPrefix(announcedName, s.NamePrefix)
}

// CommunicationSpecifier is the closed set of transport-matching rules a
// protocol registers (spec.md §4.3 "communication_specifier"). Exactly
// one field is non-nil per value.
type CommunicationSpecifier struct {
	BLE       *BLESpecifier
	Serial    *SerialSpecifier
	USB       *USBSpecifier
	Websocket *WebsocketSpecifier
}
