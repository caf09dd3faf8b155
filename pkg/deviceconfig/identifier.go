// Package deviceconfig resolves a discovered hardware advertisement into
// a bound protocol and its declared message attributes: the allow/deny
// address lists, reserved index bindings, and raw-message gate that
// govern which devices the server will talk to and how they appear on
// the wire (spec.md §4.3).
package deviceconfig

import "fmt"

// ProtocolAttributesIdentifier names one "flavor" of a protocol's
// attribute set: most protocols declare a single "default" flavor, but a
// protocol family that covers several physical models (e.g. distinct
// Lovense firmware generations) keys additional flavors by a
// protocol-specific string such as a reported model name (spec.md §4.4
// "Identifier").
type ProtocolAttributesIdentifier struct {
	ProtocolName string
	Identifier   string
}

// Default returns the identifier for a protocol's baseline attribute
// set, used when a protocol has no per-model variation.
func Default(protocolName string) ProtocolAttributesIdentifier {
	return ProtocolAttributesIdentifier{ProtocolName: protocolName, Identifier: "default"}
}

func (p ProtocolAttributesIdentifier) String() string {
	return fmt.Sprintf("%s/%s", p.ProtocolName, p.Identifier)
}

// DeviceIdentifier names one physical device binding for the reserved
// index table: the protocol it was matched to plus its bus address
// (spec.md §4.3 "reserved_index").
type DeviceIdentifier struct {
	ProtocolName string
	Address      string
}

func (d DeviceIdentifier) String() string {
	return fmt.Sprintf("%s@%s", d.ProtocolName, d.Address)
}
