// Package message defines the closed set of protocol message variants
// (spec.md §3) and their per-variant validation rules (spec.md §4.1).
// Every message carries a 32-bit Id; device commands additionally carry
// a DeviceIndex. Id 0 is reserved for server-initiated notifications and
// is never valid on a client-originated message.
package message

import "fmt"

// Message is implemented by every protocol message variant.
type Message interface {
	GetId() uint32
	SetId(id uint32)
}

// DeviceMessage is implemented by every message variant that targets a
// specific device (spec.md §3).
type DeviceMessage interface {
	Message
	GetDeviceIndex() uint32
	SetDeviceIndex(index uint32)
}

// ClientOriginated is implemented by variants that may legally arrive
// from a client. It is a marker only: Session.Dispatch runs the id and
// Validate checks on variants that carry it, and pkg/message/version
// decoding does not consult it (spec.md §3's ButtplugSystemMessageUnion
// equivalent).
type ClientOriginated interface {
	Message
	clientOriginated()
}

// Validatable is implemented by variants with message-layer validation
// rules beyond "is valid JSON" (spec.md §4.1).
type Validatable interface {
	Validate() error
}

// RequireNonZeroID returns a *MessageError if id is 0.
// Every client-originated message must fail this check (spec.md §4.1).
func RequireNonZeroID(id uint32) error {
	if id == 0 {
		return NewInvalidMessageContents("message id must be non-zero for client-originated messages")
	}
	return nil
}

// ScalarRange validates that v is within the closed unit interval used by
// every scalar/speed/position field (spec.md §3/§4.1).
func ScalarRange(fieldName string, index uint32, v float64) error {
	if v < 0.0 || v > 1.0 {
		return NewInvalidMessageContents(fmt.Sprintf("%s at index %d out of range [0,1]: %v", fieldName, index, v))
	}
	return nil
}
