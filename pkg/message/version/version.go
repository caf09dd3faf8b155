// Package version implements the four closed sum-type unions that
// enumerate which message variants are wire-visible at each negotiated
// spec version, and the converters that translate between them
// (spec.md §4.2).
//
// Each union wraps exactly one message.Message value per decoded
// element and round-trips through JSON as Buttplug's single-key-object
// wire form: `{"MessageName": {...fields...}}`, carried inside an
// outer JSON array holding one or more such objects.
package version

import (
	"encoding/json"
	"fmt"

	"github.com/commatea/hapticbridge/pkg/message"
)

// Spec is the negotiated protocol spec version (spec.md §4.2/§6).
type Spec uint32

const (
	Spec0 Spec = 0
	Spec1 Spec = 1
	Spec2 Spec = 2
	Spec3 Spec = 3
)

// Envelope is one decoded wire element: the message name the JSON key
// named, and the concrete message.Message it decoded into.
type Envelope struct {
	Name    string
	Message message.Message
}

// Array is the wire representation of a batch of messages: a JSON array
// of single-key objects. Buttplug always sends arrays even for a single
// message (spec.md §6 "Wire format").
type Array []Envelope

// factory constructs a zero-value pointer to the message named by a
// union's member list, keyed by wire name.
type factory func() message.Message

// union is the shared machinery behind the four spec-version unions:
// a name -> factory table closed over exactly the variants legal at
// that version.
type union struct {
	spec     Spec
	members  map[string]factory
}

func newUnion(spec Spec, members map[string]factory) *union {
	return &union{spec: spec, members: members}
}

// MarshalArray encodes envelopes as Buttplug's array-of-single-key-object
// wire form.
func MarshalArray(envelopes []Envelope) ([]byte, error) {
	raw := make([]json.RawMessage, len(envelopes))
	for i, e := range envelopes {
		body, err := json.Marshal(e.Message)
		if err != nil {
			return nil, fmt.Errorf("version: marshal %s: %w", e.Name, err)
		}
		obj, err := json.Marshal(map[string]json.RawMessage{e.Name: body})
		if err != nil {
			return nil, fmt.Errorf("version: wrap %s: %w", e.Name, err)
		}
		raw[i] = obj
	}
	return json.Marshal(raw)
}

// unmarshalArray decodes Buttplug's array-of-single-key-object wire form
// against the given union's closed member set. A name outside the
// member set (wrong spec version, or unknown entirely) is a
// MessageError, matching spec.md §4.1's "malformed or unsupported
// message" handling.
func (u *union) unmarshalArray(data []byte) ([]Envelope, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, message.NewInvalidMessageContents(fmt.Sprintf("malformed message array: %v", err))
	}
	out := make([]Envelope, 0, len(raw))
	for _, obj := range raw {
		if len(obj) != 1 {
			return nil, message.NewInvalidMessageContents("each wire message must have exactly one key")
		}
		for name, body := range obj {
			mk, ok := u.members[name]
			if !ok {
				return nil, message.NewInvalidMessageContents(fmt.Sprintf("message %q is not valid at spec version %d", name, u.spec))
			}
			msg := mk()
			if err := json.Unmarshal(body, msg); err != nil {
				return nil, message.NewInvalidMessageContents(fmt.Sprintf("malformed %s: %v", name, err))
			}
			out = append(out, Envelope{Name: name, Message: msg})
		}
	}
	return out, nil
}

// NameOf returns the wire message name for a concrete message.Message
// value, used when re-encoding an internally constructed message.
func NameOf(m message.Message) string {
	if name, ok := wireNames[fmt.Sprintf("%T", m)]; ok {
		return name
	}
	return fmt.Sprintf("%T", m)
}

var wireNames = buildWireNames()

func buildWireNames() map[string]string {
	names := map[string]string{}
	for _, u := range []*union{spec0, spec1, spec2, spec3} {
		for name, mk := range u.members {
			names[fmt.Sprintf("%T", mk())] = name
		}
	}
	return names
}

// UnmarshalArray decodes a wire message batch against the union for the
// given negotiated spec version.
func UnmarshalArray(spec Spec, data []byte) ([]Envelope, error) {
	u, ok := unionFor(spec)
	if !ok {
		return nil, fmt.Errorf("version: unsupported spec version %d", spec)
	}
	return u.unmarshalArray(data)
}

func unionFor(spec Spec) (*union, bool) {
	switch spec {
	case Spec0:
		return spec0, true
	case Spec1:
		return spec1, true
	case Spec2:
		return spec2, true
	case Spec3:
		return spec3, true
	default:
		return nil, false
	}
}
