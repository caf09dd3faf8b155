// Package protocol defines the three-stage polymorphic contract vendor
// protocols implement — Identifier, Initializer, Handler — and the
// registry that looks a protocol up by name (spec.md §4.4).
package protocol

import (
	"context"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
)

// Identifier inspects a freshly connected, not-yet-identified piece of
// hardware and resolves which attribute flavor it is: Lovense queries
// its device-type byte, Kiiroo reads a model string, a protocol with a
// single flavor just returns Default (spec.md §4.4 "Identifier").
type Identifier interface {
	Identify(ctx context.Context, hw hardware.Hardware) (deviceconfig.ProtocolAttributesIdentifier, error)
}

// Initializer performs mode-setting writes, notification subscriptions,
// and any key-exchange handshake against resolved hardware, producing
// the steady-state Handler (spec.md §4.4 "Initializer").
type Initializer interface {
	Initialize(ctx context.Context, hw hardware.Hardware, attrs message.AttributesMap) (Handler, error)
}

// Handler is the steady-state per-device command translator. It holds
// no protocol-global state; any per-device state (the last-sent cache)
// lives in the Handler instance the Initializer produced for that one
// device (spec.md §4.4 "Handler").
type Handler interface {
	// HandleCommand translates a single device command into zero or more
	// hardware writes/reads and reports Ok{id} on success. Implementations
	// must return *message.DeviceError for out-of-range feature indices
	// and unsupported message variants.
	HandleCommand(ctx context.Context, hw hardware.Hardware, cmd message.DeviceMessage) (message.Message, error)
}

// Factory names a protocol and builds its Identifier/Initializer pair.
// deviceconfig.ProtocolFactory is the narrow read-only view of this same
// value the configuration manager needs; Factory is the full contract
// the registry and server package use to actually drive a device.
type Factory interface {
	Name() string
	NewIdentifier() Identifier
	NewInitializer() Initializer
}

// Registry looks a protocol's Factory up by name, the final step once
// deviceconfig.Manager has matched a specifier (spec.md §4.3/§4.4).
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds f under its own name, overwriting any prior registration
// for that name.
func (r *Registry) Register(f Factory) {
	r.factories[f.Name()] = f
}

// Lookup returns the Factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns every registered protocol name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}
