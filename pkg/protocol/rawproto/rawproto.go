// Package rawproto is a pass-through protocol, bound like any other
// protocol to devices whose configured specifiers name it, for use with
// the raw-message gate (spec.md §4.6 "Raw-Message Gate"). Its Handler
// only answers StopDeviceCmd with a no-op Ok and refuses every other
// command with DeviceNotSupportedMessageType, whatever attributes the
// device's configuration lists. Raw read/write/subscribe themselves are served
// directly by the server's raw-message path against hardware.Hardware,
// bypassing Handler entirely — this package exists only to satisfy the
// protocol.Factory contract every matched device needs.
package rawproto

import (
	"context"
	"fmt"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol"
)

const ProtocolName = "raw"

type factory struct{}

// NewFactory returns the raw-passthrough protocol.Factory.
func NewFactory() protocol.Factory { return factory{} }

func (factory) Name() string                      { return ProtocolName }
func (factory) NewIdentifier() protocol.Identifier { return identifier{} }
func (factory) NewInitializer() protocol.Initializer { return Initializer{} }

type identifier struct{}

func (identifier) Identify(ctx context.Context, hw hardware.Hardware) (deviceconfig.ProtocolAttributesIdentifier, error) {
	return deviceconfig.Default(ProtocolName), nil
}

type Initializer struct{}

func (Initializer) Initialize(ctx context.Context, hw hardware.Hardware, attrs message.AttributesMap) (protocol.Handler, error) {
	return handler{}, nil
}

type handler struct{}

func (handler) HandleCommand(ctx context.Context, hw hardware.Hardware, cmd message.DeviceMessage) (message.Message, error) {
	switch cmd.(type) {
	case *message.StopDeviceCmd:
		return &message.Ok{Id: cmd.GetId()}, nil
	default:
		return nil, message.DeviceNotSupportedMessageType(cmd.GetDeviceIndex(), fmt.Sprintf("%T", cmd))
	}
}
