// Package vorze implements the Vorze A10 Cyclone protocol. A Vorze
// device only ever matches one attribute flavor, so Identify always
// returns the default identifier (spec.md §4.4 notes this as the common
// case: "most protocols declare a single default flavor").
package vorze

import (
	"context"
	"fmt"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol"
	"github.com/commatea/hapticbridge/pkg/protocol/generic"
)

const ProtocolName = "vorze"

type factory struct{}

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
	featureCount := uint32(0)
	if pair, ok := attrs.Get("RotateCmd"); ok {
		featureCount = pair.FeatureCount
	}
	return &handler{cache: generic.NewLastSentCache(), featureCount: featureCount}, nil
}

// handler writes the Cyclone's 2-byte [speed, direction] command frame
// over the Tx characteristic.
type handler struct {
	cache        *generic.LastSentCache
	featureCount uint32
}

func (h *handler) HandleCommand(ctx context.Context, hw hardware.Hardware, cmd message.DeviceMessage) (message.Message, error) {
	switch c := cmd.(type) {
	case *message.RotateCmd:
		for _, r := range c.Rotations {
			if r.Index >= h.featureCount {
				return nil, message.DeviceFeatureIndexError(c.DeviceIndex, r.Index, h.featureCount)
			}
			signed := r.Speed
			if !r.Clockwise {
				signed = -signed
			}
			if !h.cache.Apply(r.Index, "Rotate", signed) {
				continue
			}
			if err := hw.WriteValue(ctx, hardware.EndpointTx, cycloneFrame(signed), true); err != nil {
				return nil, message.ProtocolSpecificError(cmd.GetDeviceIndex(), fmt.Sprintf("vorze: write failed: %v", err))
			}
		}
		return &message.Ok{Id: cmd.GetId()}, nil
	case *message.VorzeA10CycloneCmd:
		rotateCmd := &message.RotateCmd{
			Id:          c.Id,
			DeviceIndex: c.DeviceIndex,
			Rotations: []message.RotationSubcommand{
				{Index: 0, Speed: float64(c.Speed) / 99.0, Clockwise: c.Clockwise},
			},
		}
		return h.HandleCommand(ctx, hw, rotateCmd)
	case *message.StopDeviceCmd:
		h.cache.Reset()
		if err := hw.WriteValue(ctx, hardware.EndpointTx, cycloneFrame(0), true); err != nil {
			return nil, message.ProtocolSpecificError(cmd.GetDeviceIndex(), fmt.Sprintf("vorze: stop write failed: %v", err))
		}
		return &message.Ok{Id: cmd.GetId()}, nil
	default:
		return nil, message.DeviceNotSupportedMessageType(cmd.GetDeviceIndex(), fmt.Sprintf("%T", cmd))
	}
}

// cycloneFrame packs a signed [-1,1] rotation speed (negative =
// counter-clockwise) into Vorze's [speed(0-99), direction(0/1)] frame.
func cycloneFrame(signed float64) []byte {
	direction := byte(0)
	if signed < 0 {
		direction = 1
		signed = -signed
	}
	speed := byte(signed * 99)
	return []byte{speed, direction}
}
