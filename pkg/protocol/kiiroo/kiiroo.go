// Package kiiroo implements the Kiiroo vendor protocol. Identify reads a
// model string over the Firmware characteristic (spec.md §4.4
// "Kiiroo reads a model string"); the legacy KiirooCmd's numeric command
// string is up-converted here rather than in the shared version
// converter, since the mapping is specific to which Kiiroo model
// answered the identify probe (pkg/message/deprecated.go).
package kiiroo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol"
	"github.com/commatea/hapticbridge/pkg/protocol/generic"
)

const ProtocolName = "kiiroo"

// legacyCommandScalar maps a KiirooCmd's documented single-digit Command
// string to a [0,1] scalar, the mapping the original firmware command
// set used for its handful of discrete intensity levels.
var legacyCommandScalar = map[string]float64{
	"0": 0.0,
	"1": 0.2,
	"2": 0.4,
	"3": 0.6,
	"4": 0.8,
}

type factory struct{}

func NewFactory() protocol.Factory { return factory{} }

func (factory) Name() string                      { return ProtocolName }
func (factory) NewIdentifier() protocol.Identifier { return identifier{} }
func (factory) NewInitializer() protocol.Initializer { return Initializer{} }

type identifier struct{}

func (identifier) Identify(ctx context.Context, hw hardware.Hardware) (deviceconfig.ProtocolAttributesIdentifier, error) {
	resp, err := hw.ReadValue(ctx, hardware.EndpointFirmware, 0, 500*time.Millisecond)
	if err != nil {
		return deviceconfig.ProtocolAttributesIdentifier{}, message.ProtocolSpecificError(0, fmt.Sprintf("kiiroo: model probe read failed: %v", err))
	}
	model := strings.TrimSpace(string(resp))
	if model == "" {
		return deviceconfig.ProtocolAttributesIdentifier{}, message.ProtocolSpecificError(0, "kiiroo: empty model response")
	}
	return deviceconfig.ProtocolAttributesIdentifier{ProtocolName: ProtocolName, Identifier: model}, nil
}

type Initializer struct{}

func (Initializer) Initialize(ctx context.Context, hw hardware.Hardware, attrs message.AttributesMap) (protocol.Handler, error) {
	featureCount := uint32(0)
	if pair, ok := attrs.Get("ScalarCmd"); ok {
		featureCount = pair.FeatureCount
	}
	return &handler{cache: generic.NewLastSentCache(), featureCount: featureCount}, nil
}

type handler struct {
	cache        *generic.LastSentCache
	featureCount uint32
}

func (h *handler) HandleCommand(ctx context.Context, hw hardware.Hardware, cmd message.DeviceMessage) (message.Message, error) {
	switch c := cmd.(type) {
	case *message.ScalarCmd:
		writes, err := generic.TranslateScalarCmd(h.cache, h.featureCount, ProtocolName, c)
		if err != nil {
			return nil, err
		}
		for _, w := range writes {
			if err := hw.WriteValue(ctx, hardware.EndpointCommand, encodeLevel(w.Value), true); err != nil {
				return nil, message.ProtocolSpecificError(cmd.GetDeviceIndex(), fmt.Sprintf("kiiroo: write failed: %v", err))
			}
		}
		return &message.Ok{Id: cmd.GetId()}, nil
	case *message.KiirooCmd:
		scalar, ok := legacyCommandScalar[c.Command]
		if !ok {
			return nil, message.ProtocolSpecificError(c.DeviceIndex, fmt.Sprintf("kiiroo: unrecognized legacy command %q", c.Command))
		}
		scalarCmd := &message.ScalarCmd{
			Id:          c.Id,
			DeviceIndex: c.DeviceIndex,
			Scalars:     []message.ScalarSubcommand{{Index: 0, Scalar: scalar, ActuatorType: "Vibrate"}},
		}
		return h.HandleCommand(ctx, hw, scalarCmd)
	case *message.StopDeviceCmd:
		h.cache.Reset()
		if err := hw.WriteValue(ctx, hardware.EndpointCommand, encodeLevel(0), true); err != nil {
			return nil, message.ProtocolSpecificError(cmd.GetDeviceIndex(), fmt.Sprintf("kiiroo: stop write failed: %v", err))
		}
		return &message.Ok{Id: cmd.GetId()}, nil
	default:
		return nil, message.DeviceNotSupportedMessageType(cmd.GetDeviceIndex(), fmt.Sprintf("%T", cmd))
	}
}

func encodeLevel(scalar float64) []byte {
	level := int(scalar * 99)
	return []byte(strconv.Itoa(level))
}
