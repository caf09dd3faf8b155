// Package lovense implements the Lovense vendor protocol: a short
// device-type probe over the Tx/Rx BLE characteristics identifies which
// attribute flavor a connected device is, and the steady-state handler
// speaks Lovense's semicolon-terminated ASCII command line
// ("Vibrate0:10;") rather than generic's byte-scalar wire (spec.md §4.4
// "Identifier" example: "Lovense queries the device-type byte").
package lovense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol"
	"github.com/commatea/hapticbridge/pkg/protocol/generic"
)

const ProtocolName = "lovense"

// modelFlavors maps the single letter a Lovense "DeviceType;" probe
// response leads with to the attribute flavor identifier registered in
// deviceconfig for that model family.
var modelFlavors = map[byte]string{
	'A': "nora",
	'S': "lush",
	'Z': "hush",
	'W': "domi",
	'B': "max",
}

type factory struct{}

// NewFactory returns the lovense protocol.Factory.
func NewFactory() protocol.Factory { return factory{} }

func (factory) Name() string                        { return ProtocolName }
func (factory) NewIdentifier() protocol.Identifier   { return identifier{} }
func (factory) NewInitializer() protocol.Initializer { return Initializer{} }

type identifier struct{}

func (identifier) Identify(ctx context.Context, hw hardware.Hardware) (deviceconfig.ProtocolAttributesIdentifier, error) {
	if err := hw.WriteValue(ctx, hardware.EndpointTx, []byte("DeviceType;"), true); err != nil {
		return deviceconfig.ProtocolAttributesIdentifier{}, message.ProtocolSpecificError(0, fmt.Sprintf("lovense: device type probe write failed: %v", err))
	}
	resp, err := hw.ReadValue(ctx, hardware.EndpointRx, 0, 500*time.Millisecond)
	if err != nil {
		return deviceconfig.ProtocolAttributesIdentifier{}, message.ProtocolSpecificError(0, fmt.Sprintf("lovense: device type probe read failed: %v", err))
	}
	if len(resp) == 0 {
		return deviceconfig.ProtocolAttributesIdentifier{}, message.ProtocolSpecificError(0, "lovense: empty device type response")
	}
	flavor, ok := modelFlavors[resp[0]]
	if !ok {
		return deviceconfig.ProtocolAttributesIdentifier{}, message.ProtocolSpecificError(0, fmt.Sprintf("lovense: unrecognized device type byte %q", resp[0]))
	}
	return deviceconfig.ProtocolAttributesIdentifier{ProtocolName: ProtocolName, Identifier: flavor}, nil
}

// Initializer subscribes to the Rx notification endpoint and hands back
// the steady-state Handler.
type Initializer struct{}

func (Initializer) Initialize(ctx context.Context, hw hardware.Hardware, attrs message.AttributesMap) (protocol.Handler, error) {
	if err := hw.SubscribeToNotifications(ctx, hardware.EndpointRx); err != nil {
		return nil, message.ProtocolSpecificError(0, fmt.Sprintf("lovense: rx subscribe failed: %v", err))
	}
	featureCount := uint32(0)
	if pair, ok := attrs.Get("ScalarCmd"); ok {
		featureCount = pair.FeatureCount
	}
	return &handler{cache: generic.NewLastSentCache(), featureCount: featureCount}, nil
}

// handler speaks Lovense's ASCII command line over Tx. It composes
// generic's last-sent cache so repeated identical vibration levels never
// reach the wire.
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
			level := int(w.Value * 20) // Lovense vibrate levels run 0-20
			line := fmt.Sprintf("Vibrate%d:%d;", w.FeatureIndex, level)
			if err := hw.WriteValue(ctx, hardware.EndpointTx, []byte(line), false); err != nil {
				return nil, message.ProtocolSpecificError(cmd.GetDeviceIndex(), fmt.Sprintf("lovense: write failed: %v", err))
			}
		}
		return &message.Ok{Id: cmd.GetId()}, nil
	case *message.StopDeviceCmd:
		h.cache.Reset()
		if err := hw.WriteValue(ctx, hardware.EndpointTx, []byte("Vibrate:0;"), false); err != nil {
			return nil, message.ProtocolSpecificError(cmd.GetDeviceIndex(), fmt.Sprintf("lovense: stop write failed: %v", err))
		}
		return &message.Ok{Id: cmd.GetId()}, nil
	default:
		return nil, message.DeviceNotSupportedMessageType(cmd.GetDeviceIndex(), messageTypeName(cmd))
	}
}

func messageTypeName(m message.DeviceMessage) string {
	full := fmt.Sprintf("%T", m)
	if idx := strings.LastIndexByte(full, '.'); idx >= 0 {
		return full[idx+1:]
	}
	return full
}
