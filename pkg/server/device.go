// Package server implements the device-facing half of the bridge: one
// ServerDevice per connected, identified, attribute-resolved piece of
// hardware, and the Manager that owns the live device map, the
// discovery event loop, and the ping watchdog (spec.md §4.5).
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/message/version"
	"github.com/commatea/hapticbridge/pkg/metrics"
	"github.com/commatea/hapticbridge/pkg/protocol"
)

// ServerDevice is one registered, routable device: hardware plus the
// protocol handler bound to it at Ready time, plus the attribute set the
// client sees for it (spec.md §4.5 discovery states "Registered").
type ServerDevice struct {
	Index        uint32
	Name         string
	ProtocolName string
	Attributes   message.AttributesMap

	hw      hardware.Hardware
	handler protocol.Handler

	sensorFeeds map[sensorKey]chan struct{}
	rawFeeds    map[hardware.Endpoint]chan struct{}
}

type sensorKey struct {
	index uint32
	kind  string
}

// NewServerDevice builds a ServerDevice ready to be registered into a
// Manager's device map.
func NewServerDevice(index uint32, name, protocolName string, attrs message.AttributesMap, hw hardware.Hardware, handler protocol.Handler) *ServerDevice {
	return &ServerDevice{
		Index:        index,
		Name:         name,
		ProtocolName: protocolName,
		Attributes:   attrs,
		hw:           hw,
		handler:      handler,
		sensorFeeds:  map[sensorKey]chan struct{}{},
		rawFeeds:     map[hardware.Endpoint]chan struct{}{},
	}
}

// supports reports whether this device's attribute set advertises
// messageName at all (spec.md §4.4 "DeviceNotSupportedMessageType").
func (d *ServerDevice) supports(messageName string) bool {
	_, ok := d.Attributes.Get(messageName)
	return ok
}

// Info renders this device's DeviceMessageInfo entry for DeviceList /
// DeviceAdded, narrowed to what is legal at the client's negotiated spec
// version (spec.md §4.2/§4.5).
func (d *ServerDevice) Info(target version.Spec) message.DeviceMessageInfo {
	return message.DeviceMessageInfo{
		DeviceIndex:    d.Index,
		DeviceName:     d.Name,
		DeviceMessages: version.DowngradeAttributes(d.Attributes, target),
	}
}

// vibrateFeatureCount counts how many ScalarCmd features this device
// declares as Vibrate actuators, for fanning a SingleMotorVibrateCmd's
// single speed value out across all of them (spec.md §4.2).
func (d *ServerDevice) vibrateFeatureCount() uint32 {
	attrs, ok := d.Attributes.Get("ScalarCmd")
	if !ok {
		return 0
	}
	if len(attrs.ActuatorType) == 0 {
		return attrs.FeatureCount
	}
	var n uint32
	for _, t := range attrs.ActuatorType {
		if t == "Vibrate" {
			n++
		}
	}
	return n
}

// ParseMessage routes a single device command: raw messages are served
// directly against hardware when the raw gate granted them, sensor
// messages resolve an endpoint and read or subscribe, and everything
// else is handed to the bound protocol Handler (spec.md §4.4/§4.6).
func (d *ServerDevice) ParseMessage(ctx context.Context, cmd message.DeviceMessage) (message.Message, error) {
	name := fmt.Sprintf("%T", cmd)
	result, err := d.dispatch(ctx, cmd)
	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
	}
	metrics.CommandsRouted.WithLabelValues(name, status).Inc()
	return result, err
}

func (d *ServerDevice) dispatch(ctx context.Context, cmd message.DeviceMessage) (message.Message, error) {
	switch c := cmd.(type) {
	case *message.RawReadCmd:
		return d.rawRead(ctx, c)
	case *message.RawWriteCmd:
		return d.rawWrite(ctx, c)
	case *message.RawSubscribeCmd:
		return d.rawSubscribe(ctx, c)
	case *message.RawUnsubscribeCmd:
		return d.rawUnsubscribe(ctx, c)
	case *message.SensorReadCmd:
		return d.sensorRead(ctx, c)
	case *message.SensorSubscribeCmd:
		return d.sensorSubscribe(ctx, c)
	case *message.SensorUnsubscribeCmd:
		return d.sensorUnsubscribe(ctx, c)
	case *message.VibrateCmd:
		return d.handler.HandleCommand(ctx, d.hw, version.UpConvertVibrateCmd(c))
	case *message.SingleMotorVibrateCmd:
		return d.handler.HandleCommand(ctx, d.hw, version.UpConvertSingleMotorVibrateCmd(c, d.vibrateFeatureCount()))
	case *message.FleshlightLaunchFW12Cmd:
		return d.handler.HandleCommand(ctx, d.hw, version.UpConvertFleshlightLaunchFW12Cmd(c))
	default:
		return d.handler.HandleCommand(ctx, d.hw, cmd)
	}
}

func (d *ServerDevice) rawRead(ctx context.Context, c *message.RawReadCmd) (message.Message, error) {
	if !d.supports("RawReadCmd") {
		return nil, message.DeviceNotSupportedMessageType(d.Index, "RawReadCmd")
	}
	ep, ok := hardware.ParseEndpoint(c.Endpoint)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unknown endpoint %q", c.Endpoint))
	}
	timeout := time.Duration(c.Timeout) * time.Millisecond
	if timeout == 0 {
		timeout = 500 * time.Millisecond
	}
	data, err := d.hw.ReadValue(ctx, ep, c.ExpectedLength, timeout)
	if err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("raw read failed: %v", err))
	}
	return &message.RawReading{Id: c.Id, DeviceIndex: d.Index, Endpoint: c.Endpoint, Data: data}, nil
}

func (d *ServerDevice) rawWrite(ctx context.Context, c *message.RawWriteCmd) (message.Message, error) {
	if !d.supports("RawWriteCmd") {
		return nil, message.DeviceNotSupportedMessageType(d.Index, "RawWriteCmd")
	}
	ep, ok := hardware.ParseEndpoint(c.Endpoint)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unknown endpoint %q", c.Endpoint))
	}
	if err := d.hw.WriteValue(ctx, ep, c.Data, c.WriteWithResponse); err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("raw write failed: %v", err))
	}
	return &message.Ok{Id: c.Id}, nil
}

func (d *ServerDevice) rawSubscribe(ctx context.Context, c *message.RawSubscribeCmd) (message.Message, error) {
	if !d.supports("RawSubscribeCmd") {
		return nil, message.DeviceNotSupportedMessageType(d.Index, "RawSubscribeCmd")
	}
	ep, ok := hardware.ParseEndpoint(c.Endpoint)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unknown endpoint %q", c.Endpoint))
	}
	if _, already := d.rawFeeds[ep]; already {
		return nil, message.ProtocolSpecificError(d.Index, "endpoint already subscribed")
	}
	if err := d.hw.SubscribeToNotifications(ctx, ep); err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("raw subscribe failed: %v", err))
	}
	d.rawFeeds[ep] = make(chan struct{})
	return &message.Ok{Id: c.Id}, nil
}

func (d *ServerDevice) rawUnsubscribe(ctx context.Context, c *message.RawUnsubscribeCmd) (message.Message, error) {
	ep, ok := hardware.ParseEndpoint(c.Endpoint)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unknown endpoint %q", c.Endpoint))
	}
	if _, subscribed := d.rawFeeds[ep]; !subscribed {
		return nil, message.ProtocolSpecificError(d.Index, "endpoint not subscribed")
	}
	if err := d.hw.UnsubscribeFromNotifications(ctx, ep); err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("raw unsubscribe failed: %v", err))
	}
	delete(d.rawFeeds, ep)
	return &message.Ok{Id: c.Id}, nil
}

// sensorEndpoint maps a sensor type name to the hardware endpoint it
// reads from. Devices that advertise additional sensor kinds over a
// vendor-specific channel register their own Generic<n> endpoint in
// their attributes; this table only covers the common cases the
// built-in protocols use.
func sensorEndpoint(sensorType string) (hardware.Endpoint, bool) {
	switch sensorType {
	case "Battery":
		return hardware.EndpointRxBLEBattery, true
	case "Pressure":
		return hardware.EndpointRxPressure, true
	case "Button", "Touch":
		return hardware.EndpointRxTouch, true
	default:
		return 0, false
	}
}

func (d *ServerDevice) sensorRead(ctx context.Context, c *message.SensorReadCmd) (message.Message, error) {
	if !d.supports("SensorReadCmd") {
		return nil, message.DeviceNotSupportedMessageType(d.Index, "SensorReadCmd")
	}
	ep, ok := sensorEndpoint(c.SensorType)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unrecognized sensor type %q", c.SensorType))
	}
	raw, err := d.hw.ReadValue(ctx, ep, 0, 500*time.Millisecond)
	if err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("sensor read failed: %v", err))
	}
	data := make([]int32, len(raw))
	for i, b := range raw {
		data[i] = int32(b)
	}
	return &message.SensorReading{Id: c.Id, DeviceIndex: d.Index, SensorIndex: c.SensorIndex, SensorType: c.SensorType, Data: data}, nil
}

func (d *ServerDevice) sensorSubscribe(ctx context.Context, c *message.SensorSubscribeCmd) (message.Message, error) {
	if !d.supports("SensorSubscribeCmd") {
		return nil, message.DeviceNotSupportedMessageType(d.Index, "SensorSubscribeCmd")
	}
	key := sensorKey{index: c.SensorIndex, kind: c.SensorType}
	if _, already := d.sensorFeeds[key]; already {
		return nil, message.ProtocolSpecificError(d.Index, "sensor already subscribed")
	}
	ep, ok := sensorEndpoint(c.SensorType)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unrecognized sensor type %q", c.SensorType))
	}
	if err := d.hw.SubscribeToNotifications(ctx, ep); err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("sensor subscribe failed: %v", err))
	}
	d.sensorFeeds[key] = make(chan struct{})
	return &message.Ok{Id: c.Id}, nil
}

func (d *ServerDevice) sensorUnsubscribe(ctx context.Context, c *message.SensorUnsubscribeCmd) (message.Message, error) {
	key := sensorKey{index: c.SensorIndex, kind: c.SensorType}
	if _, subscribed := d.sensorFeeds[key]; !subscribed {
		return nil, message.ProtocolSpecificError(d.Index, "sensor not subscribed")
	}
	ep, ok := sensorEndpoint(c.SensorType)
	if !ok {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("unrecognized sensor type %q", c.SensorType))
	}
	if err := d.hw.UnsubscribeFromNotifications(ctx, ep); err != nil {
		return nil, message.ProtocolSpecificError(d.Index, fmt.Sprintf("sensor unsubscribe failed: %v", err))
	}
	delete(d.sensorFeeds, key)
	return &message.Ok{Id: c.Id}, nil
}

// StopAllActuators sends StopDeviceCmd's semantics directly to the bound
// Handler, used by both the client-visible StopDeviceCmd and the
// manager's StopAllDevices fan-out (spec.md §4.5 "stop_all_devices").
func (d *ServerDevice) StopAllActuators(ctx context.Context, id uint32) (message.Message, error) {
	return d.handler.HandleCommand(ctx, d.hw, message.NewStopDeviceCmd(id, d.Index))
}

// Disconnect tears down the underlying hardware connection.
func (d *ServerDevice) Disconnect(ctx context.Context) error {
	return d.hw.Disconnect(ctx)
}
