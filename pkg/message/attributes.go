package message

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attributes describes the metadata the server exposes for one supported
// message variant on one device (spec.md §3 "ProtocolDeviceAttributes").
type Attributes struct {
	// FeatureCount is the number of addressable subcommand slots (actuators
	// or sensors) this message variant exposes on the device.
	FeatureCount uint32 `json:"FeatureCount,omitempty"`

	// StepCount is the per-feature resolution (number of discrete steps
	// between 0 and 1), parallel to FeatureCount.
	StepCount []uint32 `json:"StepCount,omitempty"`

	// ActuatorType is the per-feature actuator kind ("Vibrate", "Rotate",
	// "Oscillate", "Constrict", "Inflate", "Position"), parallel to
	// FeatureCount. Populated for ScalarCmd/VibrateCmd attributes.
	ActuatorType []string `json:"ActuatorType,omitempty"`

	// SensorType is the per-feature sensor kind ("Battery", "RSSI",
	// "Button", "Pressure"), parallel to FeatureCount. Populated for
	// SensorRead/SensorSubscribe attributes.
	SensorType []string `json:"SensorType,omitempty"`

	// Endpoints lists the raw endpoints this message may address.
	// Populated for Raw* attributes.
	Endpoints []string `json:"Endpoints,omitempty"`
}

// AttributesMap is the declaration-ordered set of message-name ->
// Attributes a device advertises. Ordinary Go maps randomize iteration
// order; an OrderedMap keeps two servers with identical configuration
// producing byte-identical DeviceAdded/DeviceList JSON (spec.md §12
// domain-stack note on github.com/wk8/go-ordered-map/v2).
type AttributesMap = *orderedmap.OrderedMap[string, Attributes]

// NewAttributesMap returns an empty, ready-to-use AttributesMap.
func NewAttributesMap() AttributesMap {
	return orderedmap.New[string, Attributes]()
}

// DeviceMessageInfo is one entry of a DeviceList response (spec.md §3).
type DeviceMessageInfo struct {
	DeviceIndex    uint32         `json:"DeviceIndex"`
	DeviceName     string         `json:"DeviceName"`
	DeviceMessages AttributesMap  `json:"DeviceMessages"`
}
