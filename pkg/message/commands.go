package message

import "fmt"

// ScalarSubcommand addresses one actuator feature within a ScalarCmd
// (spec.md §3 "GenericDeviceMessageAttributes" successor message).
type ScalarSubcommand struct {
	Index        uint32  `json:"Index"`
	Scalar       float64 `json:"Scalar"`
	ActuatorType string  `json:"ActuatorType"`
}

// ScalarCmd is the v3 unified actuator command: one or more feature
// indices each driven to a [0,1] scalar, interpreted per ActuatorType
// (spec.md §3/§4.3).
type ScalarCmd struct {
	Id          uint32             `json:"Id" validate:"required"`
	DeviceIndex uint32             `json:"DeviceIndex"`
	Scalars     []ScalarSubcommand `json:"Scalars"`
}

func (m *ScalarCmd) GetId() uint32           { return m.Id }
func (m *ScalarCmd) SetId(id uint32)         { m.Id = id }
func (m *ScalarCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *ScalarCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *ScalarCmd) clientOriginated()       {}

// Validate enforces that every Scalars value lies in [0,1]. An empty
// list is a legal no-op (spec.md §4.1).
func (m *ScalarCmd) Validate() error {
	for _, s := range m.Scalars {
		if err := ScalarRange("Scalar", s.Index, s.Scalar); err != nil {
			return err
		}
	}
	return nil
}

// VibrateSubcommand addresses one vibration motor within a VibrateCmd
// (spec.md §9 deprecation notes — kept for v1/v2 clients).
type VibrateSubcommand struct {
	Index uint32  `json:"Index"`
	Speed float64 `json:"Speed"`
}

// VibrateCmd is the v1/v2 vibration-only actuator command, down-converted
// from ScalarCmd for legacy clients (spec.md §4.2).
type VibrateCmd struct {
	Id          uint32              `json:"Id" validate:"required"`
	DeviceIndex uint32              `json:"DeviceIndex"`
	Speeds      []VibrateSubcommand `json:"Speeds"`
}

func (m *VibrateCmd) GetId() uint32           { return m.Id }
func (m *VibrateCmd) SetId(id uint32)         { m.Id = id }
func (m *VibrateCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *VibrateCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *VibrateCmd) clientOriginated()       {}

// Validate enforces that every Speeds value lies in [0,1]. An empty
// list is a legal no-op (spec.md §4.1).
func (m *VibrateCmd) Validate() error {
	for _, s := range m.Speeds {
		if err := ScalarRange("Speed", s.Index, s.Speed); err != nil {
			return err
		}
	}
	return nil
}

// VectorSubcommand addresses one linear actuator within a LinearCmd:
// move to Position over Duration milliseconds.
type VectorSubcommand struct {
	Index    uint32  `json:"Index"`
	Duration uint32  `json:"Duration"`
	Position float64 `json:"Position"`
}

// LinearCmd drives one or more linear actuators (spec.md §3/§4.3).
type LinearCmd struct {
	Id          uint32             `json:"Id" validate:"required"`
	DeviceIndex uint32             `json:"DeviceIndex"`
	Vectors     []VectorSubcommand `json:"Vectors"`
}

func (m *LinearCmd) GetId() uint32           { return m.Id }
func (m *LinearCmd) SetId(id uint32)         { m.Id = id }
func (m *LinearCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *LinearCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *LinearCmd) clientOriginated()       {}

// Validate enforces that every Vectors value lies in [0,1]. An empty
// list is a legal no-op (spec.md §4.1).
func (m *LinearCmd) Validate() error {
	for _, v := range m.Vectors {
		if err := ScalarRange("Position", v.Index, v.Position); err != nil {
			return err
		}
	}
	return nil
}

// RotationSubcommand addresses one rotary actuator within a RotateCmd.
type RotationSubcommand struct {
	Index     uint32  `json:"Index"`
	Speed     float64 `json:"Speed"`
	Clockwise bool    `json:"Clockwise"`
}

// RotateCmd drives one or more rotary actuators (spec.md §3/§4.3).
type RotateCmd struct {
	Id          uint32               `json:"Id" validate:"required"`
	DeviceIndex uint32               `json:"DeviceIndex"`
	Rotations   []RotationSubcommand `json:"Rotations"`
}

func (m *RotateCmd) GetId() uint32           { return m.Id }
func (m *RotateCmd) SetId(id uint32)         { m.Id = id }
func (m *RotateCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *RotateCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *RotateCmd) clientOriginated()       {}

// Validate enforces that every Rotations value lies in [0,1]. An empty
// list is a legal no-op (spec.md §4.1).
func (m *RotateCmd) Validate() error {
	for _, r := range m.Rotations {
		if err := ScalarRange("Speed", r.Index, r.Speed); err != nil {
			return err
		}
	}
	return nil
}

// DuplicateFeatureIndexError reports more than one subcommand targeting
// the same feature index within a single command message (spec.md §4.1).
func DuplicateFeatureIndexError(index uint32) error {
	return NewInvalidMessageContents(fmt.Sprintf("duplicate feature index %d in command", index))
}
