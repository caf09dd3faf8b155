package message

// This file holds the pre-v3 device command variants. They are never
// produced internally; they arrive from clients that negotiated an older
// MessageVersion and are up-converted into ScalarCmd/LinearCmd/RotateCmd,
// either by pkg/message/version or, for KiirooCmd, by the vendor handler
// (spec.md §4.2).

// SingleMotorVibrateCmd is the v0 single-speed vibration command,
// up-converted to a ScalarCmd with one Vibrate subcommand per vibrate
// feature of the device (spec.md §4.2).
type SingleMotorVibrateCmd struct {
	Id          uint32  `json:"Id" validate:"required"`
	DeviceIndex uint32  `json:"DeviceIndex"`
	Speed       float64 `json:"Speed"`
}

func (m *SingleMotorVibrateCmd) GetId() uint32           { return m.Id }
func (m *SingleMotorVibrateCmd) SetId(id uint32)         { m.Id = id }
func (m *SingleMotorVibrateCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *SingleMotorVibrateCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *SingleMotorVibrateCmd) clientOriginated()       {}

func (m *SingleMotorVibrateCmd) Validate() error {
	return ScalarRange("Speed", 0, m.Speed)
}

// FleshlightLaunchFW12Cmd is a vendor-specific v0 linear command,
// up-converted to a one-subcommand LinearCmd with Position scaled from
// [0,99] to [0,1] and a Duration derived from Speed, shorter for higher
// speeds (spec.md §4.2).
type FleshlightLaunchFW12Cmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Position    uint32 `json:"Position"`
	Speed       uint32 `json:"Speed"`
}

func (m *FleshlightLaunchFW12Cmd) GetId() uint32           { return m.Id }
func (m *FleshlightLaunchFW12Cmd) SetId(id uint32)         { m.Id = id }
func (m *FleshlightLaunchFW12Cmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *FleshlightLaunchFW12Cmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *FleshlightLaunchFW12Cmd) clientOriginated()       {}

func (m *FleshlightLaunchFW12Cmd) Validate() error {
	if m.Position > 99 {
		return NewInvalidMessageContents("FleshlightLaunchFW12Cmd Position must be in [0,99]")
	}
	if m.Speed > 99 {
		return NewInvalidMessageContents("FleshlightLaunchFW12Cmd Speed must be in [0,99]")
	}
	return nil
}

// KiirooCmd is a vendor-specific v0 command carrying an opaque numeric
// string Command, up-converted to ScalarCmd by the kiiroo protocol
// handler's own lookup table rather than the generic converter (spec.md
// §9, "the down-conversion tables live with their vendor protocol").
type KiirooCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Command     string `json:"Command"`
}

func (m *KiirooCmd) GetId() uint32           { return m.Id }
func (m *KiirooCmd) SetId(id uint32)         { m.Id = id }
func (m *KiirooCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *KiirooCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *KiirooCmd) clientOriginated()       {}

// LovenseCmd carries a raw Lovense vendor command string. No converter
// ever produces or consumes it: original_source's own message union
// comment notes the variant was declared but never implemented by any
// protocol, and the gap is carried forward rather than invented (spec.md
// §9 Open Question, resolved in DESIGN.md). Routing it always yields
// DeviceNotSupportedMessageType.
type LovenseCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Command     string `json:"Command"`
}

func (m *LovenseCmd) GetId() uint32           { return m.Id }
func (m *LovenseCmd) SetId(id uint32)         { m.Id = id }
func (m *LovenseCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *LovenseCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *LovenseCmd) clientOriginated()       {}

// VorzeA10CycloneCmd is a vendor-specific v0 rotation command,
// up-converted to a one-subcommand RotateCmd (spec.md §4.2).
type VorzeA10CycloneCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Speed       uint32 `json:"Speed"`
	Clockwise   bool   `json:"Clockwise"`
}

func (m *VorzeA10CycloneCmd) GetId() uint32           { return m.Id }
func (m *VorzeA10CycloneCmd) SetId(id uint32)         { m.Id = id }
func (m *VorzeA10CycloneCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *VorzeA10CycloneCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *VorzeA10CycloneCmd) clientOriginated()       {}

func (m *VorzeA10CycloneCmd) Validate() error {
	if m.Speed > 99 {
		return NewInvalidMessageContents("VorzeA10CycloneCmd Speed must be in [0,99]")
	}
	return nil
}
