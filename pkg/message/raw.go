package message

// RawReadCmd performs a gated, protocol-bypassing read from a named
// endpoint (spec.md §3/§9). Servers only honor this when the device
// configuration manager's raw-messages gate is open; the gate is one
// server-wide flag that adds the Raw* messages to every device's
// attributes (spec.md §5).
//
// ExpectedLength of 0 is intentionally left unvalidated here: it means
// "read whatever is available" and is meaningful for endpoints backed by
// a notification rather than a fixed-size characteristic (spec.md §9
// Open Question, resolved in DESIGN.md).
type RawReadCmd struct {
	Id             uint32 `json:"Id" validate:"required"`
	DeviceIndex    uint32 `json:"DeviceIndex"`
	Endpoint       string `json:"Endpoint"`
	ExpectedLength uint32 `json:"ExpectedLength"`
	Timeout        uint32 `json:"Timeout"`
}

func (m *RawReadCmd) GetId() uint32           { return m.Id }
func (m *RawReadCmd) SetId(id uint32)         { m.Id = id }
func (m *RawReadCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *RawReadCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *RawReadCmd) clientOriginated()       {}

// RawWriteCmd performs a gated, protocol-bypassing write to a named
// endpoint (spec.md §3/§9).
type RawWriteCmd struct {
	Id                uint32 `json:"Id" validate:"required"`
	DeviceIndex       uint32 `json:"DeviceIndex"`
	Endpoint          string `json:"Endpoint"`
	Data              []byte `json:"Data"`
	WriteWithResponse bool   `json:"WriteWithResponse"`
}

func (m *RawWriteCmd) GetId() uint32           { return m.Id }
func (m *RawWriteCmd) SetId(id uint32)         { m.Id = id }
func (m *RawWriteCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *RawWriteCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *RawWriteCmd) clientOriginated()       {}

func (m *RawWriteCmd) Validate() error {
	if m.Endpoint == "" {
		return NewInvalidMessageContents("RawWriteCmd requires a non-empty Endpoint")
	}
	return nil
}

// RawReading answers a RawReadCmd, or is pushed unsolicited for a
// RawSubscribeCmd feed (spec.md §4.3). Id is 0 for the pushed case.
type RawReading struct {
	Id          uint32 `json:"Id"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Endpoint    string `json:"Endpoint"`
	Data        []byte `json:"Data"`
}

func (m *RawReading) GetId() uint32           { return m.Id }
func (m *RawReading) SetId(id uint32)         { m.Id = id }
func (m *RawReading) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *RawReading) SetDeviceIndex(i uint32) { m.DeviceIndex = i }

// RawSubscribeCmd starts a standing RawReading feed for one endpoint.
type RawSubscribeCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Endpoint    string `json:"Endpoint"`
}

func (m *RawSubscribeCmd) GetId() uint32           { return m.Id }
func (m *RawSubscribeCmd) SetId(id uint32)         { m.Id = id }
func (m *RawSubscribeCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *RawSubscribeCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *RawSubscribeCmd) clientOriginated()       {}

// RawUnsubscribeCmd stops a feed started by RawSubscribeCmd.
type RawUnsubscribeCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	Endpoint    string `json:"Endpoint"`
}

func (m *RawUnsubscribeCmd) GetId() uint32           { return m.Id }
func (m *RawUnsubscribeCmd) SetId(id uint32)         { m.Id = id }
func (m *RawUnsubscribeCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *RawUnsubscribeCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *RawUnsubscribeCmd) clientOriginated()       {}
