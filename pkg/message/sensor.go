package message

// SensorReadCmd requests a single on-demand reading from a device sensor
// (spec.md §3/§4.3, generalizing BatteryLevelCmd/RSSILevelCmd).
type SensorReadCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	SensorIndex uint32 `json:"SensorIndex"`
	SensorType  string `json:"SensorType"`
}

func (m *SensorReadCmd) GetId() uint32           { return m.Id }
func (m *SensorReadCmd) SetId(id uint32)         { m.Id = id }
func (m *SensorReadCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *SensorReadCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *SensorReadCmd) clientOriginated()       {}

// SensorReading answers a SensorReadCmd, or is pushed unsolicited once a
// SensorSubscribeCmd is active (spec.md §4.3). Id is 0 for the pushed
// case and echoes the request's Id for the direct-answer case.
type SensorReading struct {
	Id          uint32  `json:"Id"`
	DeviceIndex uint32  `json:"DeviceIndex"`
	SensorIndex uint32  `json:"SensorIndex"`
	SensorType  string  `json:"SensorType"`
	Data        []int32 `json:"Data"`
}

func (m *SensorReading) GetId() uint32           { return m.Id }
func (m *SensorReading) SetId(id uint32)         { m.Id = id }
func (m *SensorReading) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *SensorReading) SetDeviceIndex(i uint32) { m.DeviceIndex = i }

// SensorSubscribeCmd starts a standing feed of SensorReading pushes for
// one sensor (spec.md §4.3/§8 scenario 6).
type SensorSubscribeCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	SensorIndex uint32 `json:"SensorIndex"`
	SensorType  string `json:"SensorType"`
}

func (m *SensorSubscribeCmd) GetId() uint32           { return m.Id }
func (m *SensorSubscribeCmd) SetId(id uint32)         { m.Id = id }
func (m *SensorSubscribeCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *SensorSubscribeCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *SensorSubscribeCmd) clientOriginated()       {}

// SensorUnsubscribeCmd stops a feed started by SensorSubscribeCmd.
type SensorUnsubscribeCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
	SensorIndex uint32 `json:"SensorIndex"`
	SensorType  string `json:"SensorType"`
}

func (m *SensorUnsubscribeCmd) GetId() uint32           { return m.Id }
func (m *SensorUnsubscribeCmd) SetId(id uint32)         { m.Id = id }
func (m *SensorUnsubscribeCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *SensorUnsubscribeCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *SensorUnsubscribeCmd) clientOriginated()       {}
