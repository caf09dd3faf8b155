package message

// Ok acknowledges a client message with no further payload.
type Ok struct {
	Id uint32 `json:"Id" validate:"required"`
}

func (m *Ok) GetId() uint32     { return m.Id }
func (m *Ok) SetId(id uint32)   { m.Id = id }
func (m *Ok) clientOriginated() {}

// Error reports a failure for the request named by Id, or Id 0 for a
// server-initiated failure such as a ping timeout (spec.md §6/§7).
type Error struct {
	Id           uint32    `json:"Id"`
	ErrorMessage string    `json:"ErrorMessage"`
	ErrorCode    ErrorCode `json:"ErrorCode"`
}

func (m *Error) GetId() uint32   { return m.Id }
func (m *Error) SetId(id uint32) { m.Id = id }

// Ping keeps a handshake-negotiated session alive (spec.md §6).
type Ping struct {
	Id uint32 `json:"Id" validate:"required"`
}

func (m *Ping) GetId() uint32     { return m.Id }
func (m *Ping) SetId(id uint32)   { m.Id = id }
func (m *Ping) clientOriginated() {}

// Test is a client-loopback diagnostic: the server echoes TestString
// back unchanged (SPEC_FULL §14).
type Test struct {
	Id         uint32 `json:"Id" validate:"required"`
	TestString string `json:"TestString"`
}

func (m *Test) GetId() uint32     { return m.Id }
func (m *Test) SetId(id uint32)   { m.Id = id }
func (m *Test) clientOriginated() {}

// RequestLog subscribes the client to server log messages at or above
// LogLevel (SPEC_FULL §14).
type RequestLog struct {
	Id       uint32 `json:"Id" validate:"required"`
	LogLevel string `json:"LogLevel"`
}

func (m *RequestLog) GetId() uint32     { return m.Id }
func (m *RequestLog) SetId(id uint32)   { m.Id = id }
func (m *RequestLog) clientOriginated() {}

// Log is a server-initiated log line delivered to a RequestLog
// subscriber (SPEC_FULL §14).
type Log struct {
	Id         uint32 `json:"Id"`
	LogLevel   string `json:"LogLevel"`
	LogMessage string `json:"LogMessage"`
}

func (m *Log) GetId() uint32   { return m.Id }
func (m *Log) SetId(id uint32) { m.Id = id }

// RequestServerInfo begins the handshake (spec.md §6).
type RequestServerInfo struct {
	Id             uint32 `json:"Id" validate:"required"`
	ClientName     string `json:"ClientName"`
	MessageVersion uint32 `json:"MessageVersion"`
}

func (m *RequestServerInfo) GetId() uint32     { return m.Id }
func (m *RequestServerInfo) SetId(id uint32)   { m.Id = id }
func (m *RequestServerInfo) clientOriginated() {}

// ServerInfo answers RequestServerInfo (spec.md §6).
type ServerInfo struct {
	Id             uint32 `json:"Id"`
	ServerName     string `json:"ServerName"`
	MessageVersion uint32 `json:"MessageVersion"`
	MaxPingTime    uint32 `json:"MaxPingTime"`
}

func (m *ServerInfo) GetId() uint32   { return m.Id }
func (m *ServerInfo) SetId(id uint32) { m.Id = id }

// RequestDeviceList asks for a DeviceList snapshot (spec.md §4.5).
type RequestDeviceList struct {
	Id uint32 `json:"Id" validate:"required"`
}

func (m *RequestDeviceList) GetId() uint32     { return m.Id }
func (m *RequestDeviceList) SetId(id uint32)   { m.Id = id }
func (m *RequestDeviceList) clientOriginated() {}

// DeviceList is the response to RequestDeviceList.
type DeviceList struct {
	Id      uint32               `json:"Id"`
	Devices []DeviceMessageInfo  `json:"Devices"`
}

func (m *DeviceList) GetId() uint32   { return m.Id }
func (m *DeviceList) SetId(id uint32) { m.Id = id }

// DeviceAdded is a server-initiated notification that a device was
// registered (spec.md §4.5). Id is always 0.
type DeviceAdded struct {
	Id             uint32        `json:"Id"`
	DeviceIndex    uint32        `json:"DeviceIndex"`
	DeviceName     string        `json:"DeviceName"`
	DeviceMessages AttributesMap `json:"DeviceMessages"`
}

func (m *DeviceAdded) GetId() uint32          { return m.Id }
func (m *DeviceAdded) SetId(id uint32)        { m.Id = id }
func (m *DeviceAdded) GetDeviceIndex() uint32 { return m.DeviceIndex }
func (m *DeviceAdded) SetDeviceIndex(i uint32) { m.DeviceIndex = i }

// DeviceRemoved is a server-initiated notification that a device was
// removed (spec.md §4.5). Id is always 0.
type DeviceRemoved struct {
	Id          uint32 `json:"Id"`
	DeviceIndex uint32 `json:"DeviceIndex"`
}

func (m *DeviceRemoved) GetId() uint32          { return m.Id }
func (m *DeviceRemoved) SetId(id uint32)        { m.Id = id }
func (m *DeviceRemoved) GetDeviceIndex() uint32 { return m.DeviceIndex }
func (m *DeviceRemoved) SetDeviceIndex(i uint32) { m.DeviceIndex = i }

// StartScanning tells every scan-capable comm manager to start scanning
// (spec.md §4.5).
type StartScanning struct {
	Id uint32 `json:"Id" validate:"required"`
}

func (m *StartScanning) GetId() uint32     { return m.Id }
func (m *StartScanning) SetId(id uint32)   { m.Id = id }
func (m *StartScanning) clientOriginated() {}

// StopScanning tells every scan-capable comm manager to stop scanning.
type StopScanning struct {
	Id uint32 `json:"Id" validate:"required"`
}

func (m *StopScanning) GetId() uint32     { return m.Id }
func (m *StopScanning) SetId(id uint32)   { m.Id = id }
func (m *StopScanning) clientOriginated() {}

// ScanningFinished is emitted once every comm manager has reported its
// own scan-finished signal (spec.md §4.5). Id is always 0.
type ScanningFinished struct {
	Id uint32 `json:"Id"`
}

func (m *ScanningFinished) GetId() uint32   { return m.Id }
func (m *ScanningFinished) SetId(id uint32) { m.Id = id }

// StopAllDevices fans a StopDeviceCmd out to every live device (spec.md
// §4.5/§8 scenario 4).
type StopAllDevices struct {
	Id uint32 `json:"Id" validate:"required"`
}

func (m *StopAllDevices) GetId() uint32     { return m.Id }
func (m *StopAllDevices) SetId(id uint32)   { m.Id = id }
func (m *StopAllDevices) clientOriginated() {}

// StopDeviceCmd stops all actuators on a single device.
type StopDeviceCmd struct {
	Id          uint32 `json:"Id" validate:"required"`
	DeviceIndex uint32 `json:"DeviceIndex"`
}

func (m *StopDeviceCmd) GetId() uint32           { return m.Id }
func (m *StopDeviceCmd) SetId(id uint32)         { m.Id = id }
func (m *StopDeviceCmd) GetDeviceIndex() uint32  { return m.DeviceIndex }
func (m *StopDeviceCmd) SetDeviceIndex(i uint32) { m.DeviceIndex = i }
func (m *StopDeviceCmd) clientOriginated()       {}

// NewStopDeviceCmd builds a StopDeviceCmd with the given id and device
// index, mirroring the convenience constructor original_source uses
// internally (StopDeviceCmd::new) when the manager fans one out per
// device for StopAllDevices.
func NewStopDeviceCmd(id, deviceIndex uint32) *StopDeviceCmd {
	return &StopDeviceCmd{Id: id, DeviceIndex: deviceIndex}
}
