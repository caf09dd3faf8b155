package version

import "github.com/commatea/hapticbridge/pkg/message"

// spec0 is the closed member set legal at MessageVersion 0: status and
// handshake messages plus the original vendor-specific device commands
// (spec.md §4.2).
var spec0 = newUnion(Spec0, map[string]factory{
	"Ok":                      func() message.Message { return &message.Ok{} },
	"Error":                   func() message.Message { return &message.Error{} },
	"Log":                     func() message.Message { return &message.Log{} },
	"RequestLog":              func() message.Message { return &message.RequestLog{} },
	"Ping":                    func() message.Message { return &message.Ping{} },
	"Test":                    func() message.Message { return &message.Test{} },
	"RequestServerInfo":       func() message.Message { return &message.RequestServerInfo{} },
	"ServerInfo":              func() message.Message { return &message.ServerInfo{} },
	"RequestDeviceList":       func() message.Message { return &message.RequestDeviceList{} },
	"DeviceList":              func() message.Message { return &message.DeviceList{} },
	"DeviceAdded":             func() message.Message { return &message.DeviceAdded{} },
	"DeviceRemoved":           func() message.Message { return &message.DeviceRemoved{} },
	"StartScanning":           func() message.Message { return &message.StartScanning{} },
	"StopScanning":            func() message.Message { return &message.StopScanning{} },
	"ScanningFinished":        func() message.Message { return &message.ScanningFinished{} },
	"SingleMotorVibrateCmd":   func() message.Message { return &message.SingleMotorVibrateCmd{} },
	"FleshlightLaunchFW12Cmd": func() message.Message { return &message.FleshlightLaunchFW12Cmd{} },
	"LovenseCmd":              func() message.Message { return &message.LovenseCmd{} },
	"KiirooCmd":               func() message.Message { return &message.KiirooCmd{} },
	"VorzeA10CycloneCmd":      func() message.Message { return &message.VorzeA10CycloneCmd{} },
	"StopDeviceCmd":           func() message.Message { return &message.StopDeviceCmd{} },
	"StopAllDevices":          func() message.Message { return &message.StopAllDevices{} },
})

// spec1 adds the generic VibrateCmd/LinearCmd/RotateCmd actuator
// commands alongside the v0 vendor-specific ones (spec.md §4.2).
var spec1 = newUnion(Spec1, unionWith(spec0.members, map[string]factory{
	"VibrateCmd": func() message.Message { return &message.VibrateCmd{} },
	"LinearCmd":  func() message.Message { return &message.LinearCmd{} },
	"RotateCmd":  func() message.Message { return &message.RotateCmd{} },
}))

// spec2 drops the deprecated device-specific v0 commands and adds the
// raw passthrough messages (spec.md §4.2).
var spec2 = newUnion(Spec2, unionWith(withoutKeys(spec1.members,
	"SingleMotorVibrateCmd", "FleshlightLaunchFW12Cmd", "LovenseCmd", "KiirooCmd", "VorzeA10CycloneCmd"),
	map[string]factory{
		"RawWriteCmd":       func() message.Message { return &message.RawWriteCmd{} },
		"RawReadCmd":        func() message.Message { return &message.RawReadCmd{} },
		"RawReading":        func() message.Message { return &message.RawReading{} },
		"RawSubscribeCmd":   func() message.Message { return &message.RawSubscribeCmd{} },
		"RawUnsubscribeCmd": func() message.Message { return &message.RawUnsubscribeCmd{} },
	}))

// spec3 replaces VibrateCmd with the unified ScalarCmd and adds the
// sensor messages (spec.md §4.2).
var spec3 = newUnion(Spec3, unionWith(withoutKeys(spec2.members, "VibrateCmd"),
	map[string]factory{
		"ScalarCmd":            func() message.Message { return &message.ScalarCmd{} },
		"SensorReadCmd":        func() message.Message { return &message.SensorReadCmd{} },
		"SensorReading":        func() message.Message { return &message.SensorReading{} },
		"SensorSubscribeCmd":   func() message.Message { return &message.SensorSubscribeCmd{} },
		"SensorUnsubscribeCmd": func() message.Message { return &message.SensorUnsubscribeCmd{} },
	}))

func unionWith(base map[string]factory, extra map[string]factory) map[string]factory {
	out := make(map[string]factory, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func withoutKeys(base map[string]factory, drop ...string) map[string]factory {
	dropped := make(map[string]bool, len(drop))
	for _, k := range drop {
		dropped[k] = true
	}
	out := make(map[string]factory, len(base))
	for k, v := range base {
		if !dropped[k] {
			out[k] = v
		}
	}
	return out
}
