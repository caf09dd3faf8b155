package version

import "github.com/commatea/hapticbridge/pkg/message"

// Up-conversion translates a deprecated command into its canonical v3
// equivalent against the receiving device's attributes (spec.md §4.2).
// Every converter here preserves Id and DeviceIndex exactly.

// UpConvertSingleMotorVibrateCmd fans a single speed value out across
// every vibrate feature the device declares.
func UpConvertSingleMotorVibrateCmd(cmd *message.SingleMotorVibrateCmd, vibrateFeatureCount uint32) *message.ScalarCmd {
	subs := make([]message.ScalarSubcommand, vibrateFeatureCount)
	for i := range subs {
		subs[i] = message.ScalarSubcommand{Index: uint32(i), Scalar: cmd.Speed, ActuatorType: "Vibrate"}
	}
	return &message.ScalarCmd{Id: cmd.Id, DeviceIndex: cmd.DeviceIndex, Scalars: subs}
}

// UpConvertVibrateCmd maps each VibrateSubcommand 1:1 onto a
// ScalarSubcommand tagged ActuatorType Vibrate.
func UpConvertVibrateCmd(cmd *message.VibrateCmd) *message.ScalarCmd {
	subs := make([]message.ScalarSubcommand, len(cmd.Speeds))
	for i, s := range cmd.Speeds {
		subs[i] = message.ScalarSubcommand{Index: s.Index, Scalar: s.Speed, ActuatorType: "Vibrate"}
	}
	return &message.ScalarCmd{Id: cmd.Id, DeviceIndex: cmd.DeviceIndex, Scalars: subs}
}

// fleshlightDurationMS approximates the stroke duration a FW12 firmware
// command implies from its 0-99 position/speed pair: higher speed values
// mean a faster stroke, so a shorter nominal duration. The exact
// original firmware table was never published outside vendor tooling;
// this linear approximation is recorded as an explicit open-question
// decision rather than invented silently.
func fleshlightDurationMS(speed uint32) uint32 {
	const minMS, maxMS = 100, 1000
	if speed > 99 {
		speed = 99
	}
	return uint32(maxMS) - (speed*(maxMS-minMS))/99
}

// UpConvertFleshlightLaunchFW12Cmd converts a 0-99 position/speed pair
// into a single-subcommand LinearCmd.
func UpConvertFleshlightLaunchFW12Cmd(cmd *message.FleshlightLaunchFW12Cmd) *message.LinearCmd {
	return &message.LinearCmd{
		Id:          cmd.Id,
		DeviceIndex: cmd.DeviceIndex,
		Vectors: []message.VectorSubcommand{
			{Index: 0, Duration: fleshlightDurationMS(cmd.Speed), Position: float64(cmd.Position) / 99.0},
		},
	}
}

// UpConvertVorzeA10CycloneCmd converts a 0-99 speed/clockwise pair into a
// single-subcommand RotateCmd.
func UpConvertVorzeA10CycloneCmd(cmd *message.VorzeA10CycloneCmd) *message.RotateCmd {
	return &message.RotateCmd{
		Id:          cmd.Id,
		DeviceIndex: cmd.DeviceIndex,
		Rotations: []message.RotationSubcommand{
			{Index: 0, Speed: float64(cmd.Speed) / 99.0, Clockwise: cmd.Clockwise},
		},
	}
}

// DownConvertScalarCmd remaps a ScalarCmd into the legacy VibrateCmd
// shape for a V1/V2 client, dropping non-vibrate actuators (spec.md
// §4.2). ok is false if no subcommand in cmd is a Vibrate actuator, in
// which case nothing should be sent to the legacy client.
func DownConvertScalarCmd(cmd *message.ScalarCmd) (vibrate *message.VibrateCmd, ok bool) {
	speeds := make([]message.VibrateSubcommand, 0, len(cmd.Scalars))
	for _, s := range cmd.Scalars {
		if s.ActuatorType != "Vibrate" {
			continue
		}
		speeds = append(speeds, message.VibrateSubcommand{Index: s.Index, Speed: s.Scalar})
	}
	if len(speeds) == 0 {
		return nil, false
	}
	return &message.VibrateCmd{Id: cmd.Id, DeviceIndex: cmd.DeviceIndex, Speeds: speeds}, true
}

// sensorMessageNames lists the sensor message names introduced at spec
// version 3, used by DowngradeAttributeNames to suppress them below V3
// (spec.md §4.2 "Sensor messages are suppressed below V3").
var sensorMessageNames = map[string]bool{
	"SensorReadCmd":        true,
	"SensorReading":        true,
	"SensorSubscribeCmd":   true,
	"SensorUnsubscribeCmd": true,
}

// DowngradeAttributeNames filters a device's advertised message names
// down to what is legal at the client's negotiated spec version, mapping
// "ScalarCmd" to "VibrateCmd" whenever the target is below V3 and its
// union has VibrateCmd; only names are seen here, so actuator types are
// not checked (spec.md §4.2).
func DowngradeAttributeNames(names []string, target Spec) []string {
	u, ok := unionFor(target)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "ScalarCmd" && target < Spec3 {
			if _, has := u.members["VibrateCmd"]; has {
				out = append(out, "VibrateCmd")
			}
			continue
		}
		if sensorMessageNames[name] && target < Spec3 {
			continue
		}
		if _, has := u.members[name]; has {
			out = append(out, name)
		}
	}
	return out
}

// DowngradeAttributes is DowngradeAttributeNames' attribute-value
// counterpart: it renders the DeviceMessages map a DeviceList/DeviceAdded
// response shows a client at the given negotiated spec version, narrowing
// a renamed ScalarCmd entry to its Vibrate-only features the same way
// DownConvertScalarCmd narrows the command itself (spec.md §4.2).
func DowngradeAttributes(attrs message.AttributesMap, target Spec) message.AttributesMap {
	out := message.NewAttributesMap()
	if attrs == nil {
		return out
	}
	u, ok := unionFor(target)
	if !ok {
		return out
	}
	for pair := attrs.Oldest(); pair != nil; pair = pair.Next() {
		name, value := pair.Key, pair.Value
		if name == "ScalarCmd" && target < Spec3 {
			if _, has := u.members["VibrateCmd"]; has {
				out.Set("VibrateCmd", vibrateOnlyAttributes(value))
			}
			continue
		}
		if sensorMessageNames[name] && target < Spec3 {
			continue
		}
		if _, has := u.members[name]; has {
			out.Set(name, value)
		}
	}
	return out
}

// vibrateOnlyAttributes narrows a ScalarCmd attribute set to the Vibrate
// actuators a down-converted VibrateCmd can still address.
func vibrateOnlyAttributes(attrs message.Attributes) message.Attributes {
	var count uint32
	steps := make([]uint32, 0, len(attrs.ActuatorType))
	for i, t := range attrs.ActuatorType {
		if t != "Vibrate" {
			continue
		}
		count++
		if i < len(attrs.StepCount) {
			steps = append(steps, attrs.StepCount[i])
		}
	}
	return message.Attributes{FeatureCount: count, StepCount: steps}
}
