package version

import (
	"testing"

	"github.com/commatea/hapticbridge/pkg/message"
)

func TestUpConvertSingleMotorVibrateCmd(t *testing.T) {
	cmd := &message.SingleMotorVibrateCmd{Id: 1, DeviceIndex: 2, Speed: 0.7}
	scalar := UpConvertSingleMotorVibrateCmd(cmd, 3)

	if scalar.Id != 1 || scalar.DeviceIndex != 2 {
		t.Fatalf("envelope fields not preserved: %+v", scalar)
	}
	if len(scalar.Scalars) != 3 {
		t.Fatalf("expected 3 scalars, got %d", len(scalar.Scalars))
	}
	for i, s := range scalar.Scalars {
		if s.Index != uint32(i) || s.Scalar != 0.7 || s.ActuatorType != "Vibrate" {
			t.Fatalf("scalar[%d] = %+v, unexpected", i, s)
		}
	}
}

func TestUpConvertVibrateCmd(t *testing.T) {
	cmd := &message.VibrateCmd{Id: 9, DeviceIndex: 1, Speeds: []message.VibrateSubcommand{
		{Index: 0, Speed: 0.3},
		{Index: 1, Speed: 0.8},
	}}
	scalar := UpConvertVibrateCmd(cmd)
	if len(scalar.Scalars) != 2 {
		t.Fatalf("expected 2 scalars, got %d", len(scalar.Scalars))
	}
	if scalar.Scalars[1].ActuatorType != "Vibrate" || scalar.Scalars[1].Scalar != 0.8 {
		t.Fatalf("unexpected second scalar: %+v", scalar.Scalars[1])
	}
}

func TestUpConvertFleshlightLaunchFW12Cmd(t *testing.T) {
	cmd := &message.FleshlightLaunchFW12Cmd{Id: 1, DeviceIndex: 0, Position: 99, Speed: 50}
	linear := UpConvertFleshlightLaunchFW12Cmd(cmd)
	if len(linear.Vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(linear.Vectors))
	}
	if linear.Vectors[0].Position != 1.0 {
		t.Fatalf("expected normalized position 1.0, got %v", linear.Vectors[0].Position)
	}
}

func TestUpConvertVorzeA10CycloneCmd(t *testing.T) {
	cmd := &message.VorzeA10CycloneCmd{Id: 1, DeviceIndex: 0, Speed: 99, Clockwise: true}
	rotate := UpConvertVorzeA10CycloneCmd(cmd)
	if len(rotate.Rotations) != 1 {
		t.Fatalf("expected 1 rotation, got %d", len(rotate.Rotations))
	}
	r := rotate.Rotations[0]
	if r.Speed != 1.0 || !r.Clockwise {
		t.Fatalf("unexpected rotation: %+v", r)
	}
}

func TestDownConvertScalarCmd(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *message.ScalarCmd
		wantOk  bool
		wantLen int
	}{
		{
			name: "vibrate-only passes through",
			cmd: &message.ScalarCmd{Id: 1, Scalars: []message.ScalarSubcommand{
				{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
			}},
			wantOk:  true,
			wantLen: 1,
		},
		{
			name: "mixed actuators drop non-vibrate",
			cmd: &message.ScalarCmd{Id: 1, Scalars: []message.ScalarSubcommand{
				{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
				{Index: 1, Scalar: 0.5, ActuatorType: "Rotate"},
			}},
			wantOk:  true,
			wantLen: 1,
		},
		{
			name: "no vibrate actuators at all",
			cmd: &message.ScalarCmd{Id: 1, Scalars: []message.ScalarSubcommand{
				{Index: 0, Scalar: 0.5, ActuatorType: "Rotate"},
			}},
			wantOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vibrate, ok := DownConvertScalarCmd(tt.cmd)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && len(vibrate.Speeds) != tt.wantLen {
				t.Fatalf("len(Speeds) = %d, want %d", len(vibrate.Speeds), tt.wantLen)
			}
		})
	}
}

func TestDowngradeAttributeNames(t *testing.T) {
	names := []string{"ScalarCmd", "SensorReadCmd", "RawReadCmd"}

	v3 := DowngradeAttributeNames(names, Spec3)
	if len(v3) != len(names) {
		t.Fatalf("Spec3 should pass every name through, got %v", v3)
	}

	v1 := DowngradeAttributeNames(names, Spec1)
	foundVibrate, foundSensor := false, false
	for _, n := range v1 {
		if n == "VibrateCmd" {
			foundVibrate = true
		}
		if n == "SensorReadCmd" {
			foundSensor = true
		}
	}
	if !foundVibrate {
		t.Fatalf("expected ScalarCmd to downgrade to VibrateCmd below Spec3, got %v", v1)
	}
	if foundSensor {
		t.Fatalf("expected SensorReadCmd to be suppressed below Spec3, got %v", v1)
	}
}
