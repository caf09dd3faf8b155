package message

import "testing"

func TestScalarCmdValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ScalarCmd
		wantErr bool
	}{
		{
			name:    "empty scalars is a legal no-op",
			cmd:     ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: nil},
			wantErr: false,
		},
		{
			name: "in range accepted",
			cmd: ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: []ScalarSubcommand{
				{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
			}},
			wantErr: false,
		},
		{
			name: "out of range rejected",
			cmd: ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: []ScalarSubcommand{
				{Index: 0, Scalar: 1.5, ActuatorType: "Vibrate"},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinearCmdValidate(t *testing.T) {
	empty := LinearCmd{Id: 1, Vectors: nil}
	if err := empty.Validate(); err != nil {
		t.Fatalf("expected empty vectors to be a legal no-op, got %v", err)
	}

	bad := LinearCmd{Id: 1, Vectors: []VectorSubcommand{{Index: 0, Duration: 100, Position: -1}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for out-of-range position")
	}

	good := LinearCmd{Id: 1, Vectors: []VectorSubcommand{{Index: 0, Duration: 100, Position: 0.25}}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRotateCmdValidate(t *testing.T) {
	empty := RotateCmd{Id: 1, Rotations: nil}
	if err := empty.Validate(); err != nil {
		t.Fatalf("expected empty rotations to be a legal no-op, got %v", err)
	}

	good := RotateCmd{Id: 1, Rotations: []RotationSubcommand{{Index: 0, Speed: 0.75, Clockwise: true}}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMessageAccessors(t *testing.T) {
	cmd := &ScalarCmd{Id: 5, DeviceIndex: 2}
	if cmd.GetId() != 5 {
		t.Fatalf("GetId() = %d, want 5", cmd.GetId())
	}
	cmd.SetId(6)
	if cmd.GetId() != 6 {
		t.Fatalf("SetId did not persist, GetId() = %d", cmd.GetId())
	}
	if cmd.GetDeviceIndex() != 2 {
		t.Fatalf("GetDeviceIndex() = %d, want 2", cmd.GetDeviceIndex())
	}
	cmd.SetDeviceIndex(9)
	if cmd.GetDeviceIndex() != 9 {
		t.Fatalf("SetDeviceIndex did not persist, GetDeviceIndex() = %d", cmd.GetDeviceIndex())
	}
}
