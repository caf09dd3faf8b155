package message

import "testing"

func TestSingleMotorVibrateCmdValidate(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		wantErr bool
	}{
		{"in range", 0.5, false},
		{"lower bound", 0, false},
		{"upper bound", 1, false},
		{"below range", -0.1, true},
		{"above range", 1.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &SingleMotorVibrateCmd{Id: 1, Speed: tt.speed}
			if err := cmd.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFleshlightLaunchFW12CmdValidate(t *testing.T) {
	tests := []struct {
		name     string
		position uint32
		speed    uint32
		wantErr  bool
	}{
		{"in range", 50, 50, false},
		{"position too high", 100, 50, true},
		{"speed too high", 50, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &FleshlightLaunchFW12Cmd{Id: 1, Position: tt.position, Speed: tt.speed}
			if err := cmd.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVorzeA10CycloneCmdValidate(t *testing.T) {
	if err := (&VorzeA10CycloneCmd{Id: 1, Speed: 99}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if err := (&VorzeA10CycloneCmd{Id: 1, Speed: 100}).Validate(); err == nil {
		t.Fatal("expected error for Speed above 99")
	}
}
