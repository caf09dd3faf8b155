package message

import "testing"

func TestRequireNonZeroID(t *testing.T) {
	tests := []struct {
		name    string
		id      uint32
		wantErr bool
	}{
		{"zero rejected", 0, true},
		{"nonzero accepted", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireNonZeroID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RequireNonZeroID(%d) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestScalarRange(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"lower bound", 0.0, false},
		{"upper bound", 1.0, false},
		{"mid range", 0.5, false},
		{"below range", -0.01, true},
		{"above range", 1.01, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ScalarRange("Scalar", 0, tt.v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ScalarRange(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}
