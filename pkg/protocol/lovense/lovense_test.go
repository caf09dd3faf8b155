package lovense

import (
	"context"
	"testing"
	"time"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol/generic"
)

// scriptedHardware answers ReadValue with a fixed response and records
// every WriteValue call, enough to drive the device-type probe and the
// steady-state command handler without real BLE.
type scriptedHardware struct {
	readResponse []byte
	readErr      error
	writes       []string
}

func (h *scriptedHardware) Info() hardware.Info { return hardware.Info{Connected: true} }
func (h *scriptedHardware) Connected() bool      { return true }
func (h *scriptedHardware) ReadValue(ctx context.Context, ep hardware.Endpoint, expectedLength uint32, timeout time.Duration) ([]byte, error) {
	return h.readResponse, h.readErr
}
func (h *scriptedHardware) WriteValue(ctx context.Context, ep hardware.Endpoint, data []byte, withResponse bool) error {
	h.writes = append(h.writes, string(data))
	return nil
}
func (h *scriptedHardware) SubscribeToNotifications(ctx context.Context, ep hardware.Endpoint) error {
	return nil
}
func (h *scriptedHardware) UnsubscribeFromNotifications(ctx context.Context, ep hardware.Endpoint) error {
	return nil
}
func (h *scriptedHardware) Events() <-chan hardware.Notification { return nil }
func (h *scriptedHardware) Disconnect(ctx context.Context) error  { return nil }

func TestLovenseIdentifyRecognizesModelByte(t *testing.T) {
	tests := []struct {
		name     string
		response []byte
		wantErr  bool
		flavor   string
	}{
		{"nora", []byte("A:5:10"), false, "nora"},
		{"lush", []byte("S:2:5"), false, "lush"},
		{"unrecognized byte", []byte("Q:1:1"), true, ""},
		{"empty response", []byte{}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hw := &scriptedHardware{readResponse: tt.response}
			id, err := identifier{}.Identify(context.Background(), hw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Identify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && id.Identifier != tt.flavor {
				t.Fatalf("Identify() flavor = %q, want %q", id.Identifier, tt.flavor)
			}
			if len(hw.writes) != 1 || hw.writes[0] != "DeviceType;" {
				t.Fatalf("expected a single DeviceType; probe write, got %v", hw.writes)
			}
		})
	}
}

func TestLovenseHandlerVibrateWritesAsciiLine(t *testing.T) {
	hw := &scriptedHardware{}
	h := &handler{cache: generic.NewLastSentCache(), featureCount: 1}

	cmd := &message.ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: []message.ScalarSubcommand{
		{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
	}}
	if _, err := h.HandleCommand(context.Background(), hw, cmd); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if len(hw.writes) != 1 || hw.writes[0] != "Vibrate0:10;" {
		t.Fatalf("unexpected write: %v", hw.writes)
	}
}

func TestLovenseHandlerSuppressesRepeatedCommand(t *testing.T) {
	hw := &scriptedHardware{}
	h := &handler{cache: generic.NewLastSentCache(), featureCount: 1}
	cmd := &message.ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: []message.ScalarSubcommand{
		{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
	}}
	h.HandleCommand(context.Background(), hw, cmd)
	h.HandleCommand(context.Background(), hw, cmd)
	if len(hw.writes) != 1 {
		t.Fatalf("expected repeated identical command to be suppressed, got %d writes", len(hw.writes))
	}
}

func TestLovenseHandlerStopResetsCache(t *testing.T) {
	hw := &scriptedHardware{}
	h := &handler{cache: generic.NewLastSentCache(), featureCount: 1}
	cmd := &message.ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: []message.ScalarSubcommand{
		{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
	}}
	h.HandleCommand(context.Background(), hw, cmd)
	h.HandleCommand(context.Background(), hw, message.NewStopDeviceCmd(2, 0))
	h.HandleCommand(context.Background(), hw, cmd)

	if len(hw.writes) != 3 {
		t.Fatalf("expected vibrate+stop+vibrate to all write, got %d: %v", len(hw.writes), hw.writes)
	}
}

func TestLovenseHandlerUnsupportedMessage(t *testing.T) {
	hw := &scriptedHardware{}
	h := &handler{cache: generic.NewLastSentCache(), featureCount: 1}
	if _, err := h.HandleCommand(context.Background(), hw, &message.SensorReadCmd{Id: 1}); err == nil {
		t.Fatal("expected error for unsupported message type")
	}
}
