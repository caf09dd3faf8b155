package vorze

import (
	"context"
	"testing"
	"time"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol/generic"
)

type recordingHardware struct {
	writes [][]byte
}

func (h *recordingHardware) Info() hardware.Info { return hardware.Info{Connected: true} }
func (h *recordingHardware) Connected() bool      { return true }
func (h *recordingHardware) ReadValue(ctx context.Context, ep hardware.Endpoint, expectedLength uint32, timeout time.Duration) ([]byte, error) {
	return nil, nil
}
func (h *recordingHardware) WriteValue(ctx context.Context, ep hardware.Endpoint, data []byte, withResponse bool) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	h.writes = append(h.writes, cp)
	return nil
}
func (h *recordingHardware) SubscribeToNotifications(ctx context.Context, ep hardware.Endpoint) error {
	return nil
}
func (h *recordingHardware) UnsubscribeFromNotifications(ctx context.Context, ep hardware.Endpoint) error {
	return nil
}
func (h *recordingHardware) Events() <-chan hardware.Notification { return nil }
func (h *recordingHardware) Disconnect(ctx context.Context) error  { return nil }

func TestVorzeIdentifyReturnsDefault(t *testing.T) {
	id, err := identifier{}.Identify(context.Background(), &recordingHardware{})
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if id.ProtocolName != ProtocolName || id.Identifier != "default" {
		t.Fatalf("Identify() = %+v, want default identifier", id)
	}
}

func TestVorzeHandlerWritesCycloneFrame(t *testing.T) {
	hw := &recordingHardware{}
	handler := &handler{cache: generic.NewLastSentCache(), featureCount: 1}

	cmd := &message.RotateCmd{Id: 1, DeviceIndex: 0, Rotations: []message.RotationSubcommand{
		{Index: 0, Speed: 1.0, Clockwise: true},
	}}
	if _, err := handler.HandleCommand(context.Background(), hw, cmd); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if len(hw.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(hw.writes))
	}
	want := []byte{99, 0}
	if hw.writes[0][0] != want[0] || hw.writes[0][1] != want[1] {
		t.Fatalf("cycloneFrame = %v, want %v", hw.writes[0], want)
	}
}

func TestVorzeHandlerSuppressesRepeatedIdenticalCommand(t *testing.T) {
	hw := &recordingHardware{}
	handler := &handler{cache: generic.NewLastSentCache(), featureCount: 1}

	cmd := &message.RotateCmd{Id: 1, DeviceIndex: 0, Rotations: []message.RotationSubcommand{
		{Index: 0, Speed: 0.5, Clockwise: true},
	}}
	handler.HandleCommand(context.Background(), hw, cmd)
	handler.HandleCommand(context.Background(), hw, cmd)

	if len(hw.writes) != 1 {
		t.Fatalf("expected repeated identical command to suppress the second write, got %d writes", len(hw.writes))
	}
}

func TestVorzeHandlerFeatureIndexOutOfRange(t *testing.T) {
	hw := &recordingHardware{}
	handler := &handler{cache: generic.NewLastSentCache(), featureCount: 1}

	cmd := &message.RotateCmd{Id: 1, DeviceIndex: 0, Rotations: []message.RotationSubcommand{
		{Index: 5, Speed: 0.5, Clockwise: true},
	}}
	if _, err := handler.HandleCommand(context.Background(), hw, cmd); err == nil {
		t.Fatal("expected error for feature index beyond device's rotate feature count")
	}
}

func TestVorzeHandlerStopDeviceResetsCache(t *testing.T) {
	hw := &recordingHardware{}
	handler := &handler{cache: generic.NewLastSentCache(), featureCount: 1}

	cmd := &message.RotateCmd{Id: 1, DeviceIndex: 0, Rotations: []message.RotationSubcommand{
		{Index: 0, Speed: 0.5, Clockwise: true},
	}}
	handler.HandleCommand(context.Background(), hw, cmd)
	handler.HandleCommand(context.Background(), hw, message.NewStopDeviceCmd(2, 0))

	// After a stop (which resets the cache), the same rotate command must
	// write again rather than be suppressed as a duplicate.
	handler.HandleCommand(context.Background(), hw, cmd)

	if len(hw.writes) != 3 {
		t.Fatalf("expected rotate+stop+rotate to all write, got %d writes", len(hw.writes))
	}
}

func TestVorzeHandlerUnsupportedMessage(t *testing.T) {
	hw := &recordingHardware{}
	handler := &handler{cache: generic.NewLastSentCache(), featureCount: 1}
	if _, err := handler.HandleCommand(context.Background(), hw, &message.SensorReadCmd{Id: 1}); err == nil {
		t.Fatal("expected error for an unsupported message type")
	}
}
