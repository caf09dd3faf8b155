package server

import (
	"context"
	"testing"

	"github.com/commatea/hapticbridge/pkg/hardware"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/message/version"
)

// recordingHandler remembers the concrete type of the last command it was
// handed, so tests can confirm ServerDevice.dispatch up-converts a
// deprecated command before it ever reaches the protocol handler.
type recordingHandler struct {
	lastCmd message.DeviceMessage
}

func (h *recordingHandler) HandleCommand(ctx context.Context, hw hardware.Hardware, cmd message.DeviceMessage) (message.Message, error) {
	h.lastCmd = cmd
	return &message.Ok{Id: cmd.GetId()}, nil
}

func newUpConvertTestDevice(h *recordingHandler) *ServerDevice {
	attrs := message.NewAttributesMap()
	attrs.Set("ScalarCmd", message.Attributes{FeatureCount: 2, ActuatorType: []string{"Vibrate", "Vibrate"}})
	return NewServerDevice(0, "Test Device", "lovense", attrs, newStubHardware(), h)
}

func TestDispatchUpConvertsVibrateCmd(t *testing.T) {
	h := &recordingHandler{}
	dev := newUpConvertTestDevice(h)

	_, err := dev.ParseMessage(context.Background(), &message.VibrateCmd{
		Id: 1, DeviceIndex: 0,
		Speeds: []message.VibrateSubcommand{{Index: 0, Speed: 0.4}},
	})
	if err != nil {
		t.Fatalf("ParseMessage(VibrateCmd) returned error: %v", err)
	}
	scalar, ok := h.lastCmd.(*message.ScalarCmd)
	if !ok {
		t.Fatalf("handler received %T, want *message.ScalarCmd", h.lastCmd)
	}
	if len(scalar.Scalars) != 1 || scalar.Scalars[0].Scalar != 0.4 || scalar.Scalars[0].ActuatorType != "Vibrate" {
		t.Fatalf("unexpected converted scalars: %+v", scalar.Scalars)
	}
}

func TestDispatchUpConvertsSingleMotorVibrateCmd(t *testing.T) {
	h := &recordingHandler{}
	dev := newUpConvertTestDevice(h)

	_, err := dev.ParseMessage(context.Background(), &message.SingleMotorVibrateCmd{Id: 1, DeviceIndex: 0, Speed: 0.9})
	if err != nil {
		t.Fatalf("ParseMessage(SingleMotorVibrateCmd) returned error: %v", err)
	}
	scalar, ok := h.lastCmd.(*message.ScalarCmd)
	if !ok {
		t.Fatalf("handler received %T, want *message.ScalarCmd", h.lastCmd)
	}
	if len(scalar.Scalars) != 2 {
		t.Fatalf("expected the single speed fanned out across 2 Vibrate features, got %d", len(scalar.Scalars))
	}
	for _, s := range scalar.Scalars {
		if s.Scalar != 0.9 {
			t.Fatalf("scalar = %+v, want Speed 0.9 fanned out", s)
		}
	}
}

func TestDispatchUpConvertsFleshlightLaunchFW12Cmd(t *testing.T) {
	h := &recordingHandler{}
	dev := newUpConvertTestDevice(h)

	_, err := dev.ParseMessage(context.Background(), &message.FleshlightLaunchFW12Cmd{Id: 1, DeviceIndex: 0, Position: 99, Speed: 50})
	if err != nil {
		t.Fatalf("ParseMessage(FleshlightLaunchFW12Cmd) returned error: %v", err)
	}
	linear, ok := h.lastCmd.(*message.LinearCmd)
	if !ok {
		t.Fatalf("handler received %T, want *message.LinearCmd", h.lastCmd)
	}
	if len(linear.Vectors) != 1 || linear.Vectors[0].Position != 1.0 {
		t.Fatalf("unexpected converted vector: %+v", linear.Vectors)
	}
}

func TestServerDeviceInfoDowngradesForLegacyClient(t *testing.T) {
	h := &recordingHandler{}
	dev := newUpConvertTestDevice(h)

	v3 := dev.Info(version.Spec3)
	if _, ok := v3.DeviceMessages.Get("ScalarCmd"); !ok {
		t.Fatalf("Spec3 Info() = %+v, want ScalarCmd preserved", v3.DeviceMessages)
	}

	v1 := dev.Info(version.Spec1)
	if _, ok := v1.DeviceMessages.Get("ScalarCmd"); ok {
		t.Fatalf("Spec1 Info() still advertises ScalarCmd: %+v", v1.DeviceMessages)
	}
	vibrate, ok := v1.DeviceMessages.Get("VibrateCmd")
	if !ok {
		t.Fatalf("Spec1 Info() = %+v, want ScalarCmd downgraded to VibrateCmd", v1.DeviceMessages)
	}
	if vibrate.FeatureCount != 2 {
		t.Fatalf("VibrateCmd.FeatureCount = %d, want 2 Vibrate actuators", vibrate.FeatureCount)
	}
}
