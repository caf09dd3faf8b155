package generic

import (
	"testing"

	"github.com/commatea/hapticbridge/pkg/message"
)

func TestLastSentCacheApply(t *testing.T) {
	cache := NewLastSentCache()

	if ok := cache.Apply(0, "Vibrate", 0.5); !ok {
		t.Fatal("expected first write to a feature to be emitted")
	}
	if ok := cache.Apply(0, "Vibrate", 0.5); ok {
		t.Fatal("expected identical repeat to be suppressed")
	}
	if ok := cache.Apply(0, "Vibrate", 0.6); !ok {
		t.Fatal("expected changed value to be emitted")
	}
	if ok := cache.Apply(0, "Rotate", 0.5); !ok {
		t.Fatal("expected a different actuator kind at the same index to be treated independently")
	}
}

func TestLastSentCacheReset(t *testing.T) {
	cache := NewLastSentCache()
	cache.Apply(0, "Vibrate", 0.5)
	cache.Reset()
	if ok := cache.Apply(0, "Vibrate", 0.5); !ok {
		t.Fatal("expected reset cache to re-emit a previously suppressed value")
	}
}

func TestTranslateScalarCmd(t *testing.T) {
	cache := NewLastSentCache()
	cmd := &message.ScalarCmd{Id: 1, DeviceIndex: 0, Scalars: []message.ScalarSubcommand{
		{Index: 0, Scalar: 0.5, ActuatorType: "Vibrate"},
	}}

	writes, err := TranslateScalarCmd(cache, 1, "test", cmd)
	if err != nil {
		t.Fatalf("TranslateScalarCmd() error = %v", err)
	}
	if len(writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(writes))
	}

	// Resending the identical command should suppress the write.
	writes, err = TranslateScalarCmd(cache, 1, "test", cmd)
	if err != nil {
		t.Fatalf("TranslateScalarCmd() error = %v", err)
	}
	if len(writes) != 0 {
		t.Fatalf("expected repeat command to be suppressed, got %d writes", len(writes))
	}
}

func TestTranslateScalarCmdFeatureIndexOutOfRange(t *testing.T) {
	cache := NewLastSentCache()
	cmd := &message.ScalarCmd{Id: 1, Scalars: []message.ScalarSubcommand{{Index: 5, Scalar: 0.5}}}
	if _, err := TranslateScalarCmd(cache, 1, "test", cmd); err == nil {
		t.Fatal("expected error for feature index beyond device's feature count")
	}
}

func TestTranslateRotateCmdDirectionReversalNotSuppressed(t *testing.T) {
	cache := NewLastSentCache()
	cw := &message.RotateCmd{Id: 1, Rotations: []message.RotationSubcommand{{Index: 0, Speed: 0.5, Clockwise: true}}}
	ccw := &message.RotateCmd{Id: 1, Rotations: []message.RotationSubcommand{{Index: 0, Speed: 0.5, Clockwise: false}}}

	writes, err := TranslateRotateCmd(cache, 1, "test", cw)
	if err != nil || len(writes) != 1 {
		t.Fatalf("initial rotate write failed: writes=%d err=%v", len(writes), err)
	}
	writes, err = TranslateRotateCmd(cache, 1, "test", ccw)
	if err != nil {
		t.Fatalf("TranslateRotateCmd() error = %v", err)
	}
	if len(writes) != 1 {
		t.Fatal("expected a direction reversal at the same speed to still emit a write")
	}
}

func TestTranslateLinearCmd(t *testing.T) {
	cache := NewLastSentCache()
	cmd := &message.LinearCmd{Id: 1, Vectors: []message.VectorSubcommand{{Index: 0, Duration: 500, Position: 0.9}}}

	writes, err := TranslateLinearCmd(cache, 1, "test", cmd)
	if err != nil {
		t.Fatalf("TranslateLinearCmd() error = %v", err)
	}
	if len(writes) != 1 || writes[0].ActuatorType != "Position" {
		t.Fatalf("unexpected writes: %+v", writes)
	}
}
