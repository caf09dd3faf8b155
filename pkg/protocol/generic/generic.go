// Package generic implements the shared steady-state command
// translation most vendor protocols compose into their own Handler: a
// per-feature last-sent cache that suppresses redundant hardware writes,
// and the ScalarCmd/LinearCmd/RotateCmd -> DeviceWriteCmd bookkeeping
// every actuator-style protocol needs (spec.md §4.4 "Handler").
//
// The cache is keyed by feature index and actuator kind, and each
// Handler instance, constructed once per connected device by an
// Initializer, owns its own cache — but a concurrent map is
// still the right tool here because a handler's HandleCommand may be
// invoked concurrently with a protocol-driven notification read
// (spec.md §5), matching how github.com/cornelk/hashmap is used for the
// live device map in srgg-blecli's scanner.
package generic

import (
	"fmt"

	"github.com/cornelk/hashmap"

	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/metrics"
)

// WriteCmd is one hardware write a protocol Handler emits after
// translating a command against the last-sent cache.
type WriteCmd struct {
	FeatureIndex uint32
	Value        float64
	ActuatorType string
}

// lastSentKey packs a feature index and its actuator kind into one map
// key so a device with both vibrate and rotate features at the same
// index doesn't alias.
type lastSentKey struct {
	index uint32
	kind  string
}

// LastSentCache tracks the most recent scalar value written to each
// feature, so a repeated identical command is a no-op (spec.md §4.4
// idempotence rule).
type LastSentCache struct {
	values *hashmap.Map[lastSentKey, float64]
}

// NewLastSentCache returns an empty cache.
func NewLastSentCache() *LastSentCache {
	return &LastSentCache{values: hashmap.New[lastSentKey, float64]()}
}

// Apply compares value against the cached value for (index, kind) and
// returns ok=true (meaning "emit a write") only when it differs, or has
// never been set. It updates the cache either way — a hardware write
// that fails upstream is still the last value the client asked for, so
// a resend of the failed value is diffed against itself, matching
// original_source's handler-level idempotence rather than retry logic.
func (c *LastSentCache) Apply(index uint32, kind string, value float64) (ok bool) {
	key := lastSentKey{index: index, kind: kind}
	if prev, found := c.values.Get(key); found && prev == value {
		return false
	}
	c.values.Set(key, value)
	return true
}

// Reset clears the cache for every feature. Vendor handlers call it on
// StopDeviceCmd, so the first command after a stop is written even when
// it repeats the value sent before the stop (spec.md §9).
func (c *LastSentCache) Reset() {
	c.values = hashmap.New[lastSentKey, float64]()
}

// TranslateScalarCmd diffs each subcommand in cmd against the cache and
// attribute feature count, returning the writes that must actually reach
// hardware. protocol names the caller for WritesSuppressed's label.
func TranslateScalarCmd(cache *LastSentCache, featureCount uint32, protocol string, cmd *message.ScalarCmd) ([]WriteCmd, error) {
	writes := make([]WriteCmd, 0, len(cmd.Scalars))
	for _, s := range cmd.Scalars {
		if s.Index >= featureCount {
			return nil, message.DeviceFeatureIndexError(cmd.DeviceIndex, s.Index, featureCount)
		}
		if cache.Apply(s.Index, s.ActuatorType, s.Scalar) {
			writes = append(writes, WriteCmd{FeatureIndex: s.Index, Value: s.Scalar, ActuatorType: s.ActuatorType})
		} else {
			metrics.WritesSuppressed.WithLabelValues(protocol).Inc()
		}
	}
	return writes, nil
}

// TranslateLinearCmd diffs each LinearCmd vector against the cache,
// keyed under the synthetic "Position" actuator kind.
func TranslateLinearCmd(cache *LastSentCache, featureCount uint32, protocol string, cmd *message.LinearCmd) ([]WriteCmd, error) {
	writes := make([]WriteCmd, 0, len(cmd.Vectors))
	for _, v := range cmd.Vectors {
		if v.Index >= featureCount {
			return nil, message.DeviceFeatureIndexError(cmd.DeviceIndex, v.Index, featureCount)
		}
		if cache.Apply(v.Index, "Position", v.Position) {
			writes = append(writes, WriteCmd{FeatureIndex: v.Index, Value: v.Position, ActuatorType: "Position"})
		} else {
			metrics.WritesSuppressed.WithLabelValues(protocol).Inc()
		}
	}
	return writes, nil
}

// TranslateRotateCmd diffs each RotateCmd rotation against the cache.
// Clockwise sign is folded into the cached value (negative = counter-
// clockwise) so a direction reversal at the same speed is not
// suppressed as a duplicate.
func TranslateRotateCmd(cache *LastSentCache, featureCount uint32, protocol string, cmd *message.RotateCmd) ([]WriteCmd, error) {
	writes := make([]WriteCmd, 0, len(cmd.Rotations))
	for _, r := range cmd.Rotations {
		if r.Index >= featureCount {
			return nil, message.DeviceFeatureIndexError(cmd.DeviceIndex, r.Index, featureCount)
		}
		signed := r.Speed
		if !r.Clockwise {
			signed = -signed
		}
		if cache.Apply(r.Index, "Rotate", signed) {
			writes = append(writes, WriteCmd{FeatureIndex: r.Index, Value: r.Speed, ActuatorType: fmt.Sprintf("Rotate:%v", r.Clockwise)})
		} else {
			metrics.WritesSuppressed.WithLabelValues(protocol).Inc()
		}
	}
	return writes, nil
}
