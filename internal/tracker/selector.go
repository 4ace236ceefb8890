package tracker

import "github.com/ayusman/kinectosc/internal/sensor"

// Closest-person selection defaults.
const (
	// DefaultMaxDistance is the maximum spine-base distance, in meters, for a
	// body to be selected.
	DefaultMaxDistance = 2.0
	// ReferenceJoint is the joint compared against the reference point.
	ReferenceJoint = sensor.SpineBase
)

// SelectorConfig configures closest-person selection.
type SelectorConfig struct {
	// Reference is the point distances are measured from. The zero value is
	// the camera-space origin.
	Reference sensor.Point3D
	// MaxDistance is an exclusive upper bound on the selected distance.
	MaxDistance float64
}

// DefaultSelectorConfig returns a SelectorConfig measuring from the origin
// with DefaultMaxDistance.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{MaxDistance: DefaultMaxDistance}
}

// SelectClosest returns the slot of the tracked body whose reference joint
// is tracked and nearest cfg.Reference, strictly closer than cfg.MaxDistance.
// On equal distances the earlier slot wins. ok is false if no body qualifies.
func SelectClosest(bodies []sensor.Body, cfg SelectorConfig) (slot int, ok bool) {
	slot = -1
	closest := cfg.MaxDistance

	for i := range bodies {
		b := &bodies[i]
		if !b.Tracked {
			continue
		}

		joint := b.Joints[ReferenceJoint]
		if joint.State != sensor.Tracked {
			continue
		}

		d := joint.Position.Distance(cfg.Reference)
		if d < closest {
			closest = d
			slot = i
		}
	}

	return slot, slot >= 0
}
