// Package sensor provides body sensor interfaces and frame types for gesture forwarding.
package sensor

import "math"

// BodyCount is the number of bodies a Kinect V2 sensor tracks simultaneously.
const BodyCount = 6

// Joint type indices following the Kinect V2 JointType convention.
const (
	SpineBase     = 0
	SpineMid      = 1
	Neck          = 2
	Head          = 3
	ShoulderLeft  = 4
	ElbowLeft     = 5
	WristLeft     = 6
	HandLeft      = 7
	ShoulderRight = 8
	ElbowRight    = 9
	WristRight    = 10
	HandRight     = 11
	HipLeft       = 12
	KneeLeft      = 13
	AnkleLeft     = 14
	FootLeft      = 15
	HipRight      = 16
	KneeRight     = 17
	AnkleRight    = 18
	FootRight     = 19
	SpineShoulder = 20
	HandTipLeft   = 21
	ThumbLeft     = 22
	HandTipRight  = 23
	ThumbRight    = 24
	JointCount    = 25
)

// TrackingState is the confidence the sensor has in a joint position.
type TrackingState int

const (
	// NotTracked means the joint position is unknown.
	NotTracked TrackingState = iota
	// Inferred means the joint position was estimated from neighbouring joints.
	Inferred
	// Tracked means the joint position was observed directly.
	Tracked
)

// String returns the lower case name of the state.
func (s TrackingState) String() string {
	switch s {
	case Tracked:
		return "tracked"
	case Inferred:
		return "inferred"
	default:
		return "not_tracked"
	}
}

// Point3D is a position in camera space, in meters.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between two points.
func (p Point3D) Distance(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Joint is a single skeletal joint sample.
type Joint struct {
	Position Point3D       `json:"position"`
	State    TrackingState `json:"state"`
}

// Body is one slot of a body frame. TrackingID is only meaningful while Tracked is true.
type Body struct {
	TrackingID uint64            `json:"tracking_id"`
	Tracked    bool              `json:"tracked"`
	Joints     [JointCount]Joint `json:"joints"`
}

// BodyFrame is one skeletal snapshot for every body slot.
type BodyFrame struct {
	// RelativeTimeMs is the sensor timestamp of the frame.
	RelativeTimeMs int64  `json:"relative_time_ms"`
	Bodies         []Body `json:"bodies"`
}
