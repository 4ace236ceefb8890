package sensor

// TrackedBody returns a tracked body standing with its spine base at spineBase.
// Every joint is tracked and placed on a vertical line above the spine base.
func TrackedBody(trackingID uint64, spineBase Point3D) Body {
	body := Body{
		TrackingID: trackingID,
		Tracked:    true,
	}

	for i := 0; i < JointCount; i++ {
		body.Joints[i] = Joint{
			Position: Point3D{X: spineBase.X, Y: spineBase.Y + float64(i)*0.02, Z: spineBase.Z},
			State:    Tracked,
		}
	}
	body.Joints[SpineBase].Position = spineBase

	return body
}

// EmptyBodyFrame returns a frame with BodyCount untracked slots.
func EmptyBodyFrame() BodyFrame {
	return BodyFrame{Bodies: make([]Body, BodyCount)}
}
