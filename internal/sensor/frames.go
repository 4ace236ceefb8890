package sensor

// ColorFrame is a raw color image in BGRA byte order.
type ColorFrame struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Pixels         []byte `json:"pixels"`
	RelativeTimeMs int64  `json:"relative_time_ms"`
}

// DiscreteResult is the per-frame result of a discrete gesture.
type DiscreteResult struct {
	Detected   bool    `json:"detected"`
	Confidence float32 `json:"confidence"`
}

// ContinuousResult is the per-frame result of a continuous gesture.
type ContinuousResult struct {
	Progress float32 `json:"progress"`
}

// GestureFrame is one evaluation of every enabled gesture for a single tracking id.
type GestureFrame struct {
	TrackingID uint64 `json:"tracking_id"`
	// TrackingIDValid reports whether the originating source was bound to a
	// tracked body when the frame was produced.
	TrackingIDValid bool                        `json:"tracking_id_valid"`
	Discrete        map[string]DiscreteResult   `json:"discrete,omitempty"`
	Continuous      map[string]ContinuousResult `json:"continuous,omitempty"`
}
