// Package tracker maintains tracked bodies and binds their tracking ids to gesture sources.
package tracker

import (
	"fmt"

	"github.com/ayusman/kinectosc/internal/gesture"
	"github.com/ayusman/kinectosc/internal/sensor"
)

// FrameAcquirer returns the newest body frame without blocking.
type FrameAcquirer interface {
	AcquireLatestBodyFrame() (sensor.BodyFrame, bool)
}

// Options holds tracker behaviour switches.
type Options struct {
	// KeepStaleIDs leaves the last tracking id bound to a slot whose body is
	// lost. By default the slot is unbound.
	KeepStaleIDs bool
}

// Tracker owns the body array and the gesture source of every slot.
// It is not safe for concurrent use; the fusion stage drives it from one goroutine.
type Tracker struct {
	bodies  []sensor.Body
	sources []*gesture.Source
	opts    Options
	ticks   uint64
}

// New creates a tracker with one body slot per source.
func New(sources []*gesture.Source, opts Options) (*Tracker, error) {
	for i, s := range sources {
		if s == nil || s.Slot() != i {
			return nil, fmt.Errorf("gesture source %d is missing or bound to another slot", i)
		}
	}

	return &Tracker{
		bodies:  make([]sensor.Body, len(sources)),
		sources: sources,
		opts:    opts,
	}, nil
}

// Tick acquires the latest body frame and applies it.
// Returns false when no new frame was available.
func (t *Tracker) Tick(r FrameAcquirer) bool {
	frame, ok := r.AcquireLatestBodyFrame()
	if !ok {
		return false
	}
	t.Update(frame)
	return true
}

// Update refreshes the body array from frame and rebinds gesture sources.
// Slots beyond the frame's body count are reset to untracked.
func (t *Tracker) Update(frame sensor.BodyFrame) {
	n := copy(t.bodies, frame.Bodies)
	for i := n; i < len(t.bodies); i++ {
		t.bodies[i] = sensor.Body{}
	}

	for i := range t.bodies {
		b := &t.bodies[i]
		switch {
		case b.Tracked:
			t.sources[i].SetTrackingID(b.TrackingID)
		case !t.opts.KeepStaleIDs:
			t.sources[i].SetTrackingID(0)
		}
	}

	t.ticks++
}

// Sources returns the gesture sources, indexed by slot.
func (t *Tracker) Sources() []*gesture.Source {
	return t.sources
}

// Snapshot returns a copy of the current bodies and bindings.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Bodies:   make([]sensor.Body, len(t.bodies)),
		Bindings: make([]uint64, len(t.sources)),
		Tick:     t.ticks,
	}
	copy(s.Bodies, t.bodies)
	for i, src := range t.sources {
		s.Bindings[i] = src.TrackingID()
	}
	return s
}

// Snapshot is the fused body state for one tick, passed by value to dispatch.
type Snapshot struct {
	Bodies []sensor.Body `json:"bodies"`
	// Bindings holds the tracking id bound to each slot's gesture source.
	Bindings []uint64 `json:"bindings"`
	Tick     uint64   `json:"tick"`
}

// SlotFor returns the slot whose gesture source is bound to trackingID.
func (s Snapshot) SlotFor(trackingID uint64) (int, bool) {
	if trackingID == 0 {
		return -1, false
	}
	for i, id := range s.Bindings {
		if id == trackingID {
			return i, true
		}
	}
	return -1, false
}

// Closest runs closest-person selection over the snapshot's bodies.
func (s Snapshot) Closest(cfg SelectorConfig) (int, bool) {
	return SelectClosest(s.Bodies, cfg)
}

// TrackedCount returns the number of tracked bodies.
func (s Snapshot) TrackedCount() int {
	n := 0
	for i := range s.Bodies {
		if s.Bodies[i].Tracked {
			n++
		}
	}
	return n
}
