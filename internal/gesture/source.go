package gesture

import (
	"fmt"
	"sync"
)

// Binder mirrors a source's tracking id into the sensor's gesture evaluator.
type Binder interface {
	BindGestureSource(slot int, trackingID uint64)
}

// Source evaluates gestures for the body in one slot.
// A tracking id of 0 means the slot has no body bound.
type Source struct {
	slot       int
	db         *Database
	binder     Binder
	trackingID uint64
	disabled   map[string]bool
	mu         sync.RWMutex
}

// NewSource creates a source for slot with every gesture in db enabled.
// binder may be nil.
func NewSource(slot int, db *Database, binder Binder) *Source {
	return &Source{
		slot:     slot,
		db:       db,
		binder:   binder,
		disabled: make(map[string]bool),
	}
}

// NewSources creates one source per slot.
func NewSources(count int, db *Database, binder Binder) []*Source {
	sources := make([]*Source, count)
	for i := range sources {
		sources[i] = NewSource(i, db, binder)
	}
	return sources
}

// Slot returns the body slot index of the source.
func (s *Source) Slot() int {
	return s.slot
}

// TrackingID returns the currently bound tracking id.
func (s *Source) TrackingID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trackingID
}

// SetTrackingID binds the source to a tracking id. Unchanged ids are not
// re-sent to the binder.
func (s *Source) SetTrackingID(id uint64) {
	s.mu.Lock()
	changed := s.trackingID != id
	s.trackingID = id
	binder := s.binder
	s.mu.Unlock()

	if changed && binder != nil {
		binder.BindGestureSource(s.slot, id)
	}
}

// Valid reports whether the source is bound to a body.
func (s *Source) Valid() bool {
	return s.TrackingID() != 0
}

// SetEnabled enables or disables a gesture for this source.
func (s *Source) SetEnabled(name string, enabled bool) error {
	if _, ok := s.db.Lookup(name); !ok {
		return fmt.Errorf("gesture %q not in database", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		delete(s.disabled, name)
	} else {
		s.disabled[name] = true
	}
	return nil
}

// Enabled reports whether a gesture is evaluated by this source.
func (s *Source) Enabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.disabled[name]
}

// Database returns the definitions the source was bound to.
func (s *Source) Database() *Database {
	return s.db
}
