package sensor

import (
	"sync"

	"github.com/ayusman/kinectosc/internal/gesture"
)

// Binding records a BindGestureSource call on a MockDevice.
type Binding struct {
	Slot       int
	TrackingID uint64
}

// MockDevice is a test implementation of the Device interface.
// Frames are pushed by the test and delivered on the device channels.
type MockDevice struct {
	*streams

	gestures []gesture.Definition
	openErr  error
	mu       sync.Mutex
	open     bool
	bindings []Binding
}

// NewMockDevice creates a MockDevice whose gesture database holds gestures.
func NewMockDevice(gestures []gesture.Definition) *MockDevice {
	return &MockDevice{
		streams:  newStreams(),
		gestures: gestures,
	}
}

// SetOpenError makes Open fail with err.
func (m *MockDevice) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// Open marks the device as open or returns the configured error.
func (m *MockDevice) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	return nil
}

// Close closes the frame channels. Later pushes are ignored.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()

	m.shutdown()
	return nil
}

// IsOpen reports whether Open succeeded and Close has not been called.
func (m *MockDevice) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// BodyCount returns BodyCount.
func (m *MockDevice) BodyCount() int {
	return BodyCount
}

// LoadGestureDatabase returns the preset gestures regardless of path.
func (m *MockDevice) LoadGestureDatabase(path string) ([]gesture.Definition, error) {
	out := make([]gesture.Definition, len(m.gestures))
	copy(out, m.gestures)
	return out, nil
}

// BindGestureSource records the binding.
func (m *MockDevice) BindGestureSource(slot int, trackingID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = append(m.bindings, Binding{Slot: slot, TrackingID: trackingID})
}

// Bindings returns every binding recorded so far.
func (m *MockDevice) Bindings() []Binding {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Binding, len(m.bindings))
	copy(out, m.bindings)
	return out
}

// PushBody publishes a body frame. Returns false after Close.
func (m *MockDevice) PushBody(f BodyFrame) bool {
	return m.publishBody(f)
}

// PushGesture publishes a gesture frame. Returns false after Close.
func (m *MockDevice) PushGesture(f GestureFrame) bool {
	return m.publishGesture(f)
}

// PushColor publishes a color frame. Returns false after Close or when the
// consumer is behind.
func (m *MockDevice) PushColor(f ColorFrame) bool {
	return m.publishColor(f)
}

var (
	_ Device = (*MockDevice)(nil)
	_ Device = (*ReplayDevice)(nil)
)
