package sensor

import (
	"errors"
	"sync"

	"github.com/ayusman/kinectosc/internal/gesture"
)

var (
	// ErrNoDevice is returned when no sensor device can be opened.
	ErrNoDevice = errors.New("sensor device not available")
	// ErrClosed is returned when using a device or holder after Close.
	ErrClosed = errors.New("sensor closed")
	// ErrNotOpen is returned when reading from a device that was never opened.
	ErrNotOpen = errors.New("sensor not open")
)

// Device defines the interface for body sensor implementations.
//
// Frame arrival is signalled on three channels that are closed when the device
// closes. Body arrivals carry no payload; the consumer fetches the frame with
// AcquireLatestBodyFrame, which never blocks.
type Device interface {
	// Open starts frame delivery. Returns ErrNoDevice if the sensor is absent.
	Open() error

	// Close stops every reader and closes the frame channels. Safe to call
	// more than once and while readers are active.
	Close() error

	// BodyCount returns the maximum number of simultaneously tracked bodies.
	BodyCount() int

	// LoadGestureDatabase reads trained gesture definitions from path.
	LoadGestureDatabase(path string) ([]gesture.Definition, error)

	ColorFrames() <-chan ColorFrame
	BodyFrames() <-chan struct{}
	GestureFrames() <-chan GestureFrame

	// AcquireLatestBodyFrame returns the newest body frame not yet acquired.
	AcquireLatestBodyFrame() (BodyFrame, bool)

	// BindGestureSource points the gesture evaluator of slot at trackingID.
	// A trackingID of 0 unbinds the slot.
	BindGestureSource(slot int, trackingID uint64)
}

// Channel buffer sizes for frame delivery.
const (
	colorBuffer   = 2
	bodyBuffer    = 1
	gestureBuffer = 16
)

// streams implements the delivery half of Device shared by every implementation.
type streams struct {
	color   chan ColorFrame
	body    chan struct{}
	gesture chan GestureFrame
	latest  LatestFrame[BodyFrame]

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func newStreams() *streams {
	return &streams{
		color:   make(chan ColorFrame, colorBuffer),
		body:    make(chan struct{}, bodyBuffer),
		gesture: make(chan GestureFrame, gestureBuffer),
		done:    make(chan struct{}),
	}
}

func (s *streams) ColorFrames() <-chan ColorFrame     { return s.color }
func (s *streams) BodyFrames() <-chan struct{}        { return s.body }
func (s *streams) GestureFrames() <-chan GestureFrame { return s.gesture }

func (s *streams) AcquireLatestBodyFrame() (BodyFrame, bool) {
	return s.latest.Acquire()
}

// publishColor drops the frame when the consumer is behind.
func (s *streams) publishColor(f ColorFrame) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.color <- f:
	case <-s.done:
		return false
	default:
	}
	return true
}

// publishBody stores the frame and signals arrival. Pending signals are
// coalesced since the consumer always reads the newest frame.
func (s *streams) publishBody(f BodyFrame) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	if err := s.latest.Set(f); err != nil {
		return false
	}

	select {
	case s.body <- struct{}{}:
	case <-s.done:
		return false
	default:
	}
	return true
}

// publishGesture blocks until the consumer accepts the frame or the device closes.
func (s *streams) publishGesture(f GestureFrame) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.gesture <- f:
		return true
	case <-s.done:
		return false
	}
}

// shutdown unblocks pending publishers, then closes the channels once no
// publisher holds the read lock.
func (s *streams) shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.latest.Close()

		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		close(s.color)
		close(s.body)
		close(s.gesture)
	})
}
