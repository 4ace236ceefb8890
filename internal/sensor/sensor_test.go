package sensor

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/kinectosc/internal/gesture"
)

const epsilon = 1e-9

func TestPoint3D_Distance(t *testing.T) {
	tests := []struct {
		name string
		p, q Point3D
		want float64
	}{
		{"same point", Point3D{1, 2, 3}, Point3D{1, 2, 3}, 0},
		{"unit x", Point3D{}, Point3D{X: 1}, 1},
		{"3-4-5", Point3D{}, Point3D{X: 3, Y: 4}, 5},
		{"negative", Point3D{X: -1, Y: -2, Z: -2}, Point3D{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.Distance(tt.q)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestLatestFrame(t *testing.T) {
	t.Run("empty holder returns nothing", func(t *testing.T) {
		var h LatestFrame[int]
		if _, ok := h.Acquire(); ok {
			t.Error("expected no value")
		}
	})

	t.Run("returns newest value once", func(t *testing.T) {
		var h LatestFrame[int]
		h.Set(1)
		h.Set(2)

		v, ok := h.Acquire()
		if !ok || v != 2 {
			t.Errorf("Acquire() = %d, %v, want 2, true", v, ok)
		}
		if _, ok := h.Acquire(); ok {
			t.Error("second Acquire should report nothing new")
		}
	})

	t.Run("closed holder rejects values", func(t *testing.T) {
		var h LatestFrame[int]
		h.Set(1)
		h.Close()

		if err := h.Set(2); err != ErrClosed {
			t.Errorf("Set() after Close error = %v, want ErrClosed", err)
		}
		if _, ok := h.Acquire(); ok {
			t.Error("Acquire() after Close should report nothing")
		}
	})
}

func TestMockDevice_Delivery(t *testing.T) {
	m := NewMockDevice(nil)
	if err := m.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	frame := EmptyBodyFrame()
	frame.Bodies[2] = TrackedBody(42, Point3D{Z: 1.5})

	if !m.PushBody(frame) {
		t.Fatal("PushBody() = false on open device")
	}

	select {
	case <-m.BodyFrames():
	case <-time.After(time.Second):
		t.Fatal("no body arrival signalled")
	}

	got, ok := m.AcquireLatestBodyFrame()
	if !ok {
		t.Fatal("AcquireLatestBodyFrame() returned nothing")
	}
	if got.Bodies[2].TrackingID != 42 {
		t.Errorf("tracking id = %d, want 42", got.Bodies[2].TrackingID)
	}

	if _, ok := m.AcquireLatestBodyFrame(); ok {
		t.Error("frame should only be acquired once")
	}
}

func TestMockDevice_CloseWhileActive(t *testing.T) {
	m := NewMockDevice(nil)
	m.Open()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Fill the gesture buffer so the publisher blocks.
		for i := 0; i < gestureBuffer+4; i++ {
			m.PushGesture(GestureFrame{TrackingID: uint64(i + 1)})
		}
	}()

	time.Sleep(20 * time.Millisecond)

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blocked publisher not released by Close")
	}

	if m.PushBody(EmptyBodyFrame()) {
		t.Error("PushBody() after Close should report false")
	}
	if m.PushGesture(GestureFrame{TrackingID: 1}) {
		t.Error("PushGesture() after Close should report false")
	}

	// Drain: channels must be closed.
	for range m.GestureFrames() {
	}
	if _, ok := <-m.BodyFrames(); ok {
		t.Error("body channel should be closed")
	}
}

func TestMockDevice_Bindings(t *testing.T) {
	m := NewMockDevice(nil)
	m.BindGestureSource(1, 7)
	m.BindGestureSource(1, 0)

	got := m.Bindings()
	want := []Binding{{Slot: 1, TrackingID: 7}, {Slot: 1, TrackingID: 0}}
	if len(got) != len(want) {
		t.Fatalf("got %d bindings, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("binding %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func writeRecording(t *testing.T, records []Record) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create recording: %v", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("failed to write record: %v", err)
		}
	}
	return path
}

func TestReplayDevice_OpenMissingRecording(t *testing.T) {
	d := NewReplayDevice(ReplayConfig{Path: filepath.Join(t.TempDir(), "missing.jsonl")})

	err := d.Open()
	if err == nil {
		t.Fatal("expected error for missing recording")
	}
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("error = %v, want ErrNoDevice", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestReplayDevice_Playback(t *testing.T) {
	frame := EmptyBodyFrame()
	frame.Bodies[0] = TrackedBody(11, Point3D{Z: 1})

	path := writeRecording(t, []Record{
		{Type: RecordBody, OffsetMs: 0, Body: &frame},
		{Type: RecordGesture, OffsetMs: 0, Gesture: &GestureFrame{
			TrackingID: 99,
			Discrete:   map[string]DiscreteResult{"wave": {Detected: true, Confidence: 0.9}},
		}},
		{Type: RecordGesture, OffsetMs: 0, Gesture: &GestureFrame{
			TrackingID: 11,
			Discrete:   map[string]DiscreteResult{"wave": {Detected: true, Confidence: 0.8}},
		}},
	})

	d := NewReplayDevice(ReplayConfig{Path: path, Speed: 0})
	d.BindGestureSource(0, 11)

	if err := d.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer d.Close()

	select {
	case <-d.BodyFrames():
	case <-time.After(time.Second):
		t.Fatal("no body frame replayed")
	}

	select {
	case g := <-d.GestureFrames():
		if g.TrackingID != 11 {
			t.Errorf("gesture tracking id = %d, want 11 (unbound ids are not evaluated)", g.TrackingID)
		}
		if !g.TrackingIDValid {
			t.Error("replayed gesture frame should carry a valid tracking id")
		}
	case <-time.After(time.Second):
		t.Fatal("no gesture frame replayed")
	}
}

func TestReplayDevice_LoadGestureDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gestures.yaml")
	content := "gestures:\n  - name: wave\n    kind: discrete\n  - name: swipe_progress\n    kind: continuous\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write database: %v", err)
	}

	d := NewReplayDevice(ReplayConfig{})
	defs, err := d.LoadGestureDatabase(path)
	if err != nil {
		t.Fatalf("LoadGestureDatabase() error = %v", err)
	}

	want := []gesture.Definition{
		{Name: "wave", Kind: gesture.KindDiscrete},
		{Name: "swipe_progress", Kind: gesture.KindContinuous},
	}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i := range want {
		if defs[i] != want[i] {
			t.Errorf("definition %d = %+v, want %+v", i, defs[i], want[i])
		}
	}
}
