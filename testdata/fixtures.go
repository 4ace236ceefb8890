// Package testdata provides a recorded sensor session and gesture database for end-to-end tests.
package testdata

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/kinectosc/internal/sensor"
)

//go:embed gestures.yaml
var gesturesYAML []byte

// Tracking ids used by the sample session.
const (
	NearID = 72057594037928806
	FarID  = 72057594037928807
)

// Session is a sample session written to disk.
type Session struct {
	Recording string
	Gestures  string
}

// SessionRecords returns the sample session: two people in front of the
// sensor, the nearer one waving and leaning, the farther one swiping.
// Records are spaced stepMs apart.
func SessionRecords(stepMs int64) []sensor.Record {
	bodies := sensor.EmptyBodyFrame()
	bodies.Bodies[0] = sensor.TrackedBody(FarID, sensor.Point3D{X: 0.4, Z: 1.8})
	bodies.Bodies[4] = sensor.TrackedBody(NearID, sensor.Point3D{X: -0.1, Z: 1.1})

	color := sensor.ColorFrame{Width: 32, Height: 18, Pixels: make([]byte, 32*18*4)}
	for i := 0; i < len(color.Pixels); i += 4 {
		color.Pixels[i+2] = 200
		color.Pixels[i+3] = 255
	}

	var records []sensor.Record
	offset := int64(0)
	add := func(r sensor.Record) {
		r.OffsetMs = offset
		records = append(records, r)
		offset += stepMs
	}

	add(sensor.Record{Type: sensor.RecordColor, Color: &color})
	add(sensor.Record{Type: sensor.RecordBody, Body: &bodies})
	add(sensor.Record{Type: sensor.RecordGesture, Gesture: &sensor.GestureFrame{
		TrackingID: NearID,
		Discrete:   map[string]sensor.DiscreteResult{"Wave_Right": {Detected: true, Confidence: 0.87}},
	}})
	add(sensor.Record{Type: sensor.RecordGesture, Gesture: &sensor.GestureFrame{
		TrackingID: FarID,
		Discrete:   map[string]sensor.DiscreteResult{"Swipe_Left": {Detected: true, Confidence: 0.95}},
	}})
	add(sensor.Record{Type: sensor.RecordGesture, Gesture: &sensor.GestureFrame{
		TrackingID: NearID,
		Continuous: map[string]sensor.ContinuousResult{"Lean_Progress": {Progress: 0.42}},
	}})

	return records
}

// WriteSession writes the sample recording and gesture database into dir.
func WriteSession(dir string, stepMs int64) (Session, error) {
	s := Session{
		Recording: filepath.Join(dir, "session.jsonl"),
		Gestures:  filepath.Join(dir, "gestures.yaml"),
	}

	if err := os.WriteFile(s.Gestures, gesturesYAML, 0o644); err != nil {
		return Session{}, fmt.Errorf("write gesture database: %w", err)
	}

	f, err := os.Create(s.Recording)
	if err != nil {
		return Session{}, fmt.Errorf("create recording: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range SessionRecords(stepMs) {
		if err := enc.Encode(r); err != nil {
			return Session{}, fmt.Errorf("write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return Session{}, fmt.Errorf("write recording: %w", err)
	}

	return s, nil
}
