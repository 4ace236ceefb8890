package sensor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/kinectosc/internal/gesture"
)

// Record types in a recording file.
const (
	RecordBody    = "body"
	RecordGesture = "gesture"
	RecordColor   = "color"
)

// maxRecordSize bounds a single line of a recording. Color records carry a
// full base64 image.
const maxRecordSize = 64 << 20

// Record is one line of a recording file.
type Record struct {
	Type string `json:"type"`
	// OffsetMs is the time since the start of the recording.
	OffsetMs int64         `json:"offset_ms"`
	Body     *BodyFrame    `json:"body,omitempty"`
	Gesture  *GestureFrame `json:"gesture,omitempty"`
	Color    *ColorFrame   `json:"color,omitempty"`
}

// ReplayConfig holds options for a ReplayDevice.
type ReplayConfig struct {
	// Path is the recording file, one JSON Record per line.
	Path string
	// Speed scales playback. 1 is real time, 0 replays as fast as the
	// consumer accepts frames.
	Speed float64
	// Loop restarts the recording when it ends.
	Loop bool
}

// ReplayDevice implements Device by playing back a recorded session.
// Gesture records are only delivered for tracking ids currently bound to a
// slot, as a live sensor only evaluates bound sources.
type ReplayDevice struct {
	*streams

	config ReplayConfig
	file   *os.File
	mu     sync.Mutex
	bound  [BodyCount]uint64
	wg     sync.WaitGroup
	opened bool
}

// NewReplayDevice creates a replay device. The recording is opened by Open.
func NewReplayDevice(config ReplayConfig) *ReplayDevice {
	if config.Speed < 0 {
		config.Speed = 0
	}
	return &ReplayDevice{
		streams: newStreams(),
		config:  config,
	}
}

// Open opens the recording and starts playback.
func (d *ReplayDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opened {
		return nil
	}

	select {
	case <-d.done:
		return ErrClosed
	default:
	}

	f, err := os.Open(d.config.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	d.file = f
	d.opened = true
	d.wg.Add(1)
	go d.play()

	return nil
}

// Close stops playback and closes the frame channels.
func (d *ReplayDevice) Close() error {
	d.shutdown()
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.opened = false
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// BodyCount returns BodyCount.
func (d *ReplayDevice) BodyCount() int {
	return BodyCount
}

// gestureDatabaseFile is the on-disk layout of a replay gesture database.
type gestureDatabaseFile struct {
	Gestures []gesture.Definition `yaml:"gestures"`
}

// LoadGestureDatabase reads a YAML list of gesture definitions.
func (d *ReplayDevice) LoadGestureDatabase(path string) ([]gesture.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gesture database: %w", err)
	}

	var db gestureDatabaseFile
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse gesture database: %w", err)
	}

	return db.Gestures, nil
}

// BindGestureSource records which tracking id each slot evaluates.
func (d *ReplayDevice) BindGestureSource(slot int, trackingID uint64) {
	if slot < 0 || slot >= BodyCount {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound[slot] = trackingID
}

func (d *ReplayDevice) isBound(trackingID uint64) bool {
	if trackingID == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.bound {
		if id == trackingID {
			return true
		}
	}
	return false
}

// play reads the recording until it ends or the device closes.
func (d *ReplayDevice) play() {
	defer d.wg.Done()

	for {
		if err := d.playOnce(); err != nil {
			log.Printf("Replay stopped: %v", err)
			return
		}
		if !d.config.Loop {
			log.Println("Replay finished")
			return
		}
		if _, err := d.file.Seek(0, io.SeekStart); err != nil {
			log.Printf("Replay rewind failed: %v", err)
			return
		}
	}
}

// playOnce plays the recording from the current file position.
func (d *ReplayDevice) playOnce() error {
	scanner := bufio.NewScanner(d.file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	start := time.Now()
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		if !d.wait(start, rec.OffsetMs) {
			return nil
		}

		if !d.emit(rec) {
			return nil
		}
	}

	return scanner.Err()
}

// wait sleeps until offsetMs after start, scaled by Speed.
// Returns false if the device closed while waiting.
func (d *ReplayDevice) wait(start time.Time, offsetMs int64) bool {
	if d.config.Speed == 0 {
		select {
		case <-d.done:
			return false
		default:
			return true
		}
	}

	due := start.Add(time.Duration(float64(offsetMs)/d.config.Speed) * time.Millisecond)
	delay := time.Until(due)
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-d.done:
		return false
	case <-timer.C:
		return true
	}
}

// emit publishes rec. Returns false once the device is closed.
func (d *ReplayDevice) emit(rec Record) bool {
	switch rec.Type {
	case RecordBody:
		if rec.Body == nil {
			return true
		}
		return d.publishBody(*rec.Body)

	case RecordGesture:
		if rec.Gesture == nil || !d.isBound(rec.Gesture.TrackingID) {
			return true
		}
		frame := *rec.Gesture
		frame.TrackingIDValid = true
		return d.publishGesture(frame)

	case RecordColor:
		if rec.Color == nil {
			return true
		}
		d.publishColor(*rec.Color)
		select {
		case <-d.done:
			return false
		default:
			return true
		}
	}

	return true
}
