// Package app provides the fusion stage that turns sensor frames into forwarded gesture messages.
package app

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/kinectosc/internal/capture"
	"github.com/ayusman/kinectosc/internal/dispatch"
	"github.com/ayusman/kinectosc/internal/forward"
	"github.com/ayusman/kinectosc/internal/gesture"
	"github.com/ayusman/kinectosc/internal/sensor"
	"github.com/ayusman/kinectosc/internal/store"
	"github.com/ayusman/kinectosc/internal/tracker"
)

// SendTimeout bounds the write of one message batch.
const SendTimeout = 100 * time.Millisecond

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Device   sensor.Device
	Gestures string // gesture database path, read through Device
	Target   string // "a.b.c.d:port"; overrides the persisted target when set
	Dispatch dispatch.Config
	Tracker  tracker.Options
}

// GestureEvent describes one forwarded batch.
type GestureEvent struct {
	Messages []dispatch.Message `json:"messages"`
	Target   string             `json:"target"`
	Time     time.Time          `json:"time"`
}

// Status is a point-in-time view of the application for the control surfaces.
type Status struct {
	Enabled       bool              `json:"enabled"`
	Running       bool              `json:"running"`
	Target        string            `json:"target"`
	TargetSet     bool              `json:"target_set"`
	TrackedBodies int               `json:"tracked_bodies"`
	Selected      int               `json:"selected"`
	BodyTicks     uint64            `json:"body_ticks"`
	ColorFrames   uint64            `json:"color_frames"`
	GestureFrames map[string]uint64 `json:"gesture_frames"`
	Forwarder     forward.Stats     `json:"forwarder"`
	LastGesture   string            `json:"last_gesture"`
}

// App is the main application that wires the sensor to the forwarder.
type App struct {
	config     Config
	device     sensor.Device
	database   *gesture.Database
	tracker    *tracker.Tracker
	dispatcher *dispatch.Dispatcher
	forwarder  *forward.Forwarder
	presenter  *capture.Presenter
	catalog    map[string]*store.Gesture

	mu          sync.RWMutex
	enabled     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	snapshot    tracker.Snapshot
	outcomes    map[dispatch.Outcome]uint64
	colorFrames uint64
	lastGesture string

	listenersMu      sync.RWMutex
	gestureListeners []func(GestureEvent)
	bodyListeners    []func(tracker.Snapshot)
	targetListeners  []func(forward.Target)
}

// New creates a new App instance with the given configuration.
// The device is opened by Start.
func New(config Config) *App {
	if config.Dispatch.Mode == "" {
		config.Dispatch = dispatch.DefaultConfig()
	}

	return &App{
		config:    config,
		device:    config.Device,
		forwarder: forward.NewForwarder(),
		presenter: capture.NewPresenter(),
		enabled:   true,
		outcomes:  make(map[dispatch.Outcome]uint64),
		snapshot:  tracker.Snapshot{},
	}
}

// Start opens the device, loads the gesture database and begins the fusion loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}
	if a.device == nil {
		return sensor.ErrNoDevice
	}

	if err := a.device.Open(); err != nil {
		return fmt.Errorf("failed to open sensor: %w", err)
	}

	if err := a.load(); err != nil {
		a.device.Close()
		return err
	}

	a.restoreSettings()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Printf("Fusion stage started with %d gestures on %d body slots", a.database.Len(), a.device.BodyCount())
	return nil
}

// load builds the gesture database, sources, tracker and dispatcher.
func (a *App) load() error {
	db, err := gesture.Load(a.device, a.config.Gestures)
	if err != nil {
		return fmt.Errorf("failed to load gesture database: %w", err)
	}

	sources := gesture.NewSources(a.device.BodyCount(), db, a.device)
	t, err := tracker.New(sources, a.config.Tracker)
	if err != nil {
		return err
	}

	a.database = db
	a.tracker = t
	a.dispatcher = dispatch.New(a.config.Dispatch, db, sources)
	a.snapshot = t.Snapshot()

	if a.config.Store != nil {
		entries := make([]store.Gesture, 0, db.Len())
		for _, def := range db.Definitions() {
			entries = append(entries, store.Gesture{Name: def.Name, Kind: store.GestureKind(def.Kind)})
		}
		catalog, err := a.config.Store.Gestures().Sync(entries)
		if err != nil {
			log.Printf("Failed to sync gesture catalog: %v", err)
		} else {
			a.catalog = catalog
		}
	}

	return nil
}

// restoreSettings applies the persisted enabled flag and target.
// A target given in Config wins over the persisted one.
func (a *App) restoreSettings() {
	target := a.config.Target

	if a.config.Store != nil {
		settings := a.config.Store.Settings()
		if v, err := settings.Get(store.SettingEnabled); err == nil {
			if enabled, err := strconv.ParseBool(v); err == nil {
				a.enabled = enabled
			}
		}
		if target == "" {
			v, err := settings.Get(store.SettingTarget)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Printf("Failed to read persisted target: %v", err)
			}
			target = v
		}
	}

	if target == "" {
		log.Println("No network target set; gestures will not be sent")
		return
	}

	t, err := forward.ParseTargetString(target)
	if err != nil {
		log.Printf("Ignoring network target %q: %v", target, err)
		return
	}
	a.forwarder.SetTarget(t)
	log.Printf("Sending gestures to %s", t)
}

// Stop halts the fusion loop and releases resources.
// The loop is stopped before the device so no frame is consumed after teardown.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	// Signal the pipeline to stop
	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if a.device != nil {
		if err := a.device.Close(); err != nil {
			log.Printf("Error closing sensor: %v", err)
		}
	}

	a.presenter.Close()

	if err := a.forwarder.Close(); err != nil {
		log.Printf("Error closing forwarder: %v", err)
	}

	log.Println("Fusion stage stopped")
}

// Running reports whether the fusion loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// SetEnabled enables or disables gesture forwarding.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to persist enabled flag: %v", err)
		}
	}
}

// IsEnabled returns whether gesture forwarding is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetTarget parses and applies a network target given as four octet strings
// and a port string. On error the previous target is kept.
func (a *App) SetTarget(octets [4]string, port string) (forward.Target, error) {
	t, err := forward.ParseTarget(octets, port)
	if err != nil {
		return forward.Target{}, err
	}

	a.forwarder.SetTarget(t)
	log.Printf("Network target set to %s", t)

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingTarget, t.String()); err != nil {
			log.Printf("Failed to persist target: %v", err)
		}
	}

	a.listenersMu.RLock()
	listeners := a.targetListeners
	a.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(t)
	}
	return t, nil
}

// OnTarget registers fn to be called after SetTarget accepts a new target.
func (a *App) OnTarget(fn func(forward.Target)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.targetListeners = append(a.targetListeners, fn)
}

// Target returns the current network target and whether one is set.
func (a *App) Target() (forward.Target, bool) {
	return a.forwarder.Target()
}

// OnGesture registers fn to be called after every forwarded batch.
// fn runs on the fusion goroutine and must not block.
func (a *App) OnGesture(fn func(GestureEvent)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.gestureListeners = append(a.gestureListeners, fn)
}

// OnBodies registers fn to be called after every body tick.
// fn runs on the fusion goroutine and must not block.
func (a *App) OnBodies(fn func(tracker.Snapshot)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.bodyListeners = append(a.bodyListeners, fn)
}

// Snapshot returns the body state of the latest tick.
func (a *App) Snapshot() tracker.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Status returns the current application status.
func (a *App) Status() Status {
	target, set := a.forwarder.Target()

	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Status{
		Enabled:       a.enabled,
		Running:       a.stopCh != nil,
		TargetSet:     set,
		TrackedBodies: a.snapshot.TrackedCount(),
		Selected:      -1,
		BodyTicks:     a.snapshot.Tick,
		ColorFrames:   a.colorFrames,
		GestureFrames: make(map[string]uint64, len(a.outcomes)),
		Forwarder:     a.forwarder.Stats(),
		LastGesture:   a.lastGesture,
	}
	if set {
		s.Target = target.String()
	}
	if slot, ok := a.snapshot.Closest(a.config.Dispatch.Selector); ok {
		s.Selected = slot
	}
	for outcome, n := range a.outcomes {
		s.GestureFrames[outcome.String()] = n
	}
	return s
}

// Database returns the loaded gesture database, or nil before Start.
func (a *App) Database() *gesture.Database {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.database
}

// Presenter returns the color frame presenter.
func (a *App) Presenter() *capture.Presenter {
	return a.presenter
}

// Store returns the backing store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
