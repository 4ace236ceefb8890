// Package dispatch turns gesture frames into outbound OSC messages for the closest person.
package dispatch

import (
	"fmt"

	"github.com/ayusman/kinectosc/internal/gesture"
	"github.com/ayusman/kinectosc/internal/sensor"
	"github.com/ayusman/kinectosc/internal/tracker"
)

// AddressMode selects the OSC address pattern of outbound messages.
type AddressMode string

const (
	// AddressSplit sends discrete results to /dGesture and continuous
	// results to /cGesture.
	AddressSplit AddressMode = "split"
	// AddressNamed sends every result to /<gestureName>.
	AddressNamed AddressMode = "named"
)

// Addresses used by AddressSplit.
const (
	DiscreteAddress   = "/dGesture"
	ContinuousAddress = "/cGesture"
)

// ParseAddressMode converts a string to an AddressMode.
func ParseAddressMode(s string) (AddressMode, error) {
	switch AddressMode(s) {
	case AddressSplit, AddressNamed:
		return AddressMode(s), nil
	default:
		return "", fmt.Errorf("unknown address mode %q", s)
	}
}

// Message is one outbound gesture event. It is sent with the arguments
// (Gesture, Value).
type Message struct {
	Address    string       `json:"address"`
	Gesture    string       `json:"gesture"`
	Value      float32      `json:"value"`
	Kind       gesture.Kind `json:"kind"`
	Slot       int          `json:"slot"`
	TrackingID uint64       `json:"tracking_id"`
}

// Outcome classifies what happened to a gesture frame.
type Outcome int

const (
	// Forwarded means at least one message survived.
	Forwarded Outcome = iota
	// DroppedInvalid means the frame had no valid tracking association.
	DroppedInvalid
	// DroppedUnmatched means no gesture source was bound to the frame's tracking id.
	DroppedUnmatched
	// DroppedNotClosest means messages were built but the body was not the
	// selected closest person.
	DroppedNotClosest
	// Empty means the body was selected but no gesture produced a message.
	Empty
)

// String returns the lower case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Forwarded:
		return "forwarded"
	case DroppedInvalid:
		return "dropped_invalid"
	case DroppedUnmatched:
		return "dropped_unmatched"
	case DroppedNotClosest:
		return "dropped_not_closest"
	default:
		return "empty"
	}
}

// Result is the outcome of dispatching one gesture frame.
type Result struct {
	Outcome Outcome
	// Slot is the body slot that produced the frame, or -1.
	Slot int
	// Selected is the closest-person slot for the tick, or -1.
	Selected int
	// Messages holds the batch to forward, in database order.
	Messages []Message
	// Discarded counts messages built for a body that was not selected.
	Discarded int
}

// Config configures a Dispatcher.
type Config struct {
	Mode     AddressMode
	Selector tracker.SelectorConfig
}

// DefaultConfig returns split addressing with default closest-person selection.
func DefaultConfig() Config {
	return Config{
		Mode:     AddressSplit,
		Selector: tracker.DefaultSelectorConfig(),
	}
}

// Dispatcher evaluates gesture frames against the loaded gesture database.
type Dispatcher struct {
	config  Config
	defs    []gesture.Definition
	sources []*gesture.Source
}

// New creates a Dispatcher. sources supplies per-slot enabled gestures and may be nil.
// A zero Mode means AddressSplit and a non-positive MaxDistance means
// tracker.DefaultMaxDistance.
func New(config Config, db *gesture.Database, sources []*gesture.Source) *Dispatcher {
	if config.Mode == "" {
		config.Mode = AddressSplit
	}
	if config.Selector.MaxDistance <= 0 {
		config.Selector.MaxDistance = tracker.DefaultMaxDistance
	}
	return &Dispatcher{
		config:  config,
		defs:    db.Definitions(),
		sources: sources,
	}
}

// Dispatch builds the message batch for frame using the body state in snap.
// It has no side effects; forwarding the batch is up to the caller.
func (d *Dispatcher) Dispatch(snap tracker.Snapshot, frame sensor.GestureFrame) Result {
	res := Result{Slot: -1, Selected: -1}

	if !frame.TrackingIDValid || frame.TrackingID == 0 {
		res.Outcome = DroppedInvalid
		return res
	}

	slot, ok := snap.SlotFor(frame.TrackingID)
	if !ok {
		res.Outcome = DroppedUnmatched
		return res
	}
	res.Slot = slot

	// The body array is stable for the tick, so select once for every gesture.
	if selected, ok := snap.Closest(d.config.Selector); ok {
		res.Selected = selected
	}

	built := d.build(slot, frame)
	if len(built) == 0 {
		res.Outcome = Empty
		return res
	}

	if res.Selected != slot {
		res.Discarded = len(built)
		res.Outcome = DroppedNotClosest
		return res
	}

	res.Messages = built
	res.Outcome = Forwarded
	return res
}

// build extracts a message for every gesture that reported a result.
func (d *Dispatcher) build(slot int, frame sensor.GestureFrame) []Message {
	var msgs []Message

	for _, def := range d.defs {
		if !d.enabled(slot, def.Name) {
			continue
		}

		switch def.Kind {
		case gesture.KindDiscrete:
			r, ok := frame.Discrete[def.Name]
			if !ok || !r.Detected {
				continue
			}
			msgs = append(msgs, d.message(def, r.Confidence, slot, frame.TrackingID))

		case gesture.KindContinuous:
			r, ok := frame.Continuous[def.Name]
			if !ok {
				continue
			}
			msgs = append(msgs, d.message(def, r.Progress, slot, frame.TrackingID))
		}
	}

	return msgs
}

func (d *Dispatcher) enabled(slot int, name string) bool {
	if slot >= len(d.sources) || d.sources[slot] == nil {
		return true
	}
	return d.sources[slot].Enabled(name)
}

func (d *Dispatcher) message(def gesture.Definition, value float32, slot int, trackingID uint64) Message {
	return Message{
		Address:    Address(d.config.Mode, def),
		Gesture:    def.Name,
		Value:      value,
		Kind:       def.Kind,
		Slot:       slot,
		TrackingID: trackingID,
	}
}

// Address returns the OSC address for a gesture under mode.
func Address(mode AddressMode, def gesture.Definition) string {
	if mode == AddressNamed {
		return "/" + def.Name
	}
	if def.Kind == gesture.KindContinuous {
		return ContinuousAddress
	}
	return DiscreteAddress
}
