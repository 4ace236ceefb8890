package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/kinectosc/internal/dispatch"
	"github.com/ayusman/kinectosc/internal/sensor"
	"github.com/ayusman/kinectosc/internal/store"
)

// runPipeline is the fusion loop. It is the only consumer of the device
// channels and the only goroutine that touches the tracker.
//
// Pipeline logic:
// 1. Color frame: hand to the presenter
// 2. Body arrival: acquire the latest frame, update bodies and bindings
// 3. Gesture frame: dispatch against the current body snapshot, forward the
//    batch, record the events
// 4. A closed channel ends that stream; the loop exits when all are closed
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	colorCh := a.device.ColorFrames()
	bodyCh := a.device.BodyFrames()
	gestureCh := a.device.GestureFrames()

	for colorCh != nil || bodyCh != nil || gestureCh != nil {
		select {
		case <-stopCh:
			return

		case frame, ok := <-colorCh:
			if !ok {
				colorCh = nil
				continue
			}
			a.handleColor(frame)

		case _, ok := <-bodyCh:
			if !ok {
				bodyCh = nil
				continue
			}
			a.handleBody()

		case frame, ok := <-gestureCh:
			if !ok {
				gestureCh = nil
				continue
			}
			a.handleGesture(frame)
		}
	}

	log.Println("Sensor streams closed")
}

func (a *App) handleColor(frame sensor.ColorFrame) {
	if err := a.presenter.Present(frame); err != nil {
		log.Printf("Error presenting color frame: %v", err)
		return
	}

	a.mu.Lock()
	a.colorFrames++
	a.mu.Unlock()
}

// handleBody applies the newest body frame. No frame available is not an error.
func (a *App) handleBody() {
	if !a.tracker.Tick(a.device) {
		return
	}

	snap := a.tracker.Snapshot()
	a.mu.Lock()
	a.snapshot = snap
	a.mu.Unlock()

	a.listenersMu.RLock()
	listeners := a.bodyListeners
	a.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func (a *App) handleGesture(frame sensor.GestureFrame) {
	if !a.IsEnabled() {
		return
	}

	a.mu.RLock()
	snap := a.snapshot
	a.mu.RUnlock()

	res := a.dispatcher.Dispatch(snap, frame)

	a.mu.Lock()
	a.outcomes[res.Outcome]++
	if res.Outcome == dispatch.Forwarded {
		a.lastGesture = res.Messages[len(res.Messages)-1].Gesture
	}
	a.mu.Unlock()

	if res.Outcome != dispatch.Forwarded {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
	err := a.forwarder.Send(ctx, res.Messages)
	cancel()
	if err != nil {
		log.Printf("Error sending gestures: %v", err)
		return
	}

	target, sent := a.forwarder.Target()
	event := GestureEvent{
		Messages: res.Messages,
		Target:   target.String(),
		Time:     time.Now(),
	}

	if sent {
		a.recordEvents(event)
	}

	a.listenersMu.RLock()
	listeners := a.gestureListeners
	a.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(event)
	}
}

// recordEvents appends a forwarded batch to the event log.
func (a *App) recordEvents(event GestureEvent) {
	if a.config.Store == nil {
		return
	}

	events := make([]*store.Event, 0, len(event.Messages))
	for _, m := range event.Messages {
		e := &store.Event{
			GestureName: m.Gesture,
			Address:     m.Address,
			Value:       float64(m.Value),
			Slot:        m.Slot,
			TrackingID:  m.TrackingID,
			Target:      event.Target,
			CreatedAt:   event.Time,
		}
		if g, ok := a.catalog[m.Gesture]; ok {
			e.GestureID = g.ID
		}
		events = append(events, e)
	}

	if err := a.Store().Events().CreateBatch(events); err != nil {
		log.Printf("Failed to record gesture events: %v", err)
	}
}
