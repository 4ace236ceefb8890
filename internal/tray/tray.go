// Package tray provides a system tray interface for the kinectosc gesture forwarder.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray shows forwarding state in the system tray. The read-only status lines
// may be updated from any goroutine, before or after the menu exists.
type Tray struct {
	mu sync.RWMutex

	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()

	enabled   bool
	forwarded uint64

	toggle *systray.MenuItem
	target statusLine
	bodies statusLine
	last   statusLine
}

// statusLine is a disabled menu item whose title mirrors a value.
type statusLine struct {
	value string
	title func(string) string
	item  *systray.MenuItem
}

func (l *statusLine) set(v string) bool {
	if v == l.value {
		return false
	}
	l.value = v
	if l.item != nil {
		l.item.SetTitle(l.title(v))
	}
	return true
}

func (l *statusLine) add(tooltip string) {
	l.item = systray.AddMenuItem(l.title(l.value), tooltip)
	l.item.Disable()
}

// New creates a Tray with forwarding enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		target:  statusLine{title: targetTitle},
		bodies:  statusLine{title: bodiesTitle},
		last:    statusLine{title: lastTitle},
	}
}

// OnToggle sets the callback run when the user flips forwarding on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback for the settings item.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray and blocks until Quit. It must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("KinectOSC")

	t.mu.Lock()
	systray.SetTooltip(tooltip(t.forwarded))
	t.toggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture forwarding")
	systray.AddSeparator()
	t.target.add("Network target")
	t.bodies.add("Bodies in view")
	t.last.add("Last forwarded gesture")
	systray.AddSeparator()
	settings := systray.AddMenuItem("Open Settings...", "Show the control API address")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit KinectOSC")
	toggle := t.toggle
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.handleToggle()
			case <-settings.ClickedCh:
				t.handleSettings()
			case <-quit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Forwarding"
	}
	return "○ Paused"
}

func targetTitle(target string) string {
	if target == "" {
		return "Target: not set"
	}
	return "Target: " + target
}

func bodiesTitle(summary string) string {
	if summary == "" {
		return "Bodies: none"
	}
	return "Bodies: " + summary
}

func lastTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}

func tooltip(forwarded uint64) string {
	return fmt.Sprintf("Kinect gestures to OSC (%d sent)", forwarded)
}

// bodiesSummary renders the tracked count and the selected slot.
func bodiesSummary(tracked, selected int) string {
	switch {
	case tracked == 0:
		return ""
	case selected < 0:
		return fmt.Sprintf("%d, none in range", tracked)
	default:
		return fmt.Sprintf("%d, slot %d selected", tracked, selected)
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.toggle != nil {
		t.toggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetEnabled updates the enabled state without invoking the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.toggle != nil {
		t.toggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetTarget shows the network target.
func (t *Tray) SetTarget(target string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target.set(target)
}

// SetBodies shows how many bodies are tracked and which slot is selected;
// selected is negative when no body is close enough.
func (t *Tray) SetBodies(tracked, selected int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bodies.set(bodiesSummary(tracked, selected))
}

// Bodies returns the body summary currently shown.
func (t *Tray) Bodies() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bodies.value
}

// RecordGesture shows name as the last gesture and adds n to the sent count.
func (t *Tray) RecordGesture(name string, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last.set(name)
	t.forwarded += uint64(n)
	if t.toggle != nil {
		systray.SetTooltip(tooltip(t.forwarded))
	}
}

// LastGesture returns the last gesture shown in the menu.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last.value
}

// Forwarded returns the number of messages counted by RecordGesture.
func (t *Tray) Forwarded() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.forwarded
}
