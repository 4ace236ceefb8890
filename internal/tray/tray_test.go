package tray

import "testing"

func TestTray_Toggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("tray should be enabled after two toggles")
	}
}

func TestTray_SetEnabledSkipsCallback(t *testing.T) {
	tr := New()
	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)

	if tr.IsEnabled() {
		t.Error("tray should be disabled")
	}
	if called {
		t.Error("SetEnabled should not invoke the toggle callback")
	}
}

func TestTray_Settings(t *testing.T) {
	tr := New()
	opened := 0
	tr.OnSettings(func() { opened++ })

	tr.handleSettings()

	if opened != 1 {
		t.Errorf("settings callback called %d times, want 1", opened)
	}
}

func TestTray_RecordGesture(t *testing.T) {
	tr := New()
	tr.RecordGesture("Wave_Right", 1)
	tr.RecordGesture("Lean_Progress", 2)

	if tr.LastGesture() != "Lean_Progress" {
		t.Errorf("LastGesture() = %q, want Lean_Progress", tr.LastGesture())
	}
	if tr.Forwarded() != 3 {
		t.Errorf("Forwarded() = %d, want 3", tr.Forwarded())
	}
}

func TestTray_SetBodies(t *testing.T) {
	tests := []struct {
		tracked, selected int
		want              string
	}{
		{0, -1, ""},
		{2, -1, "2, none in range"},
		{2, 4, "2, slot 4 selected"},
	}

	for _, tt := range tests {
		tr := New()
		tr.SetBodies(tt.tracked, tt.selected)
		if got := tr.Bodies(); got != tt.want {
			t.Errorf("SetBodies(%d, %d) shows %q, want %q", tt.tracked, tt.selected, got, tt.want)
		}
	}
}

func TestStatusLine_SetReportsChange(t *testing.T) {
	l := statusLine{title: targetTitle}
	if !l.set("10.0.0.1:8000") {
		t.Error("first set should report a change")
	}
	if l.set("10.0.0.1:8000") {
		t.Error("same value should not report a change")
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Forwarding"},
		{toggleTitle(false), "○ Paused"},
		{targetTitle(""), "Target: not set"},
		{targetTitle("10.0.0.1:8000"), "Target: 10.0.0.1:8000"},
		{bodiesTitle(""), "Bodies: none"},
		{lastTitle(""), "Last: none"},
		{lastTitle("Lean"), "Last: Lean"},
		{tooltip(7), "Kinect gestures to OSC (7 sent)"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("title = %q, want %q", tt.got, tt.want)
		}
	}
}
