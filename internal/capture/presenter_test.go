package capture

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ayusman/kinectosc/internal/sensor"
)

func solidFrame(w, h int, b, g, r byte) sensor.ColorFrame {
	pixels := make([]byte, w*h*bytesPerPixel)
	for i := 0; i < len(pixels); i += bytesPerPixel {
		pixels[i] = b
		pixels[i+1] = g
		pixels[i+2] = r
		pixels[i+3] = 255
	}
	return sensor.ColorFrame{Width: w, Height: h, Pixels: pixels}
}

func TestPresenter_NoFrame(t *testing.T) {
	p := NewPresenter()
	defer p.Close()

	if _, err := p.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("ReadFrame() error = %v, want ErrNoFrame", err)
	}
	if _, err := p.JPEG(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("JPEG() error = %v, want ErrNoFrame", err)
	}
}

func TestPresenter_BadFrame(t *testing.T) {
	p := NewPresenter()
	defer p.Close()

	tests := []struct {
		name  string
		frame sensor.ColorFrame
	}{
		{"short buffer", sensor.ColorFrame{Width: 4, Height: 4, Pixels: make([]byte, 10)}},
		{"zero size", sensor.ColorFrame{}},
		{"negative width", sensor.ColorFrame{Width: -1, Height: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Present(tt.frame); !errors.Is(err, ErrBadFrame) {
				t.Errorf("Present() error = %v, want ErrBadFrame", err)
			}
		})
	}
}

func TestPresenter_Present(t *testing.T) {
	p := NewPresenter()
	defer p.Close()

	if err := p.Present(solidFrame(64, 48, 10, 20, 30)); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	frame, err := p.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer frame.Close()

	if frame.Cols() != 64 || frame.Rows() != 48 {
		t.Errorf("frame size = %dx%d, want 64x48", frame.Cols(), frame.Rows())
	}
	if frame.Channels() != 3 {
		t.Errorf("Channels() = %d, want 3", frame.Channels())
	}

	pixel := frame.GetVecbAt(0, 0)
	if pixel[0] != 10 || pixel[1] != 20 || pixel[2] != 30 {
		t.Errorf("pixel = %v, want [10 20 30]", pixel)
	}

	if p.Count() != 1 {
		t.Errorf("Count() = %d, want 1", p.Count())
	}
}

func TestPresenter_JPEG(t *testing.T) {
	p := NewPresenter()
	defer p.Close()

	if err := p.Present(solidFrame(32, 32, 0, 0, 255)); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	data, err := p.JPEG()
	if err != nil {
		t.Fatalf("JPEG() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Error("JPEG() output does not start with a JPEG marker")
	}
}

func TestPresenter_Close(t *testing.T) {
	p := NewPresenter()
	p.Present(solidFrame(8, 8, 1, 2, 3))
	p.Close()

	if _, err := p.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("ReadFrame() after Close error = %v, want ErrNoFrame", err)
	}
}
