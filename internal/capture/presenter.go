// Package capture converts sensor color frames into displayable images using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/kinectosc/internal/sensor"
)

var (
	// ErrNoFrame is returned when no color frame has been presented yet.
	ErrNoFrame = errors.New("no color frame available")
	// ErrBadFrame is returned when a frame's pixel buffer does not match its size.
	ErrBadFrame = errors.New("color frame size mismatch")
)

// bytesPerPixel is the size of one BGRA pixel.
const bytesPerPixel = 4

// Presenter keeps the latest color frame as a BGR Mat.
type Presenter struct {
	mu     sync.Mutex
	latest gocv.Mat
	have   bool
	count  uint64
}

// NewPresenter creates an empty Presenter.
func NewPresenter() *Presenter {
	return &Presenter{latest: gocv.NewMat()}
}

// Present copies frame into the displayable image.
func (p *Presenter) Present(frame sensor.ColorFrame) error {
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pixels) != frame.Width*frame.Height*bytesPerPixel {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrBadFrame, frame.Width, frame.Height, len(frame.Pixels))
	}

	bgra, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC4, frame.Pixels)
	if err != nil {
		return fmt.Errorf("wrap color frame: %w", err)
	}
	defer bgra.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(bgra, &bgr, gocv.ColorBGRAToBGR)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest.Close()
	p.latest = bgr
	p.have = true
	p.count++

	return nil
}

// ReadFrame returns a copy of the latest image.
// The caller is responsible for closing the returned Mat.
func (p *Presenter) ReadFrame() (*gocv.Mat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.have {
		return nil, ErrNoFrame
	}

	mat := p.latest.Clone()
	return &mat, nil
}

// JPEG encodes the latest image.
func (p *Presenter) JPEG() ([]byte, error) {
	frame, err := p.ReadFrame()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases the native buffer, so copy before Close.
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// Count returns the number of frames presented.
func (p *Presenter) Count() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Close releases the held image.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest.Close()
	p.latest = gocv.NewMat()
	p.have = false
}
