package server

import (
	"fmt"
	"net/http"
	"time"
)

// FrameInterval is how often the stream polls for a new color frame,
// matching the sensor's 30 fps color rate.
const FrameInterval = 33 * time.Millisecond

// FrameEncoder provides the latest color frame as JPEG. Count increases each
// time a new frame is presented.
type FrameEncoder interface {
	JPEG() ([]byte, error)
	Count() uint64
}

// StreamHandler serves the color feed as MJPEG.
type StreamHandler struct {
	frames FrameEncoder
}

// NewStreamHandler creates a new StreamHandler with the given frame source.
func NewStreamHandler(frames FrameEncoder) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP writes one multipart section per new frame until the client goes
// away. Frames already sent are not repeated.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		n := h.frames.Count()
		if n == sent {
			continue
		}
		buf, err := h.frames.JPEG()
		if err != nil {
			continue
		}

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(buf)); err != nil {
			return
		}
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprint(w, "\r\n")
		if flusher != nil {
			flusher.Flush()
		}
		sent = n
	}
}
