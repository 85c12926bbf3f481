package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/quartz"
)

// streamInterval paces the MJPEG stream at about 15 FPS.
const streamInterval = 66 * time.Millisecond

// FrameSource supplies the latest rendered JPEG frame.
type FrameSource interface {
	LatestFrame() []byte
}

// StreamHandler serves the rendered game frames as MJPEG.
type StreamHandler struct {
	frames FrameSource
	clock  quartz.Clock
}

// NewStreamHandler creates a new StreamHandler over the given source.
func NewStreamHandler(frames FrameSource, clock quartz.Clock) *StreamHandler {
	return &StreamHandler{frames: frames, clock: clock}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := h.clock.NewTicker(streamInterval, "stream")
	defer ticker.Stop()

	var last []byte
	for {
		if frame := h.frames.LatestFrame(); len(frame) > 0 && !bytes.Equal(frame, last) {
			if err := writePart(w, frame); err != nil {
				return
			}
			last = frame
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
