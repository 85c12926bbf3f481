package detector

import (
	"encoding/json"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/gesture"
)

// idleShutdown stops the Python process after this long without frames.
const idleShutdown = 30 * time.Second

// MediaPipeDetector runs MediaPipe Hands in a Python subprocess. The service
// reports finger-extension patterns and bounding boxes per hand.
type MediaPipeDetector struct {
	config Config

	mu   sync.Mutex
	svc  handService
	idle *time.Timer
}

// NewMediaPipeDetector locates the hand service. The process itself starts
// on the first Detect call.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := findServiceScript()
	if script == "" {
		return nil, fmt.Errorf("%s: %w", serviceScript, ErrServiceNotFound)
	}
	return &MediaPipeDetector{
		config: config,
		svc: handService{
			python: findPython(),
			args:   serviceArgs(script, config),
		},
	}, nil
}

// Detect sends the frame to the service and decodes the hands it reports.
// A broken pipe stops the process; the next call starts a fresh one.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.svc.running() {
		if err := d.svc.start(); err != nil {
			return nil, err
		}
	}

	line, err := d.svc.exchange(buf.GetBytes())
	if err != nil {
		d.stopLocked()
		return nil, err
	}
	d.touchLocked()

	return parseResponse(line)
}

// Close shuts down the Python process if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) touchLocked() {
	if d.idle != nil {
		d.idle.Reset(idleShutdown)
		return
	}
	d.idle = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stopLocked()
	})
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	return d.svc.stop()
}

// jsonHand is one hand as reported by the service.
// BBox is [x, y, width, height] in pixels.
type jsonHand struct {
	Fingers    []int   `json:"fingers"`
	BBox       []int   `json:"bbox"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

type jsonReply struct {
	Hands []jsonHand `json:"hands"`
	Error string     `json:"error,omitempty"`
}

// parseResponse decodes one reply line.
func parseResponse(line []byte) ([]Hand, error) {
	var reply jsonReply
	if err := json.Unmarshal(line, &reply); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("hand service: %s", reply.Error)
	}

	hands := make([]Hand, 0, len(reply.Hands))
	for i, h := range reply.Hands {
		hand, err := h.toHand()
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

func (h jsonHand) toHand() (Hand, error) {
	fingers, err := gesture.ParsePattern(h.Fingers)
	if err != nil {
		return Hand{}, err
	}
	if len(h.BBox) != 4 {
		return Hand{}, fmt.Errorf("bbox has %d values, expected 4", len(h.BBox))
	}

	origin := image.Pt(h.BBox[0], h.BBox[1])
	return Hand{
		Fingers:    fingers,
		BBox:       image.Rectangle{Min: origin, Max: origin.Add(image.Pt(h.BBox[2], h.BBox[3]))},
		Handedness: h.Handedness,
		Score:      h.Score,
	}, nil
}
