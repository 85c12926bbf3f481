// Package detector provides hand detection interfaces and types for gesture input.
package detector

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/gesture"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected hands.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Hand is a single detected hand: which fingers are extended and where the
// hand sits in the frame.
type Hand struct {
	Fingers    gesture.Pattern `json:"fingers"`
	BBox       image.Rectangle `json:"bbox"`
	Handedness string          `json:"handedness"` // "Left" or "Right"
	Score      float64         `json:"score"`
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.8,
		MinTrackingConf: 0.5,
	}
}

// Primary returns the first detected hand, or nil when there is none.
// Only one hand takes part in the game.
func Primary(hands []Hand) *Hand {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}
