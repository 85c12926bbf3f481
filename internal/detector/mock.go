package detector

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/gesture"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands ...Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// presetHand builds a right hand centred in a 640x480 frame.
func presetHand(p gesture.Pattern) Hand {
	return Hand{
		Fingers:    p,
		BBox:       image.Rect(240, 140, 400, 340),
		Handedness: "Right",
		Score:      0.95,
	}
}

// RockHand returns a closed fist.
func RockHand() Hand {
	return presetHand(gesture.Pattern{})
}

// PaperHand returns an open palm.
func PaperHand() Hand {
	return presetHand(gesture.Pattern{true, true, true, true, true})
}

// ScissorsHand returns index and middle fingers extended.
func ScissorsHand() Hand {
	return presetHand(gesture.Pattern{false, true, true, false, false})
}

// StartHand returns the index-only pointing pose.
func StartHand() Hand {
	return presetHand(gesture.StartPattern)
}

// ResetHand returns the thumb and pinky pose.
func ResetHand() Hand {
	return presetHand(gesture.ResetPattern)
}
