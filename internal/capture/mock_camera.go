package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera once its
// frames are exhausted.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back a fixed sequence of frames. Tests can inject a
// read error with SetError.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	loop   bool
	open   bool
	next   int
	reads  int
	err    error
}

// NewMockCamera plays frames in order; with loop set it wraps around.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

// Open rewinds playback to the first frame.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	c.open, c.next = true, 0
	c.mu.Unlock()
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
	return nil
}

// SetError makes every ReadFrame fail with err until it is cleared with nil.
func (c *MockCamera) SetError(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// ReadFrame returns a clone of the next frame; the caller closes it.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.open:
		return nil, ErrCameraNotOpen
	case c.err != nil:
		return nil, c.err
	case len(c.frames) == 0:
		return nil, ErrEmptyFrame
	}

	if c.next == len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.next = 0
	}

	mat := c.frames[c.next].Clone()
	c.next++
	c.reads++
	return &mat, nil
}

func (c *MockCamera) SetFPS(int) {}

func (c *MockCamera) FPS() int { return DefaultFPS }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Reads counts frames handed out since construction.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
