// Package capture reads webcam frames through GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings. 33 FPS gives the ~30ms frame period the game
// loop is tuned for.
const (
	DefaultFPS    = 33
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned by ReadFrame before Open or after Close.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrCameraUnavailable is returned when the device exists but will
	// not start streaming.
	ErrCameraUnavailable = errors.New("camera is unavailable")
	// ErrReadFailed is returned when the device stops delivering frames.
	ErrReadFailed = errors.New("failed to read frame from camera")
	// ErrEmptyFrame is returned when the device yields no image data.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera is a frame source. Frames returned by ReadFrame belong to the
// caller, who must Close them.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Option configures a device camera.
type Option func(*device)

// WithSize requests a capture resolution.
func WithSize(width, height int) Option {
	return func(d *device) {
		if width > 0 && height > 0 {
			d.size = image.Pt(width, height)
		}
	}
}

// WithFPS requests a capture rate.
func WithFPS(fps int) Option {
	return func(d *device) {
		if fps > 0 {
			d.fps = fps
		}
	}
}

// device is a Camera backed by a gocv.VideoCapture.
type device struct {
	id   int
	size image.Point
	fps  int

	mu  sync.Mutex
	vc  *gocv.VideoCapture
	buf gocv.Mat
}

// NewCamera returns a closed Camera for device id, 640x480 at DefaultFPS
// unless options say otherwise.
func NewCamera(id int, opts ...Option) Camera {
	d := &device{
		id:   id,
		size: image.Pt(DefaultWidth, DefaultHeight),
		fps:  DefaultFPS,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open starts the device. Opening an open camera is a no-op.
func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.id)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: %w", d.id, ErrCameraUnavailable)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.size.X))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.size.Y))
	vc.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.vc = vc
	d.buf = gocv.NewMat()
	return nil
}

// Close stops the device. Closing a closed camera is a no-op.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}

	d.buf.Close()
	err := d.vc.Close()
	d.vc = nil
	return err
}

// ReadFrame grabs the next frame and returns a copy of it.
func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil, ErrCameraNotOpen
	}
	if !d.vc.Read(&d.buf) {
		return nil, ErrReadFailed
	}
	if d.buf.Empty() {
		return nil, ErrEmptyFrame
	}

	frame := d.buf.Clone()
	return &frame, nil
}

// SetFPS changes the capture rate, applying it to an open device at once.
// Non-positive values are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.vc != nil {
		d.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vc != nil
}

// Mirror flips a frame horizontally in place so the player sees
// themselves as in a mirror and left/right hands match the screen.
func Mirror(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Flip(*frame, frame, 1)
}
