// Package app drives the game: it owns the camera, the hand detector and
// the round state machine, and runs them on a single frame loop.
package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/ayusman/handrps/internal/capture"
	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/hook"
	"github.com/ayusman/handrps/internal/store"
)

// ErrNotRunning is returned by commands sent while the frame loop is down.
var ErrNotRunning = errors.New("frame loop is not running")

// Notifier receives game events for user hooks.
type Notifier interface {
	Notify(ev hook.Event)
}

// Config holds configuration options for the application.
type Config struct {
	CameraID int
	// FPS sets the frame loop rate (default: capture.DefaultFPS).
	FPS    int
	Mirror bool

	DetectorConfig detector.Config
	Game           game.Config

	Store  *store.Store
	Hooks  Notifier
	Logger *log.Logger

	// Camera, Detector, Picker and Clock replace the real
	// implementations when set.
	Camera   capture.Camera
	Detector detector.Detector
	Picker   game.Picker
	Clock    quartz.Clock
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdReset
)

type command struct {
	kind  commandKind
	reply chan error
}

// App is the running game session.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	game     *game.Game
	clock    quartz.Clock
	logger   *log.Logger
	hub      *Hub
	commands chan command

	mu        sync.RWMutex
	state     game.Output
	frame     []byte
	running   bool
	lastPhase game.Phase
	lastScore game.Score
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Picker == nil {
		seed := uint64(time.Now().UnixNano())
		config.Picker = rand.New(rand.NewPCG(seed, seed>>1))
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		game:     game.New(config.Game, config.Picker),
		clock:    config.Clock,
		logger:   config.Logger,
		hub:      NewHub(),
		commands: make(chan command),
	}
	a.state = a.game.Snapshot()

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}
	a.camera.SetFPS(config.FPS)

	if a.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			a.detector = mp
			a.logger.Info("Using MediaPipe hand detection")
		} else {
			a.logger.Warn("MediaPipe not available, using mock detector", "err", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a
}

// FramePeriod is the time between frames.
func (a *App) FramePeriod() time.Duration {
	return time.Second / time.Duration(a.config.FPS)
}

// Run opens the camera and processes frames until ctx is done. Frames and
// commands are handled one at a time on the calling goroutine, so the game
// state has a single owner.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return err
	}

	a.mu.Lock()
	a.running = true
	a.mu.Unlock()

	ticker := a.clock.NewTicker(a.FramePeriod(), "app", "frame")
	a.logger.Info("Frame loop started", "fps", a.config.FPS)

	defer func() {
		ticker.Stop()
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
		a.shutdown()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.processFrame(now)
		case cmd := <-a.commands:
			cmd.reply <- a.apply(cmd.kind)
		}
	}
}

func (a *App) shutdown() {
	if err := a.camera.Close(); err != nil {
		a.logger.Error("Error closing camera", "err", err)
	}
	if err := a.detector.Close(); err != nil {
		a.logger.Error("Error closing detector", "err", err)
	}
	a.logger.Info("Frame loop stopped")
}

// StartRound begins a countdown without the START hold.
func (a *App) StartRound(ctx context.Context) error {
	return a.send(ctx, cmdStart)
}

// ResetGame clears the score without the RESET hold.
func (a *App) ResetGame(ctx context.Context) error {
	return a.send(ctx, cmdReset)
}

func (a *App) send(ctx context.Context, kind commandKind) error {
	if !a.IsRunning() {
		return ErrNotRunning
	}

	cmd := command{kind: kind, reply: make(chan error, 1)}
	select {
	case a.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) apply(kind commandKind) error {
	var err error
	switch kind {
	case cmdStart:
		err = a.game.StartRound(a.clock.Now("app", "command"))
	case cmdReset:
		err = a.game.Reset()
	}
	if err != nil {
		a.logger.Info("Command refused", "err", err)
	}

	out := a.game.Snapshot()
	a.setState(out, nil)
	a.note(out)
	a.hub.Publish(out)
	return err
}

// IsRunning reports whether the frame loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// State returns the most recent frame output.
func (a *App) State() game.Output {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// LatestFrame returns the most recent rendered frame as JPEG, or nil
// before the first frame.
func (a *App) LatestFrame() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame
}

// Subscribe returns a channel receiving every frame output.
func (a *App) Subscribe() (<-chan game.Output, func()) {
	return a.hub.Subscribe()
}

// Store returns the session history store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

func (a *App) setState(out game.Output, frame []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = out
	if frame != nil {
		a.frame = frame
	}
}

// note logs phase changes and reports score resets to hooks.
func (a *App) note(out game.Output) {
	if out.Phase != a.lastPhase {
		a.logger.Debug("Phase changed", "from", a.lastPhase, "to", out.Phase)
		a.lastPhase = out.Phase
	}

	if out.Score.IsZero() && !a.lastScore.IsZero() {
		a.logger.Info("Game reset")
		if a.config.Hooks != nil {
			a.config.Hooks.Notify(hook.GameReset(a.clock.Now("app", "reset")))
		}
	}
	a.lastScore = out.Score
}
