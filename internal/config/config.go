// Package config loads handrps settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/ayusman/handrps/internal/capture"
	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "handrps.hcl"

// Config is the complete application configuration.
type Config struct {
	Camera   CameraSettings
	Detector DetectorSettings
	Game     GameSettings
	Server   ServerSettings
	Hooks    HookSettings
}

// CameraSettings configures capture.
type CameraSettings struct {
	Device int   `hcl:"device,optional"`
	FPS    int   `hcl:"fps,optional"`
	Mirror *bool `hcl:"mirror,optional"`
}

// DetectorSettings configures the hand detection service.
type DetectorSettings struct {
	MaxHands               int     `hcl:"max_hands,optional"`
	MinDetectionConfidence float64 `hcl:"min_detection_confidence,optional"`
	MinTrackingConfidence  float64 `hcl:"min_tracking_confidence,optional"`
}

// GameSettings configures round timing.
type GameSettings struct {
	HoldSeconds      float64 `hcl:"hold_seconds,optional"`
	CountdownSeconds int     `hcl:"countdown_seconds,optional"`
}

// ServerSettings configures the viewer and logging.
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	StaticDir string `hcl:"static_dir,optional"`
	LogLevel  string `hcl:"log_level,optional"`
}

// HookSettings configures the event hooks. An empty Dir means
// ~/.handrps/hooks.
type HookSettings struct {
	Dir       string `hcl:"dir,optional"`
	TimeoutMs int    `hcl:"timeout_ms,optional"`
}

// file mirrors the HCL layout; every block is optional.
type file struct {
	Camera   *CameraSettings   `hcl:"camera,block"`
	Detector *DetectorSettings `hcl:"detector,block"`
	Game     *GameSettings     `hcl:"game,block"`
	Server   *ServerSettings   `hcl:"server,block"`
	Hooks    *HookSettings     `hcl:"hooks,block"`
}

// Default returns the default configuration.
func Default() *Config {
	mirror := true
	det := detector.DefaultConfig()
	return &Config{
		Camera: CameraSettings{
			Device: 0,
			FPS:    capture.DefaultFPS,
			Mirror: &mirror,
		},
		Detector: DetectorSettings{
			MaxHands:               det.MaxHands,
			MinDetectionConfidence: det.MinConfidence,
			MinTrackingConfidence:  det.MinTrackingConf,
		},
		Game: GameSettings{
			HoldSeconds:      game.DefaultHoldDuration.Seconds(),
			CountdownSeconds: game.DefaultCountdownSeconds,
		},
		Server: ServerSettings{
			Address:  "localhost:8080",
			LogLevel: "info",
		},
		Hooks: HookSettings{
			TimeoutMs: 5000,
		},
	}
}

// Load reads the HCL file at filename. A missing file yields the
// defaults; settings absent from the file keep their default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var f file
	diags = gohcl.DecodeBody(hclFile.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.merge(&f)
	return cfg, nil
}

func (c *Config) merge(f *file) {
	if cam := f.Camera; cam != nil {
		c.Camera.Device = cam.Device
		if cam.FPS != 0 {
			c.Camera.FPS = cam.FPS
		}
		if cam.Mirror != nil {
			c.Camera.Mirror = cam.Mirror
		}
	}

	if det := f.Detector; det != nil {
		if det.MaxHands != 0 {
			c.Detector.MaxHands = det.MaxHands
		}
		if det.MinDetectionConfidence != 0 {
			c.Detector.MinDetectionConfidence = det.MinDetectionConfidence
		}
		if det.MinTrackingConfidence != 0 {
			c.Detector.MinTrackingConfidence = det.MinTrackingConfidence
		}
	}

	if g := f.Game; g != nil {
		if g.HoldSeconds != 0 {
			c.Game.HoldSeconds = g.HoldSeconds
		}
		if g.CountdownSeconds != 0 {
			c.Game.CountdownSeconds = g.CountdownSeconds
		}
	}

	if srv := f.Server; srv != nil {
		if srv.Address != "" {
			c.Server.Address = srv.Address
		}
		if srv.StaticDir != "" {
			c.Server.StaticDir = srv.StaticDir
		}
		if srv.LogLevel != "" {
			c.Server.LogLevel = srv.LogLevel
		}
	}

	if h := f.Hooks; h != nil {
		if h.Dir != "" {
			c.Hooks.Dir = h.Dir
		}
		if h.TimeoutMs != 0 {
			c.Hooks.TimeoutMs = h.TimeoutMs
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Camera.Device < 0 {
		return fmt.Errorf("invalid camera device: %d", c.Camera.Device)
	}
	if c.Camera.FPS < 1 || c.Camera.FPS > 120 {
		return fmt.Errorf("camera fps must be between 1 and 120, got %d", c.Camera.FPS)
	}

	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("detector max_hands must be at least 1, got %d", c.Detector.MaxHands)
	}
	for name, v := range map[string]float64{
		"min_detection_confidence": c.Detector.MinDetectionConfidence,
		"min_tracking_confidence":  c.Detector.MinTrackingConfidence,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("detector %s must be in (0, 1], got %g", name, v)
		}
	}

	if c.Game.HoldSeconds <= 0 {
		return fmt.Errorf("game hold_seconds must be positive, got %g", c.Game.HoldSeconds)
	}
	if c.Game.CountdownSeconds < 1 {
		return fmt.Errorf("game countdown_seconds must be at least 1, got %d", c.Game.CountdownSeconds)
	}

	if c.Server.Address == "" {
		return errors.New("server address must not be empty")
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	if c.Hooks.TimeoutMs < 1 {
		return fmt.Errorf("hooks timeout_ms must be positive, got %d", c.Hooks.TimeoutMs)
	}

	return nil
}

// Mirror reports whether frames are flipped horizontally.
func (c *Config) Mirror() bool {
	return c.Camera.Mirror == nil || *c.Camera.Mirror
}

// GameConfig returns the round state machine settings.
func (c *Config) GameConfig() game.Config {
	return game.Config{
		HoldDuration:     time.Duration(c.Game.HoldSeconds * float64(time.Second)),
		CountdownSeconds: c.Game.CountdownSeconds,
	}
}

// DetectorConfig returns the hand detector settings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}

// HookTimeout returns how long a hook may run.
func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutMs) * time.Millisecond
}

// HookDir returns the hook directory, resolving the default under the
// user's home.
func (c *Config) HookDir() string {
	if c.Hooks.Dir != "" {
		return c.Hooks.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".handrps", "hooks")
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
