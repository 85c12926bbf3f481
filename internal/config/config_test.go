package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handrps/internal/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handrps.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Mirror())
	assert.Equal(t, game.DefaultConfig(), cfg.GameConfig())
	assert.Equal(t, 1, cfg.DetectorConfig().MaxHands)
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
camera {
  device = 1
  fps    = 30
  mirror = false
}

detector {
  max_hands                = 2
  min_detection_confidence = 0.6
  min_tracking_confidence  = 0.4
}

game {
  hold_seconds      = 1.5
  countdown_seconds = 5
}

server {
  address    = "0.0.0.0:9000"
  static_dir = "web"
  log_level  = "debug"
}

hooks {
  dir        = "/opt/handrps/hooks"
  timeout_ms = 250
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Camera.Device)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.False(t, cfg.Mirror())

	det := cfg.DetectorConfig()
	assert.Equal(t, 2, det.MaxHands)
	assert.InDelta(t, 0.6, det.MinConfidence, 1e-9)
	assert.InDelta(t, 0.4, det.MinTrackingConf, 1e-9)

	assert.Equal(t, game.Config{HoldDuration: 1500 * time.Millisecond, CountdownSeconds: 5}, cfg.GameConfig())

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, "web", cfg.Server.StaticDir)
	assert.Equal(t, log.DebugLevel, cfg.Level())

	assert.Equal(t, "/opt/handrps/hooks", cfg.HookDir())
	assert.Equal(t, 250*time.Millisecond, cfg.HookTimeout())
}

func TestHookDir_DefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	assert.Equal(t, filepath.Join(home, ".handrps", "hooks"), cfg.HookDir())
	assert.Equal(t, 5*time.Second, cfg.HookTimeout())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
game {
  countdown_seconds = 4
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Game.CountdownSeconds)
	assert.Equal(t, 2.0, cfg.Game.HoldSeconds)
	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	assert.True(t, cfg.Mirror())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := Load(writeConfig(t, `camera {`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse HCL file")
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := Load(writeConfig(t, "camera {\n  zoom = 2\n}\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode HCL")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := Load(writeConfig(t, "game {\n  countdown_seconds = \"three\"\n}\n"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"negative device", func(c *Config) { c.Camera.Device = -1 }, "camera device"},
		{"zero fps", func(c *Config) { c.Camera.FPS = 0 }, "fps"},
		{"huge fps", func(c *Config) { c.Camera.FPS = 500 }, "fps"},
		{"no hands", func(c *Config) { c.Detector.MaxHands = 0 }, "max_hands"},
		{"confidence above one", func(c *Config) { c.Detector.MinDetectionConfidence = 1.5 }, "min_detection_confidence"},
		{"negative tracking", func(c *Config) { c.Detector.MinTrackingConfidence = -0.1 }, "min_tracking_confidence"},
		{"zero hold", func(c *Config) { c.Game.HoldSeconds = 0 }, "hold_seconds"},
		{"zero countdown", func(c *Config) { c.Game.CountdownSeconds = 0 }, "countdown_seconds"},
		{"empty address", func(c *Config) { c.Server.Address = "" }, "address"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }, "log level"},
		{"zero hook timeout", func(c *Config) { c.Hooks.TimeoutMs = 0 }, "timeout_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
