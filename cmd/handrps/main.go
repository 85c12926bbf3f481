package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/handrps/internal/app"
	"github.com/ayusman/handrps/internal/config"
	"github.com/ayusman/handrps/internal/hook"
	"github.com/ayusman/handrps/internal/server"
	"github.com/ayusman/handrps/internal/store"
	"github.com/ayusman/handrps/internal/tray"
)

// commandTimeout bounds how long a tray click waits for the frame loop.
const commandTimeout = time.Second

var CLI struct {
	Config   string `short:"c" long:"config" default:"handrps.hcl" help:"Path to HCL configuration file"`
	Camera   int    `long:"camera" default:"-1" help:"Camera device index (overrides config)"`
	Addr     string `short:"a" long:"addr" help:"Viewer address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	NoTray   bool   `long:"no-tray" help:"Run without the system tray menu"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("handrps"),
		kong.Description("Play Rock Paper Scissors against the computer with hand gestures"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Camera >= 0 {
		cfg.Camera.Device = CLI.Camera
	}
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.Level(),
		ReportTimestamp: true,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("handrps stopped", "err", err)
		ctx.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(store.MemoryDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	hooks := hook.NewManager(cfg.HookDir())
	if err := hooks.Discover(); err != nil {
		logger.Warn("Failed to discover hooks", "dir", hooks.HookDir(), "err", err)
	}
	for _, h := range hooks.List() {
		logger.Info("Loaded hook", "name", h.Manifest.Name, "events", h.Manifest.Events)
	}
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.HookTimeout()), logger.WithPrefix("hooks"))

	session := app.New(app.Config{
		CameraID:       cfg.Camera.Device,
		FPS:            cfg.Camera.FPS,
		Mirror:         cfg.Mirror(),
		DetectorConfig: cfg.DetectorConfig(),
		Game:           cfg.GameConfig(),
		Store:          st,
		Hooks:          dispatcher,
		Logger:         logger.WithPrefix("game"),
	})

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("Serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Session:   session,
		Logger:    logger.WithPrefix("viewer"),
	})

	logger.Info("Starting handrps",
		"camera", cfg.Camera.Device,
		"fps", cfg.Camera.FPS,
		"viewer", viewerURL(cfg.Server.Address))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return session.Run(gctx) })
	g.Go(func() error { return srv.Serve(gctx, cfg.Server.Address) })
	g.Go(func() error { return dispatcher.Run(gctx) })

	if !CLI.NoTray {
		runTray(gctx, stop, session, viewerURL(cfg.Server.Address), logger)
	}

	return g.Wait()
}

// runTray blocks on the tray menu until Quit is clicked or ctx is done.
func runTray(ctx context.Context, stop func(), session *app.App, url string, logger *log.Logger) {
	t := tray.New()

	command := func(name string, fn func(context.Context) error) func() {
		return func() {
			cctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()
			if err := fn(cctx); err != nil {
				logger.Info("Tray command refused", "command", name, "err", err)
			}
		}
	}
	t.OnStartRound(command("start", session.StartRound))
	t.OnResetGame(command("reset", session.ResetGame))
	t.OnOpenViewer(func() {
		if err := openBrowser(url); err != nil {
			logger.Warn("Failed to open viewer", "url", url, "err", err)
		}
	})
	t.OnQuit(stop)

	outputs, cancel := session.Subscribe()
	defer cancel()
	go t.Watch(ctx, outputs)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// viewerURL turns a listen address into a browsable URL.
func viewerURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.handrps/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handrps", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
