// Package tray provides the system tray menu for handrps.
package tray

import (
	"context"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/overlay"
)

// Tray represents the system tray application.
type Tray struct {
	onStart  func()
	onReset  func()
	onViewer func()
	onQuit   func()
	mu       sync.RWMutex

	scoreTitle  string
	statusTitle string

	// Menu items stored for later updates
	menuScore  *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray showing a 0-0 score and the idle prompt.
func New() *Tray {
	return &Tray{
		scoreTitle:  overlay.ScoreLine(game.Score{}),
		statusTitle: game.PromptText,
	}
}

// OnStartRound sets the callback for the "Start Round" item.
func (t *Tray) OnStartRound(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnResetGame sets the callback for the "Reset Game" item.
func (t *Tray) OnResetGame(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpenViewer sets the callback for the "Open Viewer" item.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("RPS")
	systray.SetTooltip("Rock Paper Scissors")

	t.mu.Lock()
	t.menuScore = systray.AddMenuItem(t.scoreTitle, "Current score")
	t.menuScore.Disable()
	t.menuStatus = systray.AddMenuItem(t.statusTitle, "Game status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuStart := systray.AddMenuItem("Start Round", "Start a countdown now")
	menuReset := systray.AddMenuItem("Reset Game", "Reset the score to 0-0")
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the game viewer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit handrps")

	go func() {
		for {
			select {
			case <-menuStart.ClickedCh:
				t.fire(&t.onStart)
			case <-menuReset.ClickedCh:
				t.fire(&t.onReset)
			case <-menuViewer.ClickedCh:
				t.fire(&t.onViewer)
			case <-menuQuit.ClickedCh:
				t.fire(&t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

// fire reads a callback under the lock and runs it outside.
func (t *Tray) fire(fn *func()) {
	t.mu.RLock()
	callback := *fn
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Update shows out's score and status, touching only changed items.
func (t *Tray) Update(out game.Output) {
	score := overlay.ScoreLine(out.Score)
	status := out.Status

	t.mu.Lock()
	defer t.mu.Unlock()

	if score != t.scoreTitle {
		t.scoreTitle = score
		if t.menuScore != nil {
			t.menuScore.SetTitle(score)
		}
	}
	if status != t.statusTitle {
		t.statusTitle = status
		if t.menuStatus != nil {
			t.menuStatus.SetTitle(status)
		}
	}
}

// Watch applies outputs to the menu until ctx is done or outputs closes.
func (t *Tray) Watch(ctx context.Context, outputs <-chan game.Output) {
	for {
		select {
		case <-ctx.Done():
			return
		case out, ok := <-outputs:
			if !ok {
				return
			}
			t.Update(out)
		}
	}
}

// Titles returns the current score and status item titles.
func (t *Tray) Titles() (score, status string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scoreTitle, t.statusTitle
}
