package tray

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/handrps/internal/game"
)

func TestNew(t *testing.T) {
	tr := New()
	score, status := tr.Titles()
	assert.Equal(t, "YOU 0 : 0 AI", score)
	assert.Equal(t, game.PromptText, status)
}

func TestUpdate(t *testing.T) {
	tr := New()

	tr.Update(game.Output{
		Status: "YOU WIN! ROCK ✊ BEATS SCISSORS ✌️",
		Score:  game.Score{Player: 3, Opponent: 1},
	})

	score, status := tr.Titles()
	assert.Equal(t, "YOU 3 : 1 AI", score)
	assert.Equal(t, "YOU WIN! ROCK ✊ BEATS SCISSORS ✌️", status)
}

func TestWatch(t *testing.T) {
	tr := New()
	outputs := make(chan game.Output, 2)
	outputs <- game.Output{Status: "Show hand in 3...", Countdown: 3}
	outputs <- game.Output{Status: "Show hand in 2...", Countdown: 2}
	close(outputs)

	done := make(chan struct{})
	go func() {
		tr.Watch(context.Background(), outputs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after channel closed")
	}

	_, status := tr.Titles()
	assert.Equal(t, "Show hand in 2...", status)
}

func TestWatch_ContextCancel(t *testing.T) {
	tr := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// blocks forever unless ctx is honoured
	tr.Watch(ctx, make(chan game.Output))
}

func TestCallbacks(t *testing.T) {
	tr := New()

	var started, reset, viewer, quit int
	tr.OnStartRound(func() { started++ })
	tr.OnResetGame(func() { reset++ })
	tr.OnOpenViewer(func() { viewer++ })
	tr.OnQuit(func() { quit++ })

	tr.fire(&tr.onStart)
	tr.fire(&tr.onStart)
	tr.fire(&tr.onReset)
	tr.fire(&tr.onViewer)
	tr.fire(&tr.onQuit)
	var none func()
	tr.fire(&none)

	assert.Equal(t, 2, started)
	assert.Equal(t, 1, reset)
	assert.Equal(t, 1, viewer)
	assert.Equal(t, 1, quit)
}
