package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/capture"
	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/hook"
	"github.com/ayusman/handrps/internal/overlay"
	"github.com/ayusman/handrps/internal/store"
)

// processFrame runs one frame through the pipeline:
//  1. read and mirror a camera frame
//  2. detect the hand and classify its finger pattern
//  3. advance the game with the label and the frame time
//  4. draw the overlay and publish the result
//  5. record a resolved round and notify hooks
//
// A failed capture skips the tick entirely. A failed detection counts as
// no hand so a running countdown still resolves on time.
func (a *App) processFrame(now time.Time) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.logger.Warn("Error reading frame", "err", err)
		return
	}
	defer frame.Close()

	if a.config.Mirror {
		capture.Mirror(frame)
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.logger.Debug("Error detecting hands", "err", err)
		hands = nil
	}

	hand := detector.Primary(hands)
	var pattern *gesture.Pattern
	if hand != nil {
		pattern = &hand.Fingers
	}
	label := gesture.Classify(pattern)

	out := a.game.Tick(label, now)

	overlay.Draw(frame, hand, out)
	a.setState(out, encodeJPEG(frame))
	a.note(out)
	a.hub.Publish(out)

	if out.Resolved != nil {
		a.recordRound(*out.Resolved)
	}
}

func (a *App) recordRound(r game.Round) {
	a.logger.Info("Round resolved",
		"player", r.Player,
		"opponent", r.Opponent,
		"outcome", r.Outcome,
		"score", r.Score.Player,
		"ai_score", r.Score.Opponent)

	if a.config.Hooks != nil {
		a.config.Hooks.Notify(hook.RoundResolved(r))
	}

	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Rounds().Create(store.FromGame(r)); err != nil {
		a.logger.Error("Failed to record round", "err", err)
	}
}

func encodeJPEG(frame *gocv.Mat) []byte {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil
	}
	defer buf.Close()

	// GetBytes aliases C memory that Close frees
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
