package game

import (
	"fmt"
	"time"

	"github.com/ayusman/handrps/internal/gesture"
)

// holdTracker remembers which control label is being held and since when.
// The zero value is empty.
type holdTracker struct {
	label gesture.Label
	since time.Time
}

func (h *holdTracker) clear() {
	*h = holdTracker{}
}

// Game is the round state machine. It never reads a clock; every
// timestamp comes from Tick or StartRound. Game is not safe for concurrent
// use and must be owned by a single driving loop.
type Game struct {
	cfg    Config
	picker Picker

	phase          Phase
	score          Score
	hold           holdTracker
	countdownStart time.Time
	playerMove     gesture.Label
	opponentMove   gesture.Move
	result         string

	last Output
}

// New creates a Game in the idle phase with a 0-0 score.
// Zero fields in cfg fall back to the defaults.
func New(cfg Config, picker Picker) *Game {
	if cfg.HoldDuration <= 0 {
		cfg.HoldDuration = DefaultHoldDuration
	}
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = DefaultCountdownSeconds
	}

	g := &Game{
		cfg:    cfg,
		picker: picker,
		phase:  PhaseIdle,
	}
	g.last = g.output(PromptText, 0, gesture.LabelNone, false)
	return g
}

// Phase returns the current round phase.
func (g *Game) Phase() Phase { return g.phase }

// Score returns the current scoreboard.
func (g *Game) Score() Score { return g.score }

// Snapshot returns the output of the most recent tick or command.
func (g *Game) Snapshot() Output { return g.last }

// Tick advances the state machine by one frame. label is the current
// frame's classification and now its capture time. Timestamps must not go
// backwards between calls.
func (g *Game) Tick(label gesture.Label, now time.Time) Output {
	var (
		status    string
		countdown int
		holding   bool
		resolved  *Round
	)

	if g.phase != PhaseCountingDown && label.IsControl() {
		if label == gesture.LabelReset && g.score.IsZero() {
			status = AlreadyZeroText
			g.hold.clear()
		} else {
			if g.hold.label != label {
				g.hold = holdTracker{label: label, since: now}
			}

			elapsed := now.Sub(g.hold.since)
			remaining := g.cfg.HoldDuration - elapsed
			if remaining < 0 {
				remaining = 0
			}
			status = fmt.Sprintf("%s IN %.1fs", label.Display(), remaining.Seconds())
			holding = elapsed < g.cfg.HoldDuration

			if elapsed >= g.cfg.HoldDuration {
				if label == gesture.LabelStart {
					g.beginCountdown(now)
				} else {
					g.resetGame()
				}
				g.hold.clear()
			}
		}
	} else {
		g.hold.clear()
	}

	if g.phase == PhaseCountingDown {
		elapsed := now.Sub(g.countdownStart)
		remaining := g.cfg.CountdownSeconds - int(elapsed/time.Second)
		if remaining <= 0 {
			resolved = g.resolve(label, now)
		} else {
			status = fmt.Sprintf("Show hand in %d...", remaining)
			countdown = remaining
		}
	}

	if status == "" && g.phase != PhaseCountingDown {
		status = g.result
		if status == "" {
			status = PromptText
		}
	}

	out := g.output(status, countdown, label, holding)
	out.Resolved = resolved
	g.last = out
	return out
}

// StartRound begins a countdown immediately, bypassing the START hold.
func (g *Game) StartRound(now time.Time) error {
	if g.phase == PhaseCountingDown {
		return ErrCountdownActive
	}
	g.hold.clear()
	g.beginCountdown(now)
	g.last = g.output(fmt.Sprintf("Show hand in %d...", g.cfg.CountdownSeconds), g.cfg.CountdownSeconds, gesture.LabelNone, false)
	return nil
}

// Reset clears the scoreboard, bypassing the RESET hold.
func (g *Game) Reset() error {
	if g.phase == PhaseCountingDown {
		return ErrCountdownActive
	}
	if g.score.IsZero() {
		g.hold.clear()
		g.last = g.output(AlreadyZeroText, 0, gesture.LabelNone, false)
		return ErrAlreadyZero
	}
	g.resetGame()
	g.last = g.output(PromptText, 0, gesture.LabelNone, false)
	return nil
}

func (g *Game) beginCountdown(now time.Time) {
	g.phase = PhaseCountingDown
	g.countdownStart = now
	g.playerMove = gesture.LabelNone
	g.opponentMove = gesture.MoveNone
	g.result = ""
}

func (g *Game) resetGame() {
	g.score = Score{}
	g.phase = PhaseIdle
	g.playerMove = gesture.LabelNone
	g.opponentMove = gesture.MoveNone
	g.result = ""
	g.hold.clear()
}

// resolve closes the countdown using the label seen at expiry.
func (g *Game) resolve(label gesture.Label, now time.Time) *Round {
	g.opponentMove = gesture.Moves[g.picker.IntN(len(gesture.Moves))]
	if _, ok := label.Move(); ok {
		g.playerMove = label
	} else {
		g.playerMove = gesture.LabelUnknown
	}

	outcome := g.evaluateRound()
	g.phase = PhaseResultShown

	return &Round{
		Player:     g.playerMove,
		Opponent:   g.opponentMove,
		Outcome:    outcome,
		Result:     g.result,
		Score:      g.score,
		ResolvedAt: now,
	}
}

// evaluateRound scores the stored moves. It never changes the phase.
func (g *Game) evaluateRound() Outcome {
	p, ok := g.playerMove.Move()
	if !ok {
		g.result = InvalidMoveText
		return OutcomeInvalid
	}
	o := g.opponentMove

	switch {
	case p == o:
		g.result = fmt.Sprintf("TIE! BOTH CHOSE %s", p.Display())
		return OutcomeTie
	case p.Beats(o):
		g.score.Player++
		g.result = fmt.Sprintf("YOU WIN! %s BEATS %s", p.Display(), o.Display())
		return OutcomeWin
	default:
		g.score.Opponent++
		g.result = fmt.Sprintf("AI WINS! %s BEATS %s", o.Display(), p.Display())
		return OutcomeLoss
	}
}

func (g *Game) output(status string, countdown int, label gesture.Label, holding bool) Output {
	out := Output{
		Status:    status,
		Countdown: countdown,
		Label:     label.Display(),
		Phase:     g.phase,
		Score:     g.score,
		Holding:   holding,
	}
	if g.playerMove != gesture.LabelNone {
		out.PlayerMove = g.playerMove.String()
	}
	if g.opponentMove != gesture.MoveNone {
		out.OpponentMove = g.opponentMove.String()
	}
	return out
}
