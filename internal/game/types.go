// Package game implements the gesture-driven Rock-Paper-Scissors round
// state machine.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/handrps/internal/gesture"
)

// Default timing windows.
const (
	DefaultHoldDuration     = 2 * time.Second
	DefaultCountdownSeconds = 3
)

// Status lines shown outside of a hold or countdown.
const (
	PromptText      = "Show ☝️ to Start | Show 🤙 to Reset"
	AlreadyZeroText = "SCORE IS ALREADY 0-0"
	InvalidMoveText = "Invalid move! Try again."
)

var (
	// ErrCountdownActive is returned when a command arrives while a
	// countdown is running. A countdown always runs to resolution.
	ErrCountdownActive = errors.New("countdown in progress")
	// ErrAlreadyZero is returned when resetting a 0-0 score.
	ErrAlreadyZero = errors.New("score is already 0-0")
)

// Phase is the round lifecycle stage.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountingDown
	PhaseResultShown
)

func (p Phase) String() string {
	switch p {
	case PhaseCountingDown:
		return "counting_down"
	case PhaseResultShown:
		return "result_shown"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for v := PhaseIdle; v <= PhaseResultShown; v++ {
		if v.String() == string(text) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Score is the session scoreboard.
type Score struct {
	Player   int `json:"player"`
	Opponent int `json:"opponent"`
}

// IsZero reports whether neither side has scored.
func (s Score) IsZero() bool {
	return s.Player == 0 && s.Opponent == 0
}

// Outcome is the result of a resolved round from the player's side.
type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeTie
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTie:
		return "tie"
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "invalid"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name written by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	for v := OutcomeInvalid; v <= OutcomeLoss; v++ {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Round records a single countdown resolution.
type Round struct {
	Player     gesture.Label `json:"player"`
	Opponent   gesture.Move  `json:"opponent"`
	Outcome    Outcome       `json:"outcome"`
	Result     string        `json:"result"`
	Score      Score         `json:"score"`
	ResolvedAt time.Time     `json:"resolved_at"`
}

// Output is everything the renderer needs for one frame.
type Output struct {
	Status       string `json:"status"`
	Countdown    int    `json:"countdown"`
	Label        string `json:"label"`
	Phase        Phase  `json:"phase"`
	Score        Score  `json:"score"`
	Holding      bool   `json:"holding"`
	PlayerMove   string `json:"player_move,omitempty"`
	OpponentMove string `json:"opponent_move,omitempty"`

	// Resolved is set only on the tick that resolved a round.
	Resolved *Round `json:"resolved,omitempty"`
}

// Picker chooses the opponent's move. *rand.Rand from math/rand/v2
// satisfies it.
type Picker interface {
	IntN(n int) int
}

// Config holds the timing windows of the state machine.
type Config struct {
	// HoldDuration is how long START or RESET must be held to fire.
	HoldDuration time.Duration
	// CountdownSeconds is the length of the countdown window.
	CountdownSeconds int
}

// DefaultConfig returns the standard timing windows.
func DefaultConfig() Config {
	return Config{
		HoldDuration:     DefaultHoldDuration,
		CountdownSeconds: DefaultCountdownSeconds,
	}
}
