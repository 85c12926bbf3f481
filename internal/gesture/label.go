// Package gesture maps finger-extension patterns to game intents.
package gesture

import "fmt"

// Move is a playable Rock-Paper-Scissors shape.
type Move int

const (
	// MoveNone means no move was made.
	MoveNone Move = iota
	MoveRock
	MovePaper
	MoveScissors
)

// Moves lists the playable moves in a fixed order.
var Moves = [3]Move{MoveRock, MovePaper, MoveScissors}

// beats maps each move to the move it defeats.
var beats = map[Move]Move{
	MoveRock:     MoveScissors,
	MovePaper:    MoveRock,
	MoveScissors: MovePaper,
}

// Beats reports whether m defeats other.
func (m Move) Beats(other Move) bool {
	loser, ok := beats[m]
	return ok && loser == other
}

// Valid reports whether m is one of the three playable moves.
func (m Move) Valid() bool {
	return m >= MoveRock && m <= MoveScissors
}

func (m Move) String() string {
	switch m {
	case MoveRock:
		return "ROCK"
	case MovePaper:
		return "PAPER"
	case MoveScissors:
		return "SCISSORS"
	default:
		return "NONE"
	}
}

// MarshalText encodes the move by name.
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a move name written by MarshalText.
func (m *Move) UnmarshalText(text []byte) error {
	for _, v := range []Move{MoveNone, MoveRock, MovePaper, MoveScissors} {
		if v.String() == string(text) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown move %q", text)
}

// Display returns the decorated name shown to the player.
func (m Move) Display() string {
	switch m {
	case MoveRock:
		return "ROCK ✊"
	case MovePaper:
		return "PAPER ✋"
	case MoveScissors:
		return "SCISSORS ✌️"
	default:
		return ""
	}
}

// Label is the intent read from a single frame.
type Label int

const (
	// LabelNone means no hand is visible.
	LabelNone Label = iota
	LabelRock
	LabelPaper
	LabelScissors
	// LabelUnknown means a hand is visible but matches no template.
	LabelUnknown
	LabelStart
	LabelReset
)

// Move returns the move a label stands for, if any.
func (l Label) Move() (Move, bool) {
	switch l {
	case LabelRock:
		return MoveRock, true
	case LabelPaper:
		return MovePaper, true
	case LabelScissors:
		return MoveScissors, true
	default:
		return MoveNone, false
	}
}

// IsControl reports whether l is START or RESET.
func (l Label) IsControl() bool {
	return l == LabelStart || l == LabelReset
}

func (l Label) String() string {
	switch l {
	case LabelRock:
		return "ROCK"
	case LabelPaper:
		return "PAPER"
	case LabelScissors:
		return "SCISSORS"
	case LabelUnknown:
		return "UNKNOWN"
	case LabelStart:
		return "START"
	case LabelReset:
		return "RESET"
	default:
		return "NONE"
	}
}

// MarshalText encodes the label by name.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a label name written by MarshalText.
func (l *Label) UnmarshalText(text []byte) error {
	for v := LabelNone; v <= LabelReset; v++ {
		if v.String() == string(text) {
			*l = v
			return nil
		}
	}
	return fmt.Errorf("unknown label %q", text)
}

// Display returns the decorated label drawn next to the hand.
// NONE has no display text.
func (l Label) Display() string {
	if m, ok := l.Move(); ok {
		return m.Display()
	}
	switch l {
	case LabelUnknown:
		return "UNKNOWN ❓"
	case LabelStart:
		return "STARTING ☝️"
	case LabelReset:
		return "RESETTING 🤙"
	default:
		return ""
	}
}
