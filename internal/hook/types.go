// Package hook runs user executables when game events happen, such as a
// round resolving or the score being reset.
package hook

import (
	"slices"
	"time"

	"github.com/ayusman/handrps/internal/game"
)

// Event types delivered to hooks.
const (
	EventRoundResolved = "round_resolved"
	EventGameReset     = "game_reset"
)

// Manifest describes a hook's metadata and the events it wants.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Event is sent to a hook as JSON on stdin.
type Event struct {
	Type  string      `json:"type"`
	Round *game.Round `json:"round,omitempty"`
	Score game.Score  `json:"score"`
	At    time.Time   `json:"at"`
}

// RoundResolved builds the event for a resolved round.
func RoundResolved(r game.Round) Event {
	return Event{Type: EventRoundResolved, Round: &r, Score: r.Score, At: r.ResolvedAt}
}

// GameReset builds the event for a score reset.
func GameReset(at time.Time) Event {
	return Event{Type: EventGameReset, At: at}
}

// Response is what a hook writes to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Wants reports whether the hook subscribed to eventType. A manifest
// without events receives all of them.
func (h *Hook) Wants(eventType string) bool {
	return len(h.Manifest.Events) == 0 || slices.Contains(h.Manifest.Events, eventType)
}
