package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ayusman/handrps/internal/game"
)

// Session is the running game as seen by the API.
type Session interface {
	State() game.Output
	StartRound(ctx context.Context) error
	ResetGame(ctx context.Context) error
}

// GameHandler exposes the live game state and the button commands.
type GameHandler struct {
	session Session
}

// NewGameHandler creates a new GameHandler for the given session.
func NewGameHandler(s Session) *GameHandler {
	return &GameHandler{session: s}
}

// State handles GET /api/state.
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.State())
}

// StartRound handles POST /api/round/start.
func (h *GameHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.session.StartRound)
}

// Reset handles POST /api/game/reset.
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.session.ResetGame)
}

func (h *GameHandler) command(w http.ResponseWriter, r *http.Request, run func(context.Context) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := run(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, game.ErrCountdownActive) || errors.Is(err, game.ErrAlreadyZero) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.session.State())
}
