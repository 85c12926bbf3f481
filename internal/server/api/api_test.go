package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/store"
)

type fakeSession struct {
	state    game.Output
	startErr error
	resetErr error
	starts   int
	resets   int
}

func (f *fakeSession) State() game.Output { return f.state }

func (f *fakeSession) StartRound(ctx context.Context) error {
	f.starts++
	if f.startErr == nil {
		f.state.Phase = game.PhaseCountingDown
	}
	return f.startErr
}

func (f *fakeSession) ResetGame(ctx context.Context) error {
	f.resets++
	return f.resetErr
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedRounds(t *testing.T, s *store.Store, outcomes ...string) []*store.Round {
	t.Helper()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var rounds []*store.Round
	for i, o := range outcomes {
		r := &store.Round{
			PlayerMove:   "ROCK",
			OpponentMove: "PAPER",
			Outcome:      o,
			Result:       o,
			ResolvedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Rounds().Create(r))
		rounds = append(rounds, r)
	}
	return rounds
}

func TestRoundHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedRounds(t, s, "loss", "win", "win", "tie")
	h := NewRoundHandler(s)

	t.Run("newest first with counts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rounds", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp listRoundsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Rounds, 4)
		assert.Equal(t, 4, resp.Rounds[0].Seq)
		assert.Equal(t, "tie", resp.Rounds[0].Outcome)
		assert.Equal(t, map[string]int{"loss": 1, "win": 2, "tie": 1}, resp.Counts)
	})

	t.Run("limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rounds?limit=2", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp listRoundsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Rounds, 2)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rounds?limit=abc", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rounds", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRoundHandler_Empty(t *testing.T) {
	h := NewRoundHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rounds", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rounds":[],"counts":{}}`, rec.Body.String())
}

func TestRoundHandler_Get(t *testing.T) {
	s := newTestStore(t)
	rounds := seedRounds(t, s, "win")
	h := NewRoundHandler(s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rounds/"+rounds[0].ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got store.Round
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, rounds[0].ID, got.ID)
	assert.Equal(t, "win", got.Outcome)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rounds/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameHandler_State(t *testing.T) {
	sess := &fakeSession{state: game.Output{
		Status: game.PromptText,
		Phase:  game.PhaseResultShown,
		Score:  game.Score{Player: 2, Opponent: 1},
	}}
	h := NewGameHandler(sess)

	rec := httptest.NewRecorder()
	h.State(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "result_shown", got["phase"])
	assert.Equal(t, game.PromptText, got["status"])
	assert.Equal(t, map[string]any{"player": 2.0, "opponent": 1.0}, got["score"])

	rec = httptest.NewRecorder()
	h.State(rec, httptest.NewRequest(http.MethodPost, "/api/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGameHandler_Commands(t *testing.T) {
	tests := []struct {
		name     string
		startErr error
		resetErr error
		call     func(h *GameHandler) http.HandlerFunc
		want     int
	}{
		{"start ok", nil, nil, func(h *GameHandler) http.HandlerFunc { return h.StartRound }, http.StatusOK},
		{"start during countdown", game.ErrCountdownActive, nil, func(h *GameHandler) http.HandlerFunc { return h.StartRound }, http.StatusConflict},
		{"start loop down", errors.New("frame loop is not running"), nil, func(h *GameHandler) http.HandlerFunc { return h.StartRound }, http.StatusServiceUnavailable},
		{"reset ok", nil, nil, func(h *GameHandler) http.HandlerFunc { return h.Reset }, http.StatusOK},
		{"reset at zero", nil, game.ErrAlreadyZero, func(h *GameHandler) http.HandlerFunc { return h.Reset }, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{startErr: tt.startErr, resetErr: tt.resetErr}
			h := NewGameHandler(sess)

			rec := httptest.NewRecorder()
			tt.call(h)(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, tt.want, rec.Code)

			if tt.want != http.StatusOK {
				var resp errorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Error)
			}
		})
	}

	t.Run("commands require POST", func(t *testing.T) {
		sess := &fakeSession{}
		h := NewGameHandler(sess)

		rec := httptest.NewRecorder()
		h.StartRound(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, 0, sess.starts)
	})
}
