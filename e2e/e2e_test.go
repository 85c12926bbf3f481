package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/app"
	"github.com/ayusman/handrps/internal/capture"
	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/server"
	"github.com/ayusman/handrps/internal/store"
)

type scissorsPicker struct{}

func (scissorsPicker) IntN(n int) int { return 2 }

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	require.Equal(t, gesture.MoveScissors, gesture.Moves[2])

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	st, err := store.New(store.MemoryDSN)
	require.NoError(t, err)
	defer st.Close()

	frame := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	logger := log.New(io.Discard)
	clock := quartz.NewMock(t)
	det := detector.NewMockDetector()

	session := app.New(app.Config{
		Mirror:   true,
		Store:    st,
		Logger:   logger,
		Camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Detector: det,
		Picker:   scissorsPicker{},
		Clock:    clock,
	})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- session.Run(runCtx) }()
	require.Eventually(t, session.IsRunning, time.Second, time.Millisecond)

	ts := httptest.NewServer(server.New(server.Config{Store: st, Session: session, Logger: logger}))
	defer ts.Close()
	client := ts.Client()

	// advance steps the frame loop until cond holds
	advance := func(cond func() bool) {
		t.Helper()
		require.Eventually(t, func() bool {
			clock.Advance(session.FramePeriod()).MustWait(ctx)
			return cond()
		}, 10*time.Second, time.Millisecond)
	}

	post := func(path string) int {
		t.Helper()
		resp, err := client.Post(ts.URL+path, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	getJSON := func(path string, v any) {
		t.Helper()
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial game.Output
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, game.PromptText, initial.Status)

	t.Run("FramesFlow", func(t *testing.T) {
		advance(func() bool { return session.LatestFrame() != nil })
	})

	t.Run("StartRound", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post("/api/round/start"))
		assert.Equal(t, http.StatusConflict, post("/api/round/start"))
		assert.Equal(t, http.StatusConflict, post("/api/game/reset"))
	})

	t.Run("ViewerSeesCountdown", func(t *testing.T) {
		det.SetHands(detector.RockHand())
		clock.Advance(session.FramePeriod()).MustWait(ctx)

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var out game.Output
			require.NoError(t, conn.ReadJSON(&out))
			if out.Phase == game.PhaseCountingDown {
				break
			}
		}
	})

	t.Run("RoundResolves", func(t *testing.T) {
		advance(func() bool { return session.State().Phase == game.PhaseResultShown })

		var state game.Output
		getJSON("/api/state", &state)
		assert.Equal(t, game.Score{Player: 1}, state.Score)
		assert.Equal(t, "YOU WIN! ROCK ✊ BEATS SCISSORS ✌️", state.Status)

		var rounds struct {
			Rounds []store.Round  `json:"rounds"`
			Counts map[string]int `json:"counts"`
		}
		getJSON("/api/rounds", &rounds)
		require.Len(t, rounds.Rounds, 1)
		assert.Equal(t, "ROCK", rounds.Rounds[0].PlayerMove)
		assert.Equal(t, "SCISSORS", rounds.Rounds[0].OpponentMove)
		assert.Equal(t, map[string]int{"win": 1}, rounds.Counts)
	})

	t.Run("ResetGame", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post("/api/game/reset"))

		var state game.Output
		getJSON("/api/state", &state)
		assert.True(t, state.Score.IsZero())
		assert.Equal(t, game.PhaseIdle, state.Phase)

		assert.Equal(t, http.StatusConflict, post("/api/game/reset"))
	})

	stop()
	require.NoError(t, <-done)

	assert.Equal(t, http.StatusServiceUnavailable, post("/api/round/start"))
}
