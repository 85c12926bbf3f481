package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
)

func TestLabelOrigin(t *testing.T) {
	t.Run("below the hand", func(t *testing.T) {
		bbox := image.Rect(100, 50, 200, 250)
		assert.Equal(t, image.Pt(100, 260), LabelOrigin(bbox, 480))
	})

	t.Run("above the hand near the bottom edge", func(t *testing.T) {
		bbox := image.Rect(100, 200, 200, 430)
		assert.Equal(t, image.Pt(100, 150), LabelOrigin(bbox, 480))
	})

	t.Run("exactly at the limit stays below", func(t *testing.T) {
		bbox := image.Rect(0, 100, 50, 420)
		assert.Equal(t, image.Pt(0, 430), LabelOrigin(bbox, 480))
	})
}

func TestBannerColor(t *testing.T) {
	tests := []struct {
		name string
		out  game.Output
		want color.RGBA
	}{
		{"counting down", game.Output{Phase: game.PhaseCountingDown, Status: "Show hand in 2..."}, Amber},
		{"win", game.Output{Phase: game.PhaseResultShown, Status: "YOU WIN! ROCK ✊ BEATS SCISSORS ✌️"}, Green},
		{"loss", game.Output{Phase: game.PhaseResultShown, Status: "AI WINS! PAPER ✋ BEATS ROCK ✊"}, Red},
		{"tie", game.Output{Phase: game.PhaseResultShown, Status: "TIE! BOTH CHOSE ROCK ✊"}, SkyBlue},
		{"prompt", game.Output{Status: game.PromptText}, Blue},
		{"invalid", game.Output{Phase: game.PhaseResultShown, Status: game.InvalidMoveText}, Blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BannerColor(tt.out))
		})
	}
}

func TestLabelColor(t *testing.T) {
	assert.Equal(t, Holding, LabelColor(game.Output{Holding: true}))
	assert.Equal(t, White, LabelColor(game.Output{}))
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "ROCK", Plain("ROCK ✊"))
	assert.Equal(t, "STARTING IN 1.5s", Plain("STARTING ☝️ IN 1.5s"))
	assert.Equal(t, "Show to Start | Show to Reset", Plain(game.PromptText))
	assert.Equal(t, "", Plain(""))
}

func TestScoreLine(t *testing.T) {
	assert.Equal(t, "YOU 2 : 1 AI", ScoreLine(game.Score{Player: 2, Opponent: 1}))
}

func TestDraw(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hand := detector.ScissorsHand()
	out := game.Output{
		Status:    "Show hand in 2...",
		Countdown: 2,
		Label:     "SCISSORS ✌️",
		Phase:     game.PhaseCountingDown,
	}

	Draw(&frame, &hand, out)

	assert.Equal(t, 480, frame.Rows())
	assert.Equal(t, 640, frame.Cols())
	// banner is filled with the countdown colour; Mat pixels are BGR
	px := frame.GetVecbAt(470, 5)
	assert.Equal(t, []uint8{Amber.B, Amber.G, Amber.R}, []uint8{px[0], px[1], px[2]})

	// nil hand and empty frames are tolerated
	Draw(&frame, nil, game.Output{Status: game.PromptText})
	empty := gocv.NewMat()
	defer empty.Close()
	Draw(&empty, &hand, out)
}
