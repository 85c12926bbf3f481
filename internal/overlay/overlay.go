// Package overlay draws the game state onto captured frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
)

// Overlay palette.
var (
	White    = color.RGBA{R: 255, G: 255, B: 255}
	Black    = color.RGBA{}
	Holding  = color.RGBA{R: 255, G: 255, B: 0}
	Amber    = color.RGBA{R: 0xf5, G: 0x9e, B: 0x0b}
	Blue     = color.RGBA{R: 0x25, G: 0x63, B: 0xeb}
	Green    = color.RGBA{R: 0x10, G: 0xb9, B: 0x81}
	Red      = color.RGBA{R: 0xef, G: 0x44, B: 0x44}
	SkyBlue  = color.RGBA{R: 0x0e, G: 0xa5, B: 0xe9}
	boxColor = color.RGBA{R: 255, G: 0, B: 255}
)

const (
	font       = gocv.FontHersheySimplex
	labelScale = 1.0
	labelGap   = 10
	// labelHeight is the room kept below a hand before the label flips
	// above the bounding box.
	labelHeight = 50
	bannerSize  = 60
)

// LabelOrigin returns the top-left corner of the hand label: just below
// the bounding box, or above it when that would run off the frame.
func LabelOrigin(bbox image.Rectangle, frameHeight int) image.Point {
	y := bbox.Max.Y + labelGap
	if y > frameHeight-labelHeight {
		y = bbox.Min.Y - labelHeight
	}
	return image.Point{X: bbox.Min.X, Y: y}
}

// BannerColor picks the status banner colour for an output.
func BannerColor(out game.Output) color.RGBA {
	if out.Phase == game.PhaseCountingDown {
		return Amber
	}
	status := strings.ToUpper(out.Status)
	switch {
	case strings.Contains(status, "YOU WIN"):
		return Green
	case strings.Contains(status, "AI WINS"):
		return Red
	case strings.Contains(status, "TIE"):
		return SkyBlue
	default:
		return Blue
	}
}

// LabelColor is yellow while a START or RESET hold is pending.
func LabelColor(out game.Output) color.RGBA {
	if out.Holding {
		return Holding
	}
	return White
}

// Plain strips characters the Hershey fonts cannot draw and collapses the
// whitespace left behind.
func Plain(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ScoreLine is the scoreboard text drawn in the top-left corner.
func ScoreLine(s game.Score) string {
	return fmt.Sprintf("YOU %d : %d AI", s.Player, s.Opponent)
}

// Draw renders the hand box and label, the countdown and the status
// banner onto frame in place. hand may be nil.
func Draw(frame *gocv.Mat, hand *detector.Hand, out game.Output) {
	if frame == nil || frame.Empty() {
		return
	}
	width, height := frame.Cols(), frame.Rows()

	if hand != nil {
		gocv.Rectangle(frame, hand.BBox, boxColor, 2)
		if label := Plain(out.Label); label != "" {
			origin := LabelOrigin(hand.BBox, height)
			// PutText anchors on the baseline
			baseline := origin.Add(image.Pt(0, 30))
			shadowText(frame, label, baseline, labelScale, LabelColor(out), 2)
		}
	}

	shadowText(frame, ScoreLine(out.Score), image.Pt(10, 30), 0.8, White, 2)

	if out.Phase == game.PhaseCountingDown && out.Countdown > 0 {
		digit := fmt.Sprintf("%d", out.Countdown)
		center := image.Pt(width/2-30, height/2+40)
		shadowText(frame, digit, center, 4.0, Amber, 8)
	}

	banner := image.Rect(0, height-bannerSize, width, height)
	gocv.Rectangle(frame, banner, BannerColor(out), -1)
	gocv.PutText(frame, Plain(out.Status), image.Pt(15, height-bannerSize/2+10), font, 0.8, White, 2)
}

// shadowText draws text with a dark drop shadow for readability.
func shadowText(frame *gocv.Mat, text string, org image.Point, scale float64, c color.RGBA, thickness int) {
	gocv.PutText(frame, text, org.Add(image.Pt(2, 2)), font, scale, Black, thickness)
	gocv.PutText(frame, text, org, font, scale, c, thickness)
}
