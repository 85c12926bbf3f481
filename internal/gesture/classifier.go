package gesture

import "fmt"

// Finger indices within a Pattern, thumb to pinky.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// Pattern records which fingers are extended, thumb to pinky.
type Pattern [NumFingers]bool

// ParsePattern builds a Pattern from the detector's 0/1 wire form.
func ParsePattern(values []int) (Pattern, error) {
	var p Pattern
	if len(values) != NumFingers {
		return p, fmt.Errorf("finger pattern has %d values, expected %d", len(values), NumFingers)
	}
	for i, v := range values {
		switch v {
		case 0:
		case 1:
			p[i] = true
		default:
			return p, fmt.Errorf("finger %d has value %d, expected 0 or 1", i, v)
		}
	}
	return p, nil
}

// fingers is shorthand for writing pattern literals.
func fingers(thumb, index, middle, ring, pinky int) Pattern {
	return Pattern{thumb == 1, index == 1, middle == 1, ring == 1, pinky == 1}
}

// Reserved control patterns, checked before the move table.
var (
	StartPattern = fingers(0, 1, 0, 0, 0)
	ResetPattern = fingers(1, 0, 0, 0, 1)
)

// moveTemplates lists every accepted pattern per move label.
var moveTemplates = map[Pattern]Label{
	fingers(0, 0, 0, 0, 0): LabelRock,
	fingers(1, 0, 0, 0, 0): LabelRock,

	fingers(1, 1, 1, 1, 1): LabelPaper,
	fingers(0, 1, 1, 1, 1): LabelPaper,
	fingers(1, 1, 1, 1, 0): LabelPaper,
	fingers(1, 1, 0, 0, 0): LabelPaper,

	// ring finger is often half-raised mid-gesture
	fingers(0, 1, 1, 0, 0): LabelScissors,
	fingers(1, 1, 1, 0, 0): LabelScissors,
	fingers(0, 1, 1, 1, 0): LabelScissors,
}

// Classify maps a finger pattern to a label. A nil pattern means no hand
// was detected.
func Classify(p *Pattern) Label {
	if p == nil {
		return LabelNone
	}

	switch *p {
	case StartPattern:
		return LabelStart
	case ResetPattern:
		return LabelReset
	}

	if label, ok := moveTemplates[*p]; ok {
		return label
	}
	return LabelUnknown
}
