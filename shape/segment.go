package shape

import (
	"github.com/go-text/typesetting/di"
	"golang.org/x/text/unicode/bidi"
)

// run is a contiguous range of runes sharing one direction.
type run struct {
	start     int
	end       int // exclusive
	direction di.Direction
}

// visualRuns resolves the bidi embedding of runes and returns the runs in
// visual order, left to right. Each run is shaped independently so
// right-to-left spans come out of HarfBuzz already mirrored.
func visualRuns(runes []rune, dir Direction) []run {
	if len(runes) == 0 {
		return nil
	}

	var defaultDir bidi.Direction
	switch dir {
	case DirectionLTR:
		defaultDir = bidi.LeftToRight
	case DirectionRTL:
		defaultDir = bidi.RightToLeft
	default:
		defaultDir = bidi.Neutral
	}

	p := bidi.Paragraph{}
	_, _ = p.SetString(string(runes), bidi.DefaultDirection(defaultDir))

	ordering, err := p.Order()
	if err != nil {
		return []run{{start: 0, end: len(runes), direction: di.DirectionLTR}}
	}

	runs := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)

		// Run.Pos reports rune indices, start and end inclusive.
		startRune, endRune := r.Pos()
		if startRune < 0 || endRune >= len(runes) || startRune > endRune {
			continue
		}

		direction := di.DirectionLTR
		if r.Direction() == bidi.RightToLeft {
			direction = di.DirectionRTL
		}
		runs = append(runs, run{start: startRune, end: endRune + 1, direction: direction})
	}

	if len(runs) == 0 {
		return []run{{start: 0, end: len(runes), direction: di.DirectionLTR}}
	}
	return runs
}
