package scoredomain

import (
	"math"
	"sort"
	"strconv"

	"github.com/Black-And-White-Club/tripscore/app/shared"
)

// DefaultPar is used for holes entered without a par.
const DefaultPar = 4

// HoleInput is what a player enters for one hole. Strokes of 0 means the hole
// was not played and scores no points. Par and StrokeIndex default to
// DefaultPar and the hole number.
type HoleInput struct {
	Hole        int `json:"hole"`
	Strokes     int `json:"strokes"`
	Par         int `json:"par,omitempty"`
	StrokeIndex int `json:"stroke_index,omitempty"`
}

// StrokesReceived is the handicap allowance on a hole: one stroke per full 18
// of handicap, plus one more on holes whose stroke index is at most the
// remainder. Fractional handicaps are not rounded, so 12.4 gets a stroke on
// stroke index 1-12.
func StrokesReceived(handicap float64, strokeIndex int) int {
	n := int(math.Floor(handicap / 18))
	if float64(strokeIndex) <= math.Mod(handicap, 18) {
		n++
	}
	return n
}

// StablefordPoints scores one hole on net strokes relative to par.
func StablefordPoints(strokes, par int, handicap float64, strokeIndex int) int {
	if strokes <= 0 {
		return 0
	}
	rel := strokes - StrokesReceived(handicap, strokeIndex) - par
	switch {
	case rel <= -2:
		return max(5, 2-rel)
	case rel == -1:
		return 3
	case rel == 0:
		return 2
	case rel == 1:
		return 1
	default:
		return 0
	}
}

// ScoredRound is the result of scoring a full card.
type ScoredRound struct {
	Holes        []HoleScore
	FrontNine    int
	BackNine     int
	TotalStrokes int
}

// ScoreHoles scores an 18-hole card for a player with the given handicap.
// Holes 1-9 make the front nine and 10-18 the back nine.
func ScoreHoles(handicap float64, holes []HoleInput) (ScoredRound, error) {
	if len(holes) != HolesPerRound {
		return ScoredRound{}, shared.NewValidationError("holes", strconv.Itoa(len(holes)), "a card needs 18 holes")
	}

	sorted := make([]HoleInput, len(holes))
	copy(sorted, holes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Hole < sorted[j].Hole })

	var out ScoredRound
	out.Holes = make([]HoleScore, 0, HolesPerRound)
	for i, h := range sorted {
		if h.Hole != i+1 {
			return ScoredRound{}, shared.NewValidationError("holes", strconv.Itoa(h.Hole), "hole numbers must be 1-18 without repeats")
		}
		if h.Strokes < 0 {
			return ScoredRound{}, shared.NewValidationError("strokes", strconv.Itoa(h.Strokes), "must not be negative")
		}
		par := h.Par
		if par == 0 {
			par = DefaultPar
		}
		if par < 3 || par > 6 {
			return ScoredRound{}, shared.NewValidationError("par", strconv.Itoa(par), "must be between 3 and 6")
		}
		si := h.StrokeIndex
		if si == 0 {
			si = h.Hole
		}
		if si < 1 || si > HolesPerRound {
			return ScoredRound{}, shared.NewValidationError("stroke_index", strconv.Itoa(si), "must be between 1 and 18")
		}

		pts := StablefordPoints(h.Strokes, par, handicap, si)
		out.Holes = append(out.Holes, HoleScore{
			Hole:             h.Hole,
			Strokes:          h.Strokes,
			Par:              par,
			StrokeIndex:      si,
			StablefordPoints: pts,
		})
		out.TotalStrokes += h.Strokes
		if h.Hole <= 9 {
			out.FrontNine += pts
		} else {
			out.BackNine += pts
		}
	}
	return out, nil
}
