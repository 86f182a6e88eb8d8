// Package scoredomain holds the round score record and Stableford scoring.
package scoredomain

import (
	"fmt"
	"strconv"
	"time"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

// HolesPerRound is the length of a full hole-by-hole breakdown.
const HolesPerRound = 18

// HoleScore is one hole of an optional breakdown.
type HoleScore struct {
	Hole             int `json:"hole"`
	Strokes          int `json:"strokes"`
	Par              int `json:"par"`
	StrokeIndex      int `json:"stroke_index,omitempty"`
	StablefordPoints int `json:"stableford_points"`
}

// RoundScore is one player's result for one competition day. TotalPoints is
// always FrontNinePoints + BackNinePoints.
type RoundScore struct {
	PlayerID        string      `json:"player_id"`
	Date            string      `json:"date"`
	FrontNinePoints int         `json:"front_nine_points"`
	BackNinePoints  int         `json:"back_nine_points"`
	TotalPoints     int         `json:"total_points"`
	Holes           []HoleScore `json:"holes,omitempty"`
	TotalStrokes    int         `json:"total_strokes,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Key is the natural key "<date>.<playerId>".
func Key(date, playerID string) string {
	return date + "." + playerID
}

func (r RoundScore) Key() string { return Key(r.Date, r.PlayerID) }

// Normalized returns a copy with the total recomputed from the two nines.
func (r RoundScore) Normalized() RoundScore {
	r.TotalPoints = r.FrontNinePoints + r.BackNinePoints
	if len(r.Holes) > 0 {
		holes := make([]HoleScore, len(r.Holes))
		copy(holes, r.Holes)
		r.Holes = holes
	}
	return r
}

// Points returns the points counted for a segment.
func (r RoundScore) Points(seg competition.Segment) int {
	switch seg {
	case competition.SegmentFront9:
		return r.FrontNinePoints
	case competition.SegmentBack9:
		return r.BackNinePoints
	default:
		return r.FrontNinePoints + r.BackNinePoints
	}
}

// Validate checks the record against the roster and calendar.
func (r RoundScore) Validate(roster *rosterdomain.Roster, cal *competition.Calendar) error {
	if err := roster.Validate(r.PlayerID); err != nil {
		return err
	}
	if err := cal.Validate(r.Date); err != nil {
		return err
	}
	if r.FrontNinePoints < 0 {
		return shared.NewValidationError("front_nine_points", strconv.Itoa(r.FrontNinePoints), "must not be negative")
	}
	if r.BackNinePoints < 0 {
		return shared.NewValidationError("back_nine_points", strconv.Itoa(r.BackNinePoints), "must not be negative")
	}
	if r.TotalStrokes < 0 {
		return shared.NewValidationError("total_strokes", strconv.Itoa(r.TotalStrokes), "must not be negative")
	}
	if len(r.Holes) == 0 {
		return nil
	}
	if len(r.Holes) != HolesPerRound {
		return shared.NewValidationError("holes", strconv.Itoa(len(r.Holes)), fmt.Sprintf("breakdown must have %d holes", HolesPerRound))
	}
	seen := make(map[int]bool, HolesPerRound)
	for _, h := range r.Holes {
		if h.Hole < 1 || h.Hole > HolesPerRound || seen[h.Hole] {
			return shared.NewValidationError("holes", strconv.Itoa(h.Hole), "hole numbers must be 1-18 without repeats")
		}
		seen[h.Hole] = true
	}
	return nil
}
