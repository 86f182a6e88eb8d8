package shotdomain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

const maxHole = 18

// Types lists the declarable special-shot competitions.
var Types = []competition.Kind{competition.KindClosestToPin, competition.KindLongestDrive}

// ParseType accepts "closestToPin" or "longestDrive", case-insensitively.
func ParseType(s string) (competition.Kind, error) {
	for _, t := range Types {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", shared.NewValidationError("type", s, "must be closestToPin or longestDrive")
}

// SpecialShot is the declared winner of one (date, type) competition.
type SpecialShot struct {
	PlayerID  string           `json:"player_id"`
	Date      string           `json:"date"`
	Type      competition.Kind `json:"type"`
	Hole      int              `json:"hole,omitempty"`
	Distance  float64          `json:"distance,omitempty"`
	UpdatedAt time.Time        `json:"updated_at,omitzero"`
}

func Key(date string, kind competition.Kind) string {
	return fmt.Sprintf("%s.%s", date, kind)
}

func (s SpecialShot) Key() string { return Key(s.Date, s.Type) }

// Validate checks the declaration against the roster and calendar.
func (s SpecialShot) Validate(roster *rosterdomain.Roster, cal *competition.Calendar) error {
	if _, err := ParseType(string(s.Type)); err != nil {
		return err
	}
	if err := roster.Validate(s.PlayerID); err != nil {
		return err
	}
	if err := cal.Validate(s.Date); err != nil {
		return err
	}
	if s.Hole < 0 || s.Hole > maxHole {
		return shared.NewValidationError("hole", strconv.Itoa(s.Hole), "must be 1-18")
	}
	if s.Distance < 0 {
		return shared.NewValidationError("distance", strconv.FormatFloat(s.Distance, 'f', -1, 64), "must not be negative")
	}
	return nil
}
