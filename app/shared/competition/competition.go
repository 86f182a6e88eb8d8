// Package competition describes the fixed shape of the series: the ordered
// competition days, the scoring segments and the prize rules.
package competition

import (
	"fmt"
	"strings"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/shared"
)

// DateLayout is the ISO date format used for every competition day key.
const DateLayout = "2006-01-02"

// OverallDate is the date field carried by the series-wide winner.
const OverallDate = "Overall"

// Segment selects which points a day leaderboard ranks by.
type Segment string

const (
	SegmentFront9    Segment = "front9"
	SegmentBack9     Segment = "back9"
	SegmentFullRound Segment = "fullRound"
)

// Segments lists the scoring segments in display order.
var Segments = []Segment{SegmentFront9, SegmentBack9, SegmentFullRound}

func ParseSegment(s string) (Segment, error) {
	for _, seg := range Segments {
		if strings.EqualFold(string(seg), s) {
			return seg, nil
		}
	}
	return "", shared.NewValidationError("segment", s, "must be one of front9, back9, fullRound")
}

// Kind identifies one competition type on a day (or the series).
type Kind string

const (
	KindFront9       Kind = "front9"
	KindBack9        Kind = "back9"
	KindFullRound    Kind = "fullRound"
	KindClosestToPin Kind = "closestToPin"
	KindLongestDrive Kind = "longestDrive"
	KindOverall      Kind = "overall"
)

// DailyKinds lists the per-day competitions in derivation order.
var DailyKinds = []Kind{KindFront9, KindBack9, KindFullRound, KindClosestToPin, KindLongestDrive}

func (k Kind) Label() string {
	switch k {
	case KindFront9:
		return "Front 9"
	case KindBack9:
		return "Back 9"
	case KindFullRound:
		return "Full Round"
	case KindClosestToPin:
		return "Closest to Pin"
	case KindLongestDrive:
		return "Longest Drive"
	case KindOverall:
		return "Overall Champion"
	default:
		return string(k)
	}
}

// Segment maps the score-based kinds to their segment.
func (k Kind) Segment() (Segment, bool) {
	switch k {
	case KindFront9:
		return SegmentFront9, true
	case KindBack9:
		return SegmentBack9, true
	case KindFullRound:
		return SegmentFullRound, true
	}
	return "", false
}

// RankPolicy controls how equal scores are ranked on a leaderboard.
type RankPolicy string

const (
	// RankSequential gives every entry its 1-based position.
	RankSequential RankPolicy = "sequential"
	// RankShared gives equal points the same rank (1, 1, 3).
	RankShared RankPolicy = "shared"
)

// Rules holds the prize and ranking settings of the series.
type Rules struct {
	PrizeAmount    int
	EntryFee       int
	Currency       string
	OverallEnabled bool
	RankPolicy     RankPolicy
}

// DefaultRules matches the 2025 Scotland trip.
func DefaultRules() Rules {
	return Rules{
		PrizeAmount:    400,
		EntryFee:       50,
		Currency:       "SEK",
		OverallEnabled: true,
		RankPolicy:     RankSequential,
	}
}

// Day is one competition day.
type Day struct {
	Date      string `json:"date" yaml:"date"`
	Name      string `json:"name" yaml:"name"`
	Course    string `json:"course" yaml:"course"`
	StartTime string `json:"start_time,omitempty" yaml:"start_time"`
	EndTime   string `json:"end_time,omitempty" yaml:"end_time"`

	PickupTime string `json:"pickup_time,omitempty" yaml:"pickup_time"`
	TeeOffTime string `json:"tee_off_time,omitempty" yaml:"tee_off_time"`
	ReturnTime string `json:"return_time,omitempty" yaml:"return_time"`
}

// Calendar is the ordered, immutable list of competition days.
type Calendar struct {
	days  []Day
	index map[string]int
	loc   *time.Location
}

// NewCalendar validates days and keeps their configured order.
func NewCalendar(days []Day, loc *time.Location) (*Calendar, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("calendar needs at least one day")
	}
	if loc == nil {
		loc = time.UTC
	}
	c := &Calendar{
		days:  make([]Day, len(days)),
		index: make(map[string]int, len(days)),
		loc:   loc,
	}
	for i, d := range days {
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			return nil, fmt.Errorf("day %d: date %q is not YYYY-MM-DD", i+1, d.Date)
		}
		if _, dup := c.index[d.Date]; dup {
			return nil, fmt.Errorf("day %d: duplicate date %s", i+1, d.Date)
		}
		c.days[i] = d
		c.index[d.Date] = i
	}
	return c, nil
}

// Days returns a copy of the days in order.
func (c *Calendar) Days() []Day {
	out := make([]Day, len(c.days))
	copy(out, c.days)
	return out
}

func (c *Calendar) Len() int { return len(c.days) }

func (c *Calendar) Contains(date string) bool {
	_, ok := c.index[date]
	return ok
}

func (c *Calendar) Day(date string) (Day, bool) {
	i, ok := c.index[date]
	if !ok {
		return Day{}, false
	}
	return c.days[i], true
}

// Validate returns a ValidationError for dates outside the calendar.
func (c *Calendar) Validate(date string) error {
	if !c.Contains(date) {
		return shared.NewValidationError("date", date, "not a competition day")
	}
	return nil
}

func (c *Calendar) Location() *time.Location { return c.loc }

// CompetitionCount is days x daily competitions, plus one when overall is enabled.
func (c *Calendar) CompetitionCount(rules Rules) int {
	n := len(c.days) * len(DailyKinds)
	if rules.OverallEnabled {
		n++
	}
	return n
}

// OverallCourse is the course label carried by the series winner.
func (c *Calendar) OverallCourse() string {
	return fmt.Sprintf("%d-Day Total", len(c.days))
}
