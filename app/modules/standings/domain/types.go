// Package standingsdomain derives leaderboards, completion, winners and
// prize totals from the roster and the two ledgers. Everything here is a pure
// function of its inputs.
package standingsdomain

import "github.com/Black-And-White-Club/tripscore/app/shared/competition"

// Entry is one row of a leaderboard.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	// Recorded is false when the player has no record and scores zero by
	// default.
	Recorded bool `json:"recorded"`
}

// Leaderboard ranks every roster player. Date is "Overall" for the series.
type Leaderboard struct {
	Date    string              `json:"date"`
	Course  string              `json:"course"`
	Segment competition.Segment `json:"segment"`
	Entries []Entry             `json:"entries"`
}

// Leader returns the first entry. Leaderboards always hold the whole roster,
// so it is only empty for an empty roster.
func (l Leaderboard) Leader() (Entry, bool) {
	if len(l.Entries) == 0 {
		return Entry{}, false
	}
	return l.Entries[0], true
}

// DayCompletion reports how many roster players have a record for a day.
type DayCompletion struct {
	Date     string   `json:"date"`
	Recorded int      `json:"recorded"`
	Expected int      `json:"expected"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// SeriesCompletion aggregates the days.
type SeriesCompletion struct {
	Days     []DayCompletion `json:"days"`
	Recorded int             `json:"recorded"`
	Expected int             `json:"expected"`
	Complete bool            `json:"complete"`
}

// Winner is a determined competition.
type Winner struct {
	Date            string           `json:"date"`
	Course          string           `json:"course"`
	Competition     string           `json:"competition"`
	CompetitionType competition.Kind `json:"competition_type"`
	WinnerID        string           `json:"winner_id"`
	WinnerName      string           `json:"winner_name"`
	Prize           int              `json:"prize"`
}

// StatusReason explains why a competition has no winner yet.
type StatusReason string

const (
	ReasonDayIncomplete    StatusReason = "day_incomplete"
	ReasonSeriesIncomplete StatusReason = "series_incomplete"
	ReasonNoPositiveScore  StatusReason = "no_positive_score"
	ReasonNotDeclared      StatusReason = "not_declared"
)

// CompetitionStatus is one cell of the status board.
type CompetitionStatus struct {
	Date            string           `json:"date"`
	Course          string           `json:"course"`
	Competition     string           `json:"competition"`
	CompetitionType competition.Kind `json:"competition_type"`
	Determined      bool             `json:"determined"`
	Reason          StatusReason     `json:"reason,omitempty"`
	WinnerID        string           `json:"winner_id,omitempty"`
	WinnerName      string           `json:"winner_name,omitempty"`
}

// Key identifies the competition, e.g. "2025-09-25.front9" or "Overall.overall".
func (s CompetitionStatus) Key() string {
	return s.Date + "." + string(s.CompetitionType)
}

// PrizeTotal is a player's winnings.
type PrizeTotal struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Wins     int    `json:"wins"`
}

// Results is the full derived state shown on the results page.
type Results struct {
	Winners []Winner `json:"winners"`
	// Totals holds every roster player in roster order.
	Totals []PrizeTotal `json:"totals"`
	// Summary holds players with winnings, highest first.
	Summary                []PrizeTotal        `json:"summary"`
	PrizeAmount            int                 `json:"prize_amount"`
	PrizePool              int                 `json:"prize_pool"`
	PrizesAwarded          int                 `json:"prizes_awarded"`
	Currency               string              `json:"currency"`
	CompetitionsDetermined int                 `json:"competitions_determined"`
	CompetitionsTotal      int                 `json:"competitions_total"`
	Status                 []CompetitionStatus `json:"status"`
	Completion             SeriesCompletion    `json:"completion"`
}
