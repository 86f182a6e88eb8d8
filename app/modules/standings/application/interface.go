package standingsservice

import (
	"context"
	"time"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

// Service presents the standings derived from the ledgers.
type Service interface {
	// Recompute rebuilds the snapshot from the current ledger state.
	Recompute(ctx context.Context, reason string) (Update, error)
	// Reset clears both ledgers. Handicaps are kept.
	Reset(ctx context.Context) error

	Results() standingsdomain.Results
	Day(selector string) (DayView, error)
	DayLeaderboard(selector, segment string) (standingsdomain.Leaderboard, error)
	Overall() standingsdomain.Leaderboard
	Completion() standingsdomain.SeriesCompletion

	ExportWorkbook(ctx context.Context) ([]byte, error)
	PrizeChartPNG(ctx context.Context) ([]byte, error)

	// Subscribe returns a channel of updates for live views. Slow
	// subscribers miss updates rather than block recomputation.
	Subscribe() (<-chan Update, func())
	Notify(u Update)
}

// RosterProvider returns the current roster.
type RosterProvider interface {
	Roster() *rosterdomain.Roster
}

// ScoreSource is the part of the round score ledger the standings read.
type ScoreSource interface {
	All() []scoredomain.RoundScore
	Reset(ctx context.Context) error
}

// ShotSource is the part of the special-shot ledger the standings read.
type ShotSource interface {
	All() []shotdomain.SpecialShot
	Reset(ctx context.Context) error
}

// Update describes one recomputation.
type Update struct {
	Reason                 string    `json:"reason"`
	CompetitionsDetermined int       `json:"competitions_determined"`
	CompetitionsTotal      int       `json:"competitions_total"`
	NewlyDetermined        []string  `json:"newly_determined,omitempty"`
	ComputedAt             time.Time `json:"computed_at"`
}

// DayView is everything shown for one competition day.
type DayView struct {
	Day          competition.Day               `json:"day"`
	Leaderboards []standingsdomain.Leaderboard `json:"leaderboards"`
	Completion   standingsdomain.DayCompletion `json:"completion"`
	Winners      []standingsdomain.Winner      `json:"winners"`
}
