package scoreservice

import (
	"context"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// Service is the round score ledger.
type Service interface {
	Load(ctx context.Context) error
	Watch(ctx context.Context) (store.Unsubscribe, error)

	// Upsert saves one record by (date, player). The total is recomputed.
	Upsert(ctx context.Context, rec scoredomain.RoundScore) (scoredomain.RoundScore, error)
	// ScoreHoles computes Stableford points from strokes and upserts them.
	ScoreHoles(ctx context.Context, playerID, date string, holes []scoredomain.HoleInput) (scoredomain.RoundScore, error)
	// Import upserts every valid line of a score sheet.
	Import(ctx context.Context, req ImportRequest) (ImportReport, error)
	Reset(ctx context.Context) error

	All() []scoredomain.RoundScore
	ByDay(date string) ([]scoredomain.RoundScore, error)
	ByPlayer(playerID string) ([]scoredomain.RoundScore, error)
	Get(date, playerID string) (scoredomain.RoundScore, bool)
}

// RosterProvider returns the current roster, including handicap changes.
type RosterProvider interface {
	Roster() *rosterdomain.Roster
}

// ImportRequest is an uploaded score sheet. DefaultDate applies to lines
// without a date column.
type ImportRequest struct {
	Filename    string
	Data        []byte
	DefaultDate string
}

// RowError reports one rejected sheet line.
type RowError struct {
	Line   int    `json:"line"`
	Player string `json:"player,omitempty"`
	Field  string `json:"field,omitempty"`
	Error  string `json:"error"`
}

// ImportReport summarises an import.
type ImportReport struct {
	Saved  []scoredomain.RoundScore `json:"saved"`
	Errors []RowError               `json:"errors"`
}
