package rosterservice

import (
	"context"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// Service owns the current roster, including persisted handicap changes.
type Service interface {
	// Load seeds the players collection when empty and applies persisted handicaps.
	Load(ctx context.Context) error
	// Watch applies handicap changes written by other instances.
	Watch(ctx context.Context) (store.Unsubscribe, error)

	Roster() *rosterdomain.Roster
	Players() []rosterdomain.Player
	Player(id string) (rosterdomain.Player, error)
	UpdateHandicap(ctx context.Context, id string, handicap float64) (rosterdomain.Player, error)
}
