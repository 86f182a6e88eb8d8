package shotservice

import (
	"context"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// Service is the special-shot ledger.
type Service interface {
	Load(ctx context.Context) error
	Watch(ctx context.Context) (store.Unsubscribe, error)

	// Declare records the winner of (shot.Date, shot.Type), replacing any
	// earlier declaration for the pair.
	Declare(ctx context.Context, shot shotdomain.SpecialShot) (shotdomain.SpecialShot, error)
	Clear(ctx context.Context, date string, kind competition.Kind) error
	Reset(ctx context.Context) error

	WinnerFor(date string, kind competition.Kind) (string, bool)
	All() []shotdomain.SpecialShot
}

type RosterProvider interface {
	Roster() *rosterdomain.Roster
}
