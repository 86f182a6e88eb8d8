package rosterhandlers

import (
	"context"

	rosterservice "github.com/Black-And-White-Club/tripscore/app/modules/roster/application"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// FakeService is a programmable rosterservice.Service.
type FakeService struct {
	trace []string

	PlayersFunc        func() []rosterdomain.Player
	PlayerFunc         func(id string) (rosterdomain.Player, error)
	UpdateHandicapFunc func(ctx context.Context, id string, handicap float64) (rosterdomain.Player, error)
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) Load(ctx context.Context) error {
	f.record("Load")
	return nil
}

func (f *FakeService) Watch(ctx context.Context) (store.Unsubscribe, error) {
	f.record("Watch")
	return func() {}, nil
}

func (f *FakeService) Roster() *rosterdomain.Roster {
	f.record("Roster")
	r, _ := rosterdomain.NewRoster(f.Players())
	return r
}

func (f *FakeService) Players() []rosterdomain.Player {
	f.record("Players")
	if f.PlayersFunc != nil {
		return f.PlayersFunc()
	}
	return nil
}

func (f *FakeService) Player(id string) (rosterdomain.Player, error) {
	f.record("Player")
	if f.PlayerFunc != nil {
		return f.PlayerFunc(id)
	}
	return rosterdomain.Player{}, shared.NewValidationError("player_id", id, "not on the roster")
}

func (f *FakeService) UpdateHandicap(ctx context.Context, id string, handicap float64) (rosterdomain.Player, error) {
	f.record("UpdateHandicap")
	if f.UpdateHandicapFunc != nil {
		return f.UpdateHandicapFunc(ctx, id, handicap)
	}
	return rosterdomain.Player{}, nil
}

var _ rosterservice.Service = (*FakeService)(nil)
