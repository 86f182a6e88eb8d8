package scorehandlers

import (
	"context"

	scoreservice "github.com/Black-And-White-Club/tripscore/app/modules/score/application"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// FakeService is a programmable scoreservice.Service.
type FakeService struct {
	trace []string

	UpsertFunc     func(ctx context.Context, rec scoredomain.RoundScore) (scoredomain.RoundScore, error)
	ScoreHolesFunc func(ctx context.Context, playerID, date string, holes []scoredomain.HoleInput) (scoredomain.RoundScore, error)
	ImportFunc     func(ctx context.Context, req scoreservice.ImportRequest) (scoreservice.ImportReport, error)
	AllFunc        func() []scoredomain.RoundScore
	ByDayFunc      func(date string) ([]scoredomain.RoundScore, error)
	ByPlayerFunc   func(playerID string) ([]scoredomain.RoundScore, error)
	GetFunc        func(date, playerID string) (scoredomain.RoundScore, bool)
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

func (f *FakeService) Upsert(ctx context.Context, rec scoredomain.RoundScore) (scoredomain.RoundScore, error) {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, rec)
	}
	return rec, nil
}

func (f *FakeService) ScoreHoles(ctx context.Context, playerID, date string, holes []scoredomain.HoleInput) (scoredomain.RoundScore, error) {
	f.record("ScoreHoles")
	if f.ScoreHolesFunc != nil {
		return f.ScoreHolesFunc(ctx, playerID, date, holes)
	}
	return scoredomain.RoundScore{PlayerID: playerID, Date: date}, nil
}

func (f *FakeService) Import(ctx context.Context, req scoreservice.ImportRequest) (scoreservice.ImportReport, error) {
	f.record("Import")
	if f.ImportFunc != nil {
		return f.ImportFunc(ctx, req)
	}
	return scoreservice.ImportReport{}, nil
}

func (f *FakeService) Reset(ctx context.Context) error {
	f.record("Reset")
	return nil
}

func (f *FakeService) All() []scoredomain.RoundScore {
	f.record("All")
	if f.AllFunc != nil {
		return f.AllFunc()
	}
	return nil
}

func (f *FakeService) ByDay(date string) ([]scoredomain.RoundScore, error) {
	f.record("ByDay")
	if f.ByDayFunc != nil {
		return f.ByDayFunc(date)
	}
	return nil, nil
}

func (f *FakeService) ByPlayer(playerID string) ([]scoredomain.RoundScore, error) {
	f.record("ByPlayer")
	if f.ByPlayerFunc != nil {
		return f.ByPlayerFunc(playerID)
	}
	return nil, nil
}

func (f *FakeService) Get(date, playerID string) (scoredomain.RoundScore, bool) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(date, playerID)
	}
	return scoredomain.RoundScore{}, false
}

var _ scoreservice.Service = (*FakeService)(nil)
