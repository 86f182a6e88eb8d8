package shothandlers

import (
	"context"

	shotservice "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/application"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// FakeService is a programmable shotservice.Service.
type FakeService struct {
	trace []string

	DeclareFunc func(ctx context.Context, shot shotdomain.SpecialShot) (shotdomain.SpecialShot, error)
	ClearFunc   func(ctx context.Context, date string, kind competition.Kind) error
	AllFunc     func() []shotdomain.SpecialShot
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

func (f *FakeService) Declare(ctx context.Context, shot shotdomain.SpecialShot) (shotdomain.SpecialShot, error) {
	f.record("Declare")
	if f.DeclareFunc != nil {
		return f.DeclareFunc(ctx, shot)
	}
	return shot, nil
}

func (f *FakeService) Clear(ctx context.Context, date string, kind competition.Kind) error {
	f.record("Clear")
	if f.ClearFunc != nil {
		return f.ClearFunc(ctx, date, kind)
	}
	return nil
}

func (f *FakeService) Reset(ctx context.Context) error {
	f.record("Reset")
	return nil
}

func (f *FakeService) WinnerFor(date string, kind competition.Kind) (string, bool) {
	f.record("WinnerFor")
	return "", false
}

func (f *FakeService) All() []shotdomain.SpecialShot {
	f.record("All")
	if f.AllFunc != nil {
		return f.AllFunc()
	}
	return []shotdomain.SpecialShot{}
}

var _ shotservice.Service = (*FakeService)(nil)
