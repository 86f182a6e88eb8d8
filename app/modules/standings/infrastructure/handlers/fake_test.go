package standingshandlers

import (
	"context"
	"sync"

	standingsservice "github.com/Black-And-White-Club/tripscore/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
)

// FakeService records calls and returns canned values.
type FakeService struct {
	mu    sync.Mutex
	trace []string

	RecomputeFunc      func(ctx context.Context, reason string) (standingsservice.Update, error)
	ResetErr           error
	ResultsValue       standingsdomain.Results
	DayFunc            func(selector string) (standingsservice.DayView, error)
	DayLeaderboardFunc func(selector, segment string) (standingsdomain.Leaderboard, error)
	OverallValue       standingsdomain.Leaderboard
	CompletionValue    standingsdomain.SeriesCompletion
	Workbook           []byte
	Chart              []byte
	ArtifactErr        error
	Updates            chan standingsservice.Update
	Notified           []standingsservice.Update
}

func (f *FakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, call)
}

func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeService) Recompute(ctx context.Context, reason string) (standingsservice.Update, error) {
	f.record("Recompute")
	if f.RecomputeFunc != nil {
		return f.RecomputeFunc(ctx, reason)
	}
	return standingsservice.Update{Reason: reason}, nil
}

func (f *FakeService) Reset(ctx context.Context) error {
	f.record("Reset")
	return f.ResetErr
}

func (f *FakeService) Results() standingsdomain.Results {
	f.record("Results")
	return f.ResultsValue
}

func (f *FakeService) Day(selector string) (standingsservice.DayView, error) {
	f.record("Day")
	return f.DayFunc(selector)
}

func (f *FakeService) DayLeaderboard(selector, segment string) (standingsdomain.Leaderboard, error) {
	f.record("DayLeaderboard")
	return f.DayLeaderboardFunc(selector, segment)
}

func (f *FakeService) Overall() standingsdomain.Leaderboard {
	f.record("Overall")
	return f.OverallValue
}

func (f *FakeService) Completion() standingsdomain.SeriesCompletion {
	f.record("Completion")
	return f.CompletionValue
}

func (f *FakeService) ExportWorkbook(context.Context) ([]byte, error) {
	f.record("ExportWorkbook")
	return f.Workbook, f.ArtifactErr
}

func (f *FakeService) PrizeChartPNG(context.Context) ([]byte, error) {
	f.record("PrizeChartPNG")
	return f.Chart, f.ArtifactErr
}

func (f *FakeService) Subscribe() (<-chan standingsservice.Update, func()) {
	f.record("Subscribe")
	return f.Updates, func() { f.record("Unsubscribe") }
}

func (f *FakeService) Notify(u standingsservice.Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "Notify")
	f.Notified = append(f.Notified, u)
}

var _ standingsservice.Service = (*FakeService)(nil)

// FakeEnqueuer records scheduled publishes.
type FakeEnqueuer struct {
	Reasons []string
	Err     error
}

func (f *FakeEnqueuer) EnqueuePublish(_ context.Context, reason string) error {
	f.Reasons = append(f.Reasons, reason)
	return f.Err
}
