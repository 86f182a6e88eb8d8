package standingsservice

import (
	"context"
	"sync"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

type FakeRoster struct {
	R *rosterdomain.Roster
}

func (f *FakeRoster) Roster() *rosterdomain.Roster { return f.R }

// FakeScores is a ScoreSource backed by a slice.
type FakeScores struct {
	mu       sync.Mutex
	Scores   []scoredomain.RoundScore
	ResetErr error
	trace    []string
}

func (f *FakeScores) All() []scoredomain.RoundScore {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scoredomain.RoundScore(nil), f.Scores...)
}

func (f *FakeScores) Set(scores ...scoredomain.RoundScore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Scores = scores
}

func (f *FakeScores) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "Reset")
	if f.ResetErr != nil {
		return f.ResetErr
	}
	f.Scores = nil
	return nil
}

func (f *FakeScores) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

// FakeShots is a ShotSource backed by a slice.
type FakeShots struct {
	mu       sync.Mutex
	Shots    []shotdomain.SpecialShot
	ResetErr error
	trace    []string
}

func (f *FakeShots) All() []shotdomain.SpecialShot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shotdomain.SpecialShot(nil), f.Shots...)
}

func (f *FakeShots) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "Reset")
	if f.ResetErr != nil {
		return f.ResetErr
	}
	f.Shots = nil
	return nil
}

func (f *FakeShots) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

// FakePublisher records published topics.
type FakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return nil
}

func (f *FakePublisher) Close() error { return nil }

func (f *FakePublisher) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.topics...)
}
