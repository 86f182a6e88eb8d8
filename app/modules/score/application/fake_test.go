package scoreservice

import (
	"sync"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

// FakePublisher records published topics.
type FakePublisher struct {
	mu     sync.Mutex
	topics []string

	PublishFunc func(topic string, msgs ...*message.Message) error
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	f.topics = append(f.topics, topic)
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, msgs...)
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

func (f *FakePublisher) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.topics))
	copy(out, f.topics)
	return out
}

// FakeRoster serves a fixed roster.
type FakeRoster struct {
	R *rosterdomain.Roster
}

func (f *FakeRoster) Roster() *rosterdomain.Roster { return f.R }

var (
	_ message.Publisher = (*FakePublisher)(nil)
	_ RosterProvider    = (*FakeRoster)(nil)
)
