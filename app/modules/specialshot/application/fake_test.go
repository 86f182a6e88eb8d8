package shotservice

import (
	"sync"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

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

type FakeRoster struct {
	R *rosterdomain.Roster
}

func (f *FakeRoster) Roster() *rosterdomain.Roster { return f.R }
