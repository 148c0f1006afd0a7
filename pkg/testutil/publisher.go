package testutil

import (
	"context"
	"sync"

	"github.com/spinvault/backend/pkg/pubsub"
)

// MockPublisher records every published pack.
type MockPublisher struct {
	mutex sync.Mutex
	packs map[string][]*pubsub.Pack
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{packs: make(map[string][]*pubsub.Pack)}
}

func (p *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.packs[topic] = append(p.packs[topic], pack)
	return nil
}

func (p *MockPublisher) Stop(ctx context.Context) error {
	return nil
}

func (p *MockPublisher) Published(topic string) []*pubsub.Pack {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.packs[topic]
}
