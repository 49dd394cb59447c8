package pubsub

import (
	"sync"

	"github.com/Billy-Davies-2/team-draft/internal/logger"
)

// MockNATSPubSub stands in for NATSPubSub without a server. It keeps the
// last maxMessages events so durable consumers and replays behave like
// JetStream.
type MockNATSPubSub struct {
	subject     string
	local       fanout
	mu          sync.RWMutex
	messages    []Event
	maxMessages int
}

// NewMockNATSPubSub creates a mock NATS JetStream pub/sub
func NewMockNATSPubSub(subject string) *MockNATSPubSub {
	logger.Info("Using mock NATS pub/sub", "subject", subject)
	return &MockNATSPubSub{
		subject:     subject,
		local:       fanout{buffer: 100},
		maxMessages: 1000,
	}
}

// Publish stores the event and delivers it to subscribers
func (p *MockNATSPubSub) Publish(event Event) {
	p.mu.Lock()
	p.messages = append(p.messages, event)
	if len(p.messages) > p.maxMessages {
		p.messages = p.messages[len(p.messages)-p.maxMessages:]
	}
	p.mu.Unlock()

	if skipped := p.local.broadcast(event); skipped > 0 {
		logger.Warn("Mock NATS: Skipped slow subscribers", "event_type", event.Type, "skipped", skipped)
	}
	logger.Debug("Mock NATS: Published event", "event_type", event.Type, "subject", p.subject)
}

// Subscribe creates a subscription channel for events
func (p *MockNATSPubSub) Subscribe() chan Event {
	return p.local.subscribe()
}

// Unsubscribe removes a subscription channel
func (p *MockNATSPubSub) Unsubscribe(ch chan Event) {
	p.local.unsubscribe(ch)
}

// SubscribeJetStream simulates a durable consumer with a plain subscription
func (p *MockNATSPubSub) SubscribeJetStream(consumerName string, handler func(Event)) error {
	logger.Debug("Mock NATS: Creating durable subscription (simulated)", "consumer_name", consumerName)

	ch := p.Subscribe()
	go func() {
		for event := range ch {
			handler(event)
		}
		logger.Debug("Mock NATS: Durable subscription closed", "consumer_name", consumerName)
	}()
	return nil
}

// ReplayMessages sends up to the last count stored events to ch
func (p *MockNATSPubSub) ReplayMessages(ch chan Event, count int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := len(p.messages) - count
	if start < 0 {
		start = 0
	}
	for _, event := range p.messages[start:] {
		select {
		case ch <- event:
		default:
			logger.Warn("Mock NATS: Channel full during replay, skipping event")
		}
	}
}

// GetMessageCount returns the number of stored messages
func (p *MockNATSPubSub) GetMessageCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.messages)
}

// GetSubscriberCount returns the number of active subscribers
func (p *MockNATSPubSub) GetSubscriberCount() int {
	return p.local.count()
}

// Close closes all subscriptions
func (p *MockNATSPubSub) Close() {
	logger.Info("Mock NATS: Closing all subscriptions", "active_subscriptions", p.local.count())
	p.local.closeAll()
}
