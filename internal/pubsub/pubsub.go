package pubsub

import (
	"encoding/json"
	"sync"

	"github.com/Billy-Davies-2/team-draft/internal/logger"
)

// Registry event types. Draft lifecycle events reuse the names the draft
// controller emits (draft:start, draft:pick, ...).
const (
	PlayersAdd    = "players:add"
	PlayersUpdate = "players:update"
	PlayersDelete = "players:delete"
	TeamsUpdate   = "teams:update"
	EventUpdate   = "event:update"
)

// DefaultStreamName is the JetStream stream holding draft events
const DefaultStreamName = "TEAM_DRAFT_EVENTS"

// Event represents a pubsub event
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// NewEvent builds an event whose payload is the JSON object form of v.
// A v that does not encode to an object is stored under "value".
func NewEvent(eventType string, v any) Event {
	ev := Event{Type: eventType}
	if v == nil {
		return ev
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode event payload", "error", err, "type", eventType)
		return ev
	}
	if err := json.Unmarshal(data, &ev.Payload); err != nil {
		ev.Payload = wrapValue(eventType, data)
	}
	return ev
}

// wrapValue stores a non-object JSON value under "value"
func wrapValue(eventType string, data []byte) map[string]interface{} {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Error("Failed to decode event payload", "error", err, "type", eventType)
		return nil
	}
	return map[string]interface{}{"value": raw}
}

// Decode unmarshals the payload into v
func (e Event) Decode(v any) error {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Broker is anything events can be published to and received from
type Broker interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream = Broker

// Durable is implemented by brokers that support named consumers which
// resume where they left off
type Durable interface {
	SubscribeJetStream(consumerName string, handler func(Event)) error
}

// PubSub implements a simple publish-subscribe system
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream // Optional upstream publisher (e.g., NATS)
}

// New creates a new PubSub instance
func New() *PubSub {
	return &PubSub{
		subscribers: []chan Event{},
	}
}

// NewWithUpstream creates a PubSub that bridges to an upstream publisher.
// Publish goes to the upstream, which broadcasts to every instance; events
// from the upstream are forwarded to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subscribers: []chan Event{},
		upstream:    upstream,
	}

	ch := upstream.Subscribe()
	go func() {
		logger.Debug("PubSub: Subscribed to upstream, waiting for events")
		for event := range ch {
			logger.Debug("PubSub: Received event from upstream, forwarding to local", "type", event.Type)
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

// Upstream returns the broker this PubSub forwards to, or nil
func (ps *PubSub) Upstream() Upstream {
	return ps.upstream
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 64)
	ps.subscribers = append(ps.subscribers, ch)
	logger.Debug("PubSub: New subscriber added", "totalSubscribers", len(ps.subscribers))
	return ch
}

// Unsubscribe removes a subscriber
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// SubscriberCount returns the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers)
}

// Publish sends an event to all subscribers, through the upstream when one
// is configured
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		logger.Debug("PubSub: Forwarding to upstream", "type", event.Type)
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

// publishLocal sends an event to local subscribers only
func (ps *PubSub) publishLocal(event Event) {
	// Held across the non-blocking sends so Unsubscribe cannot close a
	// channel mid-send
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("PubSub: Skipping slow subscriber", "type", event.Type)
		}
	}
}
