package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/team-draft/internal/logger"
)

// NATSPubSub implements pub/sub using NATS JetStream
type NATSPubSub struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	local   fanout
}

// NewNATSPubSub connects to natsURL and makes sure the draft event stream
// exists
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("team-draft"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(DefaultStreamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     DefaultStreamName,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
			MaxAge:   0, // rosters and picks are kept for replay
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &NATSPubSub{
		nc:      nc,
		js:      js,
		subject: subject,
		local:   fanout{buffer: 100},
	}, nil
}

// Publish writes the event to JetStream and delivers it to local subscribers
func (p *NATSPubSub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}

	if _, err := p.js.Publish(p.subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", p.subject, "event_type", event.Type)
		return
	}

	if skipped := p.local.broadcast(event); skipped > 0 {
		logger.Warn("NATS: Skipped slow subscribers", "event_type", event.Type, "skipped", skipped)
	}
}

// Subscribe creates a subscription channel for events
func (p *NATSPubSub) Subscribe() chan Event {
	return p.local.subscribe()
}

// Unsubscribe removes a subscription channel
func (p *NATSPubSub) Unsubscribe(ch chan Event) {
	p.local.unsubscribe(ch)
}

// SubscribeJetStream creates a durable consumer so that only one instance
// handles each event, resuming after restarts
func (p *NATSPubSub) SubscribeJetStream(consumerName string, handler func(Event)) error {
	return subscribeDurable(p.js, p.subject, consumerName, handler)
}

// Ping round-trips to the server
func (p *NATSPubSub) Ping(ctx context.Context) error {
	return p.nc.FlushWithContext(ctx)
}

// Close closes the NATS connection
func (p *NATSPubSub) Close() {
	p.local.closeAll()
	if p.nc != nil {
		p.nc.Close()
	}
}

func subscribeDurable(js nats.JetStreamContext, subject, consumerName string, handler func(Event)) error {
	_, err := js.QueueSubscribe(subject, consumerName, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to unmarshal event", "error", err, "consumer", consumerName)
			// Malformed payloads never become valid; drop them
			msg.Term()
			return
		}

		handler(event)
		msg.Ack()
	}, nats.Durable(consumerName), nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return fmt.Errorf("failed to create durable consumer %s: %w", consumerName, err)
	}
	return nil
}
