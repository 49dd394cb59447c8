package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/team-draft/internal/logger"
)

// EmbeddedNATSPubSub runs a NATS server with JetStream in-process so local
// development exercises the same broker as production
type EmbeddedNATSPubSub struct {
	server  *server.Server
	nc      *nats.Conn
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
	local   fanout
}

// EmbeddedNATSOptions configures the embedded NATS server
type EmbeddedNATSOptions struct {
	Port       int    // 0 or -1 picks a random free port
	Subject    string
	StreamName string
	StoreDir   string // empty keeps JetStream in memory
	MaxAge     time.Duration
}

// DefaultEmbeddedNATSOptions returns sensible defaults for development
func DefaultEmbeddedNATSOptions() EmbeddedNATSOptions {
	return EmbeddedNATSOptions{
		Port:       -1,
		Subject:    "draft.events",
		StreamName: DefaultStreamName,
		MaxAge:     time.Hour,
	}
}

// NewEmbeddedNATSPubSub starts the server, connects to it and creates the
// stream
func NewEmbeddedNATSPubSub(opts EmbeddedNATSOptions) (*EmbeddedNATSPubSub, error) {
	port := opts.Port
	if port == 0 {
		port = -1 // 0 would mean the default 4222
	}
	if opts.StreamName == "" {
		opts.StreamName = DefaultStreamName
	}
	if opts.Subject == "" {
		opts.Subject = "draft.events"
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = time.Hour
	}

	serverOpts := &server.Options{
		Port:      port,
		JetStream: true,
		NoSigs:    true,
		StoreDir:  opts.StoreDir,
	}

	ns, err := server.NewServer(serverOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}
	ns.SetLogger(&natsLogger{}, false, false)

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server failed to start within timeout")
	}

	clientURL := ns.ClientURL()
	logger.Info("Embedded NATS server started", "url", clientURL)

	nc, err := nats.Connect(clientURL, nats.InProcessServer(ns))
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("failed to connect to embedded NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		ns.Shutdown()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	storage := nats.MemoryStorage
	if opts.StoreDir != "" {
		storage = nats.FileStorage
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     opts.StreamName,
		Subjects: []string{opts.Subject},
		Storage:  storage,
		MaxAge:   opts.MaxAge,
	})
	if err != nil {
		nc.Close()
		ns.Shutdown()
		return nil, fmt.Errorf("failed to create JetStream stream: %w", err)
	}
	logger.Info("JetStream stream created", "stream", opts.StreamName, "subject", opts.Subject)

	ps := &EmbeddedNATSPubSub{
		server:  ns,
		nc:      nc,
		js:      js,
		subject: opts.Subject,
		local:   fanout{buffer: 100},
	}

	if err := ps.startSubscription(); err != nil {
		ps.Close()
		return nil, err
	}
	return ps, nil
}

// startSubscription relays messages on the subject to local subscribers
func (p *EmbeddedNATSPubSub) startSubscription() error {
	sub, err := p.js.Subscribe(p.subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to unmarshal event from JetStream", "error", err)
			msg.Term()
			return
		}

		if skipped := p.local.broadcast(event); skipped > 0 {
			logger.Warn("Embedded NATS: Skipped slow subscribers", "event_type", event.Type, "skipped", skipped)
		}
		msg.Ack()
	}, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return fmt.Errorf("failed to subscribe to JetStream: %w", err)
	}

	p.sub = sub
	logger.Debug("Subscribed to JetStream", "subject", p.subject)
	return nil
}

// Publish publishes an event to the embedded JetStream; delivery to local
// subscribers happens through the relay subscription
func (p *EmbeddedNATSPubSub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}

	if _, err := p.js.Publish(p.subject, data); err != nil {
		logger.Error("Failed to publish to embedded NATS", "error", err, "subject", p.subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to embedded NATS", "event_type", event.Type, "subject", p.subject)
}

// Subscribe creates a subscription channel for events
func (p *EmbeddedNATSPubSub) Subscribe() chan Event {
	ch := p.local.subscribe()
	logger.Debug("Embedded NATS: New subscriber added", "total_subscribers", p.local.count())
	return ch
}

// Unsubscribe removes a subscription channel
func (p *EmbeddedNATSPubSub) Unsubscribe(ch chan Event) {
	if p.local.unsubscribe(ch) {
		logger.Debug("Embedded NATS: Subscriber removed", "remaining_subscribers", p.local.count())
	}
}

// SubscribeJetStream creates a durable consumer on the embedded stream
func (p *EmbeddedNATSPubSub) SubscribeJetStream(consumerName string, handler func(Event)) error {
	return subscribeDurable(p.js, p.subject, consumerName, handler)
}

// Close shuts down the embedded NATS server
func (p *EmbeddedNATSPubSub) Close() {
	logger.Info("Shutting down embedded NATS server")

	if p.sub != nil {
		_ = p.sub.Unsubscribe()
	}
	p.local.closeAll()

	if p.nc != nil {
		p.nc.Close()
	}
	if p.server != nil {
		p.server.Shutdown()
		p.server.WaitForShutdown()
	}

	logger.Info("Embedded NATS server shut down")
}

// Ping round-trips to the embedded server
func (p *EmbeddedNATSPubSub) Ping(ctx context.Context) error {
	return p.nc.FlushWithContext(ctx)
}

// GetServerURL returns the client URL of the embedded server
func (p *EmbeddedNATSPubSub) GetServerURL() string {
	return p.server.ClientURL()
}

// GetSubscriberCount returns the number of active local subscribers
func (p *EmbeddedNATSPubSub) GetSubscriberCount() int {
	return p.local.count()
}

// natsLogger adapts our logger to the NATS server logger interface
type natsLogger struct{}

func (l *natsLogger) Noticef(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf("[NATS] "+format, v...))
}

func (l *natsLogger) Warnf(format string, v ...interface{}) {
	logger.Warn(fmt.Sprintf("[NATS] "+format, v...))
}

func (l *natsLogger) Fatalf(format string, v ...interface{}) {
	logger.Error(fmt.Sprintf("[NATS] "+format, v...))
}

func (l *natsLogger) Errorf(format string, v ...interface{}) {
	logger.Error(fmt.Sprintf("[NATS] "+format, v...))
}

func (l *natsLogger) Debugf(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf("[NATS] "+format, v...))
}

func (l *natsLogger) Tracef(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf("[NATS TRACE] "+format, v...))
}
