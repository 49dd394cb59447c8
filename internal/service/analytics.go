package service

import (
	"context"
	"errors"
	"time"

	"github.com/Billy-Davies-2/team-draft/internal/clickhouse"
	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/pubsub"
)

// ErrAnalyticsDisabled is returned when no analytics store is configured
var ErrAnalyticsDisabled = errors.New("analytics store not configured")

// AnalyticsConsumer is the durable consumer name for roster analytics
const AnalyticsConsumer = "draft-analytics"

// ConsumeAnalytics feeds completed rosters from broker into rec. Brokers
// with durable consumers resume after restarts; others are read through a
// plain subscription until ctx ends.
func ConsumeAnalytics(ctx context.Context, broker pubsub.Broker, rec clickhouse.Recorder) error {
	handle := func(ev pubsub.Event) {
		recordCompleted(ctx, rec, ev)
	}

	if durable, ok := broker.(pubsub.Durable); ok {
		logger.Info("Analytics consuming durable stream", "consumer", AnalyticsConsumer)
		return durable.SubscribeJetStream(AnalyticsConsumer, handle)
	}

	ch := broker.Subscribe()
	go func() {
		defer broker.Unsubscribe(ch)
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				handle(ev)
			case <-ctx.Done():
				return
			}
		}
	}()
	logger.Info("Analytics consuming local events")
	return nil
}

func recordCompleted(ctx context.Context, rec clickhouse.Recorder, ev pubsub.Event) {
	if ev.Type != string(draft.EventComplete) {
		return
	}
	var payload EventPayload
	if err := ev.Decode(&payload); err != nil || payload.Roster == nil {
		logger.Warn("Skipping malformed completion event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rec.RecordRoster(ctx, *payload.Roster); err != nil {
		logger.Error("Failed to record roster analytics", "error", err, "event", payload.Roster.Event)
		return
	}
	logger.Info("Roster recorded for analytics", "event", payload.Roster.Event, "picks", len(payload.Roster.History))
}
