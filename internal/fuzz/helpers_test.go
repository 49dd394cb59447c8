package fuzz

import (
	"context"
	"fmt"
	"testing"

	"github.com/Billy-Davies-2/team-draft/internal/dal"
	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/models"
	"github.com/Billy-Davies-2/team-draft/internal/pubsub"
	"github.com/Billy-Davies-2/team-draft/internal/service"
)

func init() {
	// Initialize logger for tests
	logger.Configure(logger.Options{Level: "error"})
}

func newService() *service.Service {
	return service.New(service.Options{
		DAL:    dal.NewMemoryDAL(),
		PubSub: pubsub.New(),
		Draft: draft.Options{
			Random:    draft.NewSeededSource(1),
			Jitter:    draft.NewSeededSource(2),
			Scheduler: draft.NewManualScheduler(),
		},
	})
}

func seedPlayers(t *testing.T, svc *service.Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.AddPlayer(context.Background(), models.Player{
			Name: fmt.Sprintf("Player %d", i),
			Tier: models.Tiers[i%len(models.Tiers)],
		})
		if err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}
}
