package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/team-draft/internal/auth"
	"github.com/Billy-Davies-2/team-draft/internal/clickhouse"
	"github.com/Billy-Davies-2/team-draft/internal/config"
	"github.com/Billy-Davies-2/team-draft/internal/dal"
	"github.com/Billy-Davies-2/team-draft/internal/draft"
	grpcserver "github.com/Billy-Davies-2/team-draft/internal/grpc"
	"github.com/Billy-Davies-2/team-draft/internal/handlers"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/metrics"
	"github.com/Billy-Davies-2/team-draft/internal/mocks"
	"github.com/Billy-Davies-2/team-draft/internal/pubsub"
	"github.com/Billy-Davies-2/team-draft/internal/service"
)

// broker is what the service publishes through: NATS, embedded NATS or the
// in-memory mock
type broker interface {
	pubsub.Broker
	Close()
}

func main() {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Configure(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger.Info("Starting team draft service", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataStore := openStore(cfg)
	defer dataStore.Close()

	natsBroker := openBroker(cfg)
	defer natsBroker.Close()
	ps := pubsub.NewWithUpstream(natsBroker)

	checks := map[string]handlers.Checker{}
	if pinger, ok := natsBroker.(interface{ Ping(context.Context) error }); ok {
		checks["nats"] = pinger.Ping
	}

	analytics := openAnalytics(cfg)
	defer analytics.Close()
	if err := service.ConsumeAnalytics(ctx, natsBroker, analytics); err != nil {
		logger.Error("Failed to start analytics consumer", "error", err)
		log.Fatalf("Failed to start analytics consumer: %v", err)
	}

	var authProvider auth.AuthProvider
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      cfg.Authentik.BaseURL,
			ClientID:     cfg.Authentik.ClientID,
			ClientSecret: cfg.Authentik.ClientSecret,
			RedirectURL:  cfg.Authentik.RedirectURL,
		})
		logger.Info("Using Authentik authentication", "url", cfg.Authentik.BaseURL)
	}

	recorder := metrics.NewRecorder()
	draftOpts := draft.Options{
		RevealDelay:   cfg.Draft.RevealDelay,
		CompleteDelay: cfg.Draft.CompleteDelay,
	}
	if cfg.Draft.Seed != 0 {
		logger.Info("Using seeded draft randomness", "seed", cfg.Draft.Seed)
		draftOpts.Random = draft.NewSeededSource(cfg.Draft.Seed)
		draftOpts.Jitter = draft.NewSeededSource(cfg.Draft.Seed + 1)
	}
	svc := service.New(service.Options{
		DAL:       dataStore,
		PubSub:    ps,
		Analytics: analytics,
		Metrics:   recorder,
		Draft:     draftOpts,
	})
	if cfg.Draft.EventName != "" {
		if _, err := svc.SetEvent(ctx, cfg.Draft.EventName); err != nil {
			logger.Error("Failed to set event", "error", err, "event", cfg.Draft.EventName)
			log.Fatalf("Failed to set event: %v", err)
		}
	}

	// Start gRPC server in a goroutine
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.AuthInterceptor(authProvider)))
	grpcserver.Register(grpcServer, grpcserver.NewServer(svc))
	go func() {
		addr := "0.0.0.0:" + cfg.Server.GRPCPort
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.Server.GRPCPort)
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		logger.Info("gRPC server starting", "address", addr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	router := handlers.NewRouter(handlers.RouterOptions{
		API:     handlers.NewAPIHandlers(svc, ps),
		Health:  handlers.NewHealth(svc, checks),
		Auth:    authProvider,
		Metrics: recorder,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	svc.ResetDraft(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	grpcServer.GracefulStop()
}

func openStore(cfg *config.Config) dal.DraftDAL {
	switch cfg.Database.Driver {
	case "sqlite":
		store, err := dal.NewSQLiteDAL(cfg.Database.SQLiteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.Database.SQLiteFile)
		return store
	case "postgres":
		if cfg.Database.URL == "" {
			store, err := mocks.NewMockPostgresDAL(cfg.Database.SQLiteFile)
			if err != nil {
				logger.Error("Failed to initialize mock Postgres", "error", err)
				log.Fatalf("Failed to initialize mock Postgres: %v", err)
			}
			return store
		}
		store, err := dal.NewPostgresDAL(cfg.Database.URL)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
		return store
	default:
		logger.Info("Using in-memory data store")
		return dal.NewMemoryDAL()
	}
}

// openBroker uses embedded NATS in development, real NATS in production.
// NATS_URL=mock selects the in-memory broker.
func openBroker(cfg *config.Config) broker {
	if cfg.NATS.URL == "mock" {
		logger.Info("Using mock NATS broker")
		return pubsub.NewMockNATSPubSub(cfg.NATS.Subject)
	}

	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATS.Subject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded
	}

	logger.Info("Using real NATS JetStream for production")
	realNats, err := pubsub.NewNATSPubSub(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		logger.Error("Failed to initialize NATS", "error", err)
		log.Fatalf("Failed to initialize NATS: %v", err)
	}
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	return realNats
}

// openAnalytics connects to ClickHouse, or a mock in development
func openAnalytics(cfg *config.Config) clickhouse.Recorder {
	if cfg.IsDevelopment() {
		logger.Info("Using mock ClickHouse for local development (no ClickHouse server required)")
		return mocks.NewMockClickHouseClient()
	}

	client, err := clickhouse.NewClient(cfg.ClickHouse.Addr, cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password)
	if err != nil {
		logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouse.Addr)
		log.Fatalf("Failed to initialize ClickHouse: %v", err)
	}
	logger.Info("Connected to ClickHouse", "address", cfg.ClickHouse.Addr, "database", cfg.ClickHouse.Database)
	return client
}
