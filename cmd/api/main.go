package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/postlane/postlane/internal/api"
	"github.com/postlane/postlane/pkg/audit"
	"github.com/postlane/postlane/pkg/config"
	"github.com/postlane/postlane/pkg/httpserver"
	"github.com/postlane/postlane/pkg/logger"
	"github.com/postlane/postlane/pkg/mongo"
	"github.com/postlane/postlane/pkg/ratelimit"
	"github.com/postlane/postlane/pkg/redis"
	"github.com/postlane/postlane/pkg/segment"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"postlane-api"`

	RateLimit       int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateWindow      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	SegmentInterval time.Duration `env:"SEGMENT_REFRESH_INTERVAL" envDefault:"5m"`
}

func main() {
	var appCfg appConfig
	config.MustLoad(&appCfg)
	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	var redisCfg redis.Config
	config.MustLoad(&redisCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, mongoCfg)
	if err != nil {
		log.Error("mongo connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(mongoCfg.Database)

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		log.Error("redis connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Audit pipeline.
	auditStore := audit.NewStore(db, log)
	if err := auditStore.EnsureIndexes(ctx); err != nil {
		log.Error("audit index creation failed", slog.Any("error", err))
		os.Exit(1)
	}
	dispatcher := audit.NewDispatcher(auditStore, log, audit.DispatcherOptions{})
	reader := audit.NewReader(auditStore)

	// Segment routes are not part of the default table; extend it so
	// segment mutations still land in the trail under the fallback action.
	routes := append([]audit.Route{
		{Method: "POST", Pattern: "/api/orgs/:orgId/segments", Action: audit.ActionOther},
		{Method: "PUT", Pattern: "/api/orgs/:orgId/segments/:id", Action: audit.ActionOther},
		{Method: "DELETE", Pattern: "/api/orgs/:orgId/segments/:id", Action: audit.ActionOther},
	}, audit.DefaultRoutes...)
	classifier := audit.NewClassifier(routes)

	// Segment compiler.
	segmentStore := segment.NewStore(db)
	if err := segmentStore.EnsureIndexes(ctx); err != nil {
		log.Error("segment index creation failed", slog.Any("error", err))
		os.Exit(1)
	}
	contacts := segment.NewContactStore(db)
	manager := segment.NewManager(segmentStore, contacts, log)
	refresher := segment.NewRefresher(manager, log, segment.WithInterval(appCfg.SegmentInterval))
	go refresher.Run(ctx)

	// Rate limiting over redis.
	limiter, err := ratelimit.NewSlidingWindow(
		ratelimit.NewRedisStore(redisClient), appCfg.RateLimit, appCfg.RateWindow)
	if err != nil {
		log.Error("rate limiter setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	router := api.Router(api.Deps{
		Log:        log,
		Dispatcher: dispatcher,
		Classifier: classifier,
		Audit:      api.NewAuditHandler(reader, log),
		Segments:   api.NewSegmentHandler(segmentStore, manager, log),
		Limiter:    limiter,
		HealthChecks: []func(context.Context) error{
			mongo.Healthcheck(mongoClient),
			redis.Healthcheck(redisClient),
		},
	})

	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithDrainer(dispatcher.Close),
	)
	if err := srv.Run(ctx, router); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
