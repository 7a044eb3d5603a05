package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/joho/godotenv"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/auth"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/configs"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/events"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/messaging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/ratelimiter"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/realtime"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/tracing"
	"github.com/inkwell-hq/inkwell/internal/persistence/db"
	"github.com/inkwell-hq/inkwell/internal/persistence/repository"
	"github.com/inkwell-hq/inkwell/internal/presentation/api"
	authHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/auth"
	commentsHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/comments"
	designsHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/designs"
	healthHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/health"
)

const serviceName = "inkwell-api"

func main() {
	_ = godotenv.Load()

	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})
	logger.Init()

	mongoCfg := &db.MongoConfig{
		URI:               cfg.Mongo.URI,
		Database:          cfg.Mongo.Database,
		ConnectionTimeout: db.DefaultConnectionTimeout,
	}
	mongoClient, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := db.DisconnectMongo(context.Background(), mongoClient); err != nil {
			logger.Error(logging.Mongo, logging.Shutdown, "failed to disconnect mongo", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}()

	database := db.GetDatabase(mongoClient, mongoCfg)

	designRepository := repository.NewDesignRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	userRepository := repository.NewUserRepository(database)
	auditRepository := repository.NewDesignAuditLogRepository(database)

	for _, ensure := range []func(context.Context) error{
		designRepository.EnsureIndexes,
		commentRepository.EnsureIndexes,
		userRepository.EnsureIndexes,
		auditRepository.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal(err)
		}
	}

	var rabbitmq *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rabbitmq, err = messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connection established", nil)

		designConsumer := events.NewDesignConsumer(rabbitmq, auditRepository, logger)
		go func() {
			if err := designConsumer.Listen(); err != nil {
				logger.Error(logging.RabbitMQ, logging.ExternalService, "consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()
	}

	designPublisher := events.NewDesignPublisher(rabbitmq)

	relay := realtime.NewRoomRelay(logger)
	presence := realtime.NewPresenceRegistry()
	dispatcher := realtime.NewDispatcher(relay, presence, logger)
	realtimeServer := realtime.NewServer(dispatcher, realtime.ServerOptions{
		AllowedOrigin:   cfg.HTTP.CORSOrigin,
		ReadBufferSize:  cfg.Realtime.ReadBufferSize,
		WriteBufferSize: cfg.Realtime.WriteBufferSize,
		SendBuffer:      cfg.Realtime.SendBuffer,
	}, logger)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessExpiry:  cfg.Auth.AccessExpiry,
		RefreshExpiry: cfg.Auth.RefreshExpiry,
		Issuer:        cfg.Auth.Issuer,
	})
	passwords := auth.NewPasswordHasher()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(
		cfg,
		authHandler.NewHandler(userRepository, tokens, passwords, logger),
		designsHandler.NewHandler(designRepository, designPublisher, logger),
		commentsHandler.NewHandler(commentRepository, designRepository, designPublisher, logger),
		healthHandler.NewHandler(),
		realtimeServer,
		tokens,
		logger,
		rl,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		log.Fatal(err)
	}
}
