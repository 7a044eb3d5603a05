package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/auth"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/configs"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/metrics"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/ratelimiter"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/realtime"
	authHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/auth"
	commentsHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/comments"
	designsHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/designs"
	healthHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/health"
)

type Application struct {
	config          *configs.Config
	authHandler     *authHandler.Handler
	designsHandler  *designsHandler.Handler
	commentsHandler *commentsHandler.Handler
	healthHandler   *healthHandler.Handler
	realtimeServer  *realtime.Server
	tokens          *auth.TokenManager
	logger          logging.Logger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config *configs.Config,
	authHandler *authHandler.Handler,
	designsHandler *designsHandler.Handler,
	commentsHandler *commentsHandler.Handler,
	healthHandler *healthHandler.Handler,
	realtimeServer *realtime.Server,
	tokens *auth.TokenManager,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		authHandler:     authHandler,
		designsHandler:  designsHandler,
		commentsHandler: commentsHandler,
		healthHandler:   healthHandler,
		realtimeServer:  realtimeServer,
		tokens:          tokens,
		logger:          logger,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.enableCors)
	r.Use(app.loggerMiddleware)
	r.Use(app.prometheusMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(app.rateLimiterMiddleware)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", app.authHandler.RegisterHandler)
				r.Post("/login", app.authHandler.LoginHandler)
				r.Post("/refresh", app.authHandler.RefreshHandler)
			})

			r.Route("/designs", func(r chi.Router) {
				r.Get("/", app.designsHandler.ListDesignsHandler)
				r.Get("/{designId}", app.designsHandler.GetDesignHandler)

				// Comment identity is client-declared, like the
				// realtime join payload; no token required.
				r.Get("/{designId}/comments", app.commentsHandler.ListCommentsHandler)
				r.Post("/{designId}/comments", app.commentsHandler.CreateCommentHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.requireAuth)

					r.Post("/", app.designsHandler.CreateDesignHandler)
					r.Put("/{designId}", app.designsHandler.UpdateDesignHandler)
					r.Delete("/{designId}", app.designsHandler.DeleteDesignHandler)
				})
			})
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Get("/realtime", app.realtimeServer.HandleWS)
	r.Handle("/metrics", metrics.Handler())

	return otelhttp.NewHandler(r, "inkwell-api")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		// Fail readiness probes while in-flight requests drain.
		healthHandler.SetHealthy(false)

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
