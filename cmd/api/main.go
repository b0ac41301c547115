package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/httplog"
	"github.com/go2gg/edge/config"
	"github.com/go2gg/edge/dunning"
	dunningpg "github.com/go2gg/edge/dunning/postgres"
	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/internal/http/chi"
	"github.com/go2gg/edge/internal/postgres"
	"github.com/go2gg/edge/internal/queue"
	"github.com/go2gg/edge/metrics"
	"github.com/go2gg/edge/ratelimit"
	"github.com/go2gg/edge/ratelimit/gateway"
	"github.com/go2gg/edge/ratelimit/memory"
	ratelimitredis "github.com/go2gg/edge/ratelimit/redis"
	"github.com/go2gg/edge/ratelimit/remote"
	"github.com/go2gg/edge/webhook"
	webhookpg "github.com/go2gg/edge/webhook/postgres"
	"github.com/go2gg/edge/webhook/sender"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// sweepInterval is how often idle in-memory windows are evicted
const sweepInterval = time.Minute

// redeliveryBaseDelay is the wait before the first redelivery; each further attempt doubles it
const redeliveryBaseDelay = time.Minute

/*
 * main wires every package together: imports only flow downward, from the binary
 * to the domain packages and from them to storage.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logger := httplog.NewLogger(cfg.ServiceName, httplog.Options{
		JSON:     true,
		LogLevel: cfg.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	clk := clock.System()

	shutdownTracing, err := metrics.SetupTracing(ctx, cfg.ServiceName, cfg.OTelExporterOTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("shutting down tracing")
		}
	}()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.GetStartupReadinessTimeout(), logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(cfg.DatabaseURL, logger); err != nil {
		return err
	}
	if err := postgres.MigrateRiver(ctx, pool, logger); err != nil {
		return err
	}

	limiter, windows, redisClient, err := newLimiter(ctx, cfg, clk, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	policies := ratelimit.DefaultPolicies(cfg.RateLimitAPILimit, cfg.GetAPIWindow())
	if cfg.RateLimitPolicyFile != "" {
		if err := policies.LoadFile(cfg.RateLimitPolicyFile); err != nil {
			return fmt.Errorf("loading rate limit policies: %w", err)
		}
	}

	schedule := dunning.DefaultSchedule()
	if cfg.DunningScheduleFile != "" {
		schedule, err = dunning.LoadSchedule(cfg.DunningScheduleFile)
		if err != nil {
			return fmt.Errorf("loading dunning schedule: %w", err)
		}
	}

	exporter, err := metrics.NewOTelExporter(
		cfg.ServiceName,
		metrics.NewStateCollector(windows, postgres.NewStats(pool), clk),
		nil,
	)
	if err != nil {
		return fmt.Errorf("setting up metrics: %w", err)
	}
	defer func() {
		if err := exporter.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("shutting down metrics")
		}
	}()

	webhooks := webhook.NewService(
		webhookpg.NewRepository(pool),
		sender.New(cfg.GetWebhookTimeout()),
		webhook.WithClock(clk),
		webhook.WithLogger(logger),
		webhook.WithRecorder(exporter),
	)

	dunningSvc := dunning.NewService(
		dunningpg.NewRepository(pool),
		dunning.WithSchedule(schedule),
		dunning.WithClock(clk),
		dunning.WithLogger(logger),
	)
	runner := dunning.NewRunner(
		dunningSvc,
		dunning.NewLogMailer(logger),
		dunning.NewWebhookCanceler(webhooks, clk),
		dunning.WithRunnerClock(clk),
		dunning.WithRunnerLogger(logger),
		dunning.WithRecorder(exporter),
	)

	manager, err := queue.NewManager(pool, queue.Config{
		DunningScanInterval: cfg.GetDunningScanInterval(),
	}, runner, webhooks, logger)
	if err != nil {
		return err
	}
	webhooks.SetRetryScheduler(manager, cfg.WebhookMaxRedeliveries, redeliveryBaseDelay)

	if err := manager.Start(ctx); err != nil {
		return err
	}

	// a remote backend is itself a counter service client; serving the protocol on top of it would loop
	counter := limiter
	if cfg.RateLimitBackend == config.BackendRemote {
		counter = nil
	}

	r := chi.Handlers(ctx, chi.Deps{
		ServiceName: cfg.ServiceName,
		Logger:      logger,
		Clock:       clk,
		Gateway: gateway.New(limiter,
			gateway.WithEnabled(cfg.RateLimitEnabled),
			gateway.WithClock(clk),
			gateway.WithLogger(logger),
			gateway.WithRecorder(exporter),
		),
		Policies: policies,
		Counter:  counter,
		Webhooks: webhooks,
		Dunning:  dunningSvc,
		Opener:   runner,
		Scans:    manager,
		Metrics:  exporter.ServeHTTP(),
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			if redisClient != nil {
				if err := redisClient.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, manager, ctx, cfg.GetShutdownTimeout(), logger, errShutdown)
	logger.Info().Str("port", cfg.Port).Str("rate_limit_backend", cfg.RateLimitBackend).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errShutdown
}

// newLimiter builds the configured backend. windows is nil when the backend cannot count its keys.
func newLimiter(ctx context.Context, cfg *config.Config, clk clock.Clock, logger zerolog.Logger) (ratelimit.Limiter, metrics.WindowCounter, *redis.Client, error) {
	switch cfg.RateLimitBackend {
	case config.BackendRedis:
		var client *redis.Client
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 250 * time.Millisecond
		b.MaxElapsedTime = cfg.GetStartupReadinessTimeout()
		err := backoff.RetryNotify(
			func() error {
				c, err := ratelimitredis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
				if err != nil {
					return err
				}
				client = c
				return nil
			},
			backoff.WithContext(b, ctx),
			func(err error, next time.Duration) {
				logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Dur("retry_in", next).Msg("redis not ready")
			},
		)
		if err != nil {
			return nil, nil, nil, err
		}
		l := ratelimitredis.NewLimiter(client, clk)
		return l, l, client, nil
	case config.BackendRemote:
		return remote.NewClient(cfg.RateLimitRemoteURL, nil), nil, nil, nil
	default:
		store := memory.NewStore(clk, memory.WithLogger(logger))
		go store.RunSweeper(ctx, sweepInterval)
		return store, store, nil, nil
	}
}

func shutdown(server *http.Server, manager *queue.Manager, ctxShutdown context.Context, timeout time.Duration, logger zerolog.Logger, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()

	logger.Info().Msg("shutting down server")
	err := server.Shutdown(ctxTimeout)
	if qerr := manager.Stop(ctxTimeout); qerr != nil {
		logger.Warn().Err(qerr).Msg("stopping job queue")
	}
	switch {
	case err == nil:
		errShutdown <- nil
	case errors.Is(err, context.DeadlineExceeded):
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
