package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/tipgate/adapters/events"
	"github.com/layer-3/tipgate/adapters/ratelimit"
	"github.com/layer-3/tipgate/adapters/signature"
	"github.com/layer-3/tipgate/adapters/store"
	"github.com/layer-3/tipgate/adapters/tokenizer"
	"github.com/layer-3/tipgate/internal/config"
	"github.com/layer-3/tipgate/ports"
	"github.com/layer-3/tipgate/service"
	transport "github.com/layer-3/tipgate/transport/http"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tipgate stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var redisClient *redis.Client
	if cfg.Store == config.StoreRedis || cfg.Events {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisClient.Close()
	}

	st, err := openStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer st.Close()

	var publisher ports.EventPublisher = events.NopPublisher{}
	if cfg.Events {
		streamPublisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return fmt.Errorf("creating redis stream publisher: %w", err)
		}
		defer streamPublisher.Close()
		publisher = events.NewWatermillPublisher(streamPublisher)
	}

	var provisionerOpts []service.ProvisionerOption
	if cfg.AtomicProvisioning {
		if atomic, ok := st.(ports.AtomicProvisioner); ok {
			provisionerOpts = append(provisionerOpts, service.WithAtomicProvisioning(atomic))
		} else {
			logger.Warn("store has no transactional provisioning, using two-step provisioning", "store", cfg.Store)
		}
	}

	// Per-process table: with N instances the effective limit is N times the configured one.
	limiter := ratelimit.NewWindowLimiter(cfg.RateLimit, cfg.RateWindow, cfg.RateTableSize)

	provisioner := service.NewProvisioner(st, st, publisher, logger, provisionerOpts...)
	authService := service.NewAuthService(
		limiter,
		signature.NewWalletVerifier(),
		provisioner,
		tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret), tokenizer.WithTTL(cfg.TokenTTL)),
		st,
		logger,
		service.WithRequiredChallenge(cfg.RequireChallenge),
		service.WithChallengeTTL(cfg.ChallengeTTL),
	)
	pageService := service.NewPageService(st, logger)

	gin.SetMode(gin.ReleaseMode)
	router := transport.SetupRouter(authService, pageService, limiter, transport.RouterConfig{
		AllowedOrigins: cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tipgate listening", "addr", cfg.HTTPAddr, "store", cfg.Store, "require_challenge", cfg.RequireChallenge)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Config, redisClient *redis.Client) (ports.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		return store.NewRedisStore(redisClient), nil
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
