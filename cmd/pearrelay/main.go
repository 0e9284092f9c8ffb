package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Yarielito06/Pearfect-Trading-App/adapters/builder"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/events"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/store"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/tokenizer"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/venue"
	"github.com/Yarielito06/Pearfect-Trading-App/pkg/config"
	"github.com/Yarielito06/Pearfect-Trading-App/pkg/logger"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
	"github.com/Yarielito06/Pearfect-Trading-App/service"
	"github.com/Yarielito06/Pearfect-Trading-App/transport/http"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "pearrelay",
		Usage:  "relay wallet logins and pair trades to the Pear venue",
		Flags:  config.Flags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := config.FromContext(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, OutputFile: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	entry := logrus.NewEntry(lg)

	tokenStore, publisher, closeBackends, err := backends(c.Context, cfg, entry)
	if err != nil {
		return err
	}
	defer closeBackends()

	approver, err := builder.NewApprover(cfg.BuilderAddress, cfg.BuilderMaxFeeRate)
	if err != nil {
		return err
	}

	venueClient := venue.NewClient(cfg.VenueConfig(), entry.WithField("component", "venue"))
	relay := service.NewRelayService(
		venueClient,
		tokenStore,
		events.NewWatermillPublisher(publisher),
		tokenizer.NewJWTInspector(),
		entry,
	)

	if lg.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := http.SetupRouter(http.NewHandlers(relay, approver), entry.WithField("component", "http"))

	srv := &nethttp.Server{
		Addr:              cfg.ListenAddr,
		Handler:           http.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		entry.WithFields(logrus.Fields{
			"addr":      cfg.ListenAddr,
			"venue":     cfg.VenueURL,
			"client_id": cfg.ClientID,
		}).Info("pearrelay listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	entry.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// backends picks Redis for tokens and events when a URL is configured and
// in-memory implementations otherwise.
func backends(ctx context.Context, cfg config.Config, entry *logrus.Entry) (ports.TokenStore, message.Publisher, func(), error) {
	wmLogger := events.NewLogrusAdapter(entry.WithField("component", "events"))

	if cfg.RedisURL == "" {
		pubSub := events.NewInProcessPubSub(wmLogger)
		// Nothing outside the process can subscribe, so log events here.
		if err := events.LogLoginEvents(ctx, pubSub, entry.WithField("component", "events")); err != nil {
			_ = pubSub.Close()
			return nil, nil, nil, err
		}
		return store.NewMemoryStore(), pubSub, func() { _ = pubSub.Close() }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	publisher, err := events.NewRedisStreamPublisher(redisClient, wmLogger)
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, nil, err
	}

	closeFn := func() {
		_ = publisher.Close()
		_ = redisClient.Close()
	}
	return store.NewRedisStore(redisClient), publisher, closeFn, nil
}
