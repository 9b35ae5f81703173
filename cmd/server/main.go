package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quotesnap/internal/api"
	"quotesnap/internal/cache"
	"quotesnap/internal/config"
	"quotesnap/internal/exchanges"
	"quotesnap/internal/httpx"
	"quotesnap/internal/logger"
	"quotesnap/internal/mirror"
	"quotesnap/internal/refresh"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// run serves until ctx is canceled, then stops the HTTP server and the
// refresh loop.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	httpClient := httpx.New(cfg.HTTP.Timeout)
	httpClient.UserAgent = cfg.HTTP.UserAgent

	feeds, err := exchanges.Feeds(cfg, httpClient)
	if err != nil {
		return err
	}

	snapshots := cache.New()
	opts := []refresh.Option{refresh.WithInterval(cfg.Refresh.Interval)}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		opts = append(opts, refresh.WithSinks(mirror.NewRedis(rdb, mirror.Config{
			Key:     cfg.Redis.Key,
			Channel: cfg.Redis.Channel,
			TTL:     cfg.Redis.TTL,
		}, log)))
		log.Info("snapshot mirror enabled", zap.String("addr", cfg.Redis.Addr), zap.String("key", cfg.Redis.Key))
	}
	loop := refresh.New(feeds, snapshots, log, opts...)

	srv := newServer(cfg.Server, api.NewRouter(api.RouterDeps{
		Snapshots: snapshots,
		Logger:    log,
		StaticDir: cfg.Server.StaticDir,
	}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("refresh loop: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newServer(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
