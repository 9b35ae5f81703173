package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"quotesnap/internal/cache"
	"quotesnap/internal/config"
	"quotesnap/internal/exchanges"
	"quotesnap/internal/httpx"
	"quotesnap/internal/logger"
	"quotesnap/internal/refresh"
)

// fetch runs a single refresh cycle against the configured exchanges and
// prints the resulting document. It is meant for checking reachability and
// response shapes by hand; it does not need HOST or PORT.
func main() {
	var (
		configPath string
		pretty     bool
		timeout    time.Duration
		only       string
	)
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
	flag.BoolVar(&pretty, "pretty", false, "indent the printed document")
	flag.DurationVar(&timeout, "timeout", 0, "per-request timeout (default from config)")
	flag.StringVar(&only, "exchange", "", "fetch from one exchange only (coinbase or kraken)")
	flag.Parse()

	cfg, err := config.Read(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, timeout, only); err != nil {
		fmt.Fprintf(os.Stderr, "flags: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fetchOnce(ctx, cfg, log, os.Stdout, pretty); err != nil {
		log.Error("fetch failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, timeout time.Duration, only string) error {
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	switch only {
	case "":
	case "coinbase":
		cfg.Kraken.Enabled = false
		cfg.Coinbase.Enabled = true
	case "kraken":
		cfg.Coinbase.Enabled = false
		cfg.Kraken.Enabled = true
	default:
		return fmt.Errorf("unknown exchange %q", only)
	}
	return nil
}

// fetchOnce performs one cycle and writes the document to w.
func fetchOnce(ctx context.Context, cfg *config.Config, log *zap.Logger, w io.Writer, pretty bool) error {
	httpClient := httpx.New(cfg.HTTP.Timeout)
	httpClient.UserAgent = cfg.HTTP.UserAgent

	feeds, err := exchanges.Feeds(cfg, httpClient)
	if err != nil {
		return err
	}
	snapshots := cache.New()
	if err := refresh.New(feeds, snapshots, log).RunOnce(ctx); err != nil {
		return err
	}
	doc, ok := snapshots.Read()
	if !ok {
		return fmt.Errorf("no snapshot produced")
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return fmt.Errorf("indent: %w", err)
		}
		doc = buf.Bytes()
	}
	_, err = fmt.Fprintf(w, "%s\n", doc)
	return err
}
