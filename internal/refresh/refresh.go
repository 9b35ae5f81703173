package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quotesnap/internal/aggregate"
	"quotesnap/internal/cache"
	"quotesnap/internal/provider"
	"quotesnap/internal/snapshot"
)

// DefaultInterval is the pause between cycles when none is configured.
const DefaultInterval = 3 * time.Second

// ErrCyclePanic is returned by RunOnce when a cycle panicked.
var ErrCyclePanic = errors.New("refresh cycle panicked")

// Sink receives every published document after the cache has it.
type Sink interface {
	Mirror(ctx context.Context, doc []byte, version uint64) error
}

// BuildFunc renders the tables into a document.
type BuildFunc func(tables []*provider.Table) ([]byte, error)

// Loop owns the exchange tables and is the cache's only writer.
type Loop struct {
	feeds    []aggregate.Feed
	tables   []*provider.Table
	cache    *cache.Snapshot
	logger   *zap.Logger
	interval time.Duration
	sinks    []Sink
	build    BuildFunc
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the pause between cycles. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithSinks adds sinks that receive each published document.
func WithSinks(sinks ...Sink) Option {
	return func(l *Loop) {
		l.sinks = append(l.sinks, sinks...)
	}
}

// WithBuilder replaces snapshot.Build.
func WithBuilder(build BuildFunc) Option {
	return func(l *Loop) {
		if build != nil {
			l.build = build
		}
	}
}

// New returns a loop publishing into c. Feeds keep their order in the document.
func New(feeds []aggregate.Feed, c *cache.Snapshot, logger *zap.Logger, opts ...Option) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		feeds:    feeds,
		tables:   make([]*provider.Table, 0, len(feeds)),
		cache:    c,
		logger:   logger,
		interval: DefaultInterval,
		build:    snapshot.Build,
	}
	for _, f := range feeds {
		l.tables = append(l.tables, f.Table)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the configured pause between cycles.
func (l *Loop) Interval() time.Duration { return l.interval }

// Run repeats RunOnce until ctx is canceled, waiting the interval between
// cycles. Cycle failures are logged and never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("refresh loop started",
		zap.Duration("interval", l.interval),
		zap.Int("exchanges", len(l.feeds)),
	)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("refresh loop stopped", zap.Uint64("version", l.cache.Version()))
			return ctx.Err()
		case <-timer.C:
		}
		_ = l.RunOnce(ctx)
		timer.Reset(l.interval)
	}
}

// RunOnce performs one sweep, build and publish. A build failure or a panic
// skips the publish; the cache keeps serving the previous document.
func (l *Loop) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanic, rec)
			l.logger.Error("refresh cycle panicked, publish skipped", zap.Any("panic", rec), zap.Error(err))
		}
	}()

	start := time.Now()
	results := aggregate.SweepAll(ctx, l.feeds, l.logger)

	doc, err := l.build(l.tables)
	if err != nil {
		l.logger.Error("snapshot build failed, publish skipped", zap.Error(err))
		return err
	}
	version := l.cache.Publish(doc)

	failed := 0
	for _, r := range results {
		failed += r.Failed
	}
	l.logger.Debug("snapshot published",
		zap.Uint64("version", version),
		zap.Int("bytes", len(doc)),
		zap.Int("failed_fetches", failed),
		zap.Duration("took", time.Since(start)),
	)

	for _, s := range l.sinks {
		if err := s.Mirror(ctx, doc, version); err != nil {
			l.logger.Warn("snapshot mirror failed", zap.Uint64("version", version), zap.Error(err))
		}
	}
	return nil
}
