package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient is the subset of *redis.Client the mirror needs.
type RedisClient interface {
	Pipeline() redis.Pipeliner
}

// Redis copies every published snapshot to a key and a pub/sub channel so
// sibling services can read it without polling the HTTP endpoint. The service
// never reads the key back.
type Redis struct {
	rdb     RedisClient
	key     string
	channel string
	ttl     time.Duration
	logger  *zap.Logger
}

// Config names where snapshots are written.
type Config struct {
	Key     string
	Channel string
	TTL     time.Duration
}

// NewRedis returns a mirror writing through rdb. Empty Key defaults to
// "quotesnap:snapshot"; empty Channel disables publishing.
func NewRedis(rdb RedisClient, cfg Config, logger *zap.Logger) *Redis {
	if cfg.Key == "" {
		cfg.Key = "quotesnap:snapshot"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{rdb: rdb, key: cfg.Key, channel: cfg.Channel, ttl: cfg.TTL, logger: logger}
}

// Mirror writes doc in one pipeline round trip.
func (r *Redis) Mirror(ctx context.Context, doc []byte, version uint64) error {
	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, r.key, doc, r.ttl)
	if r.channel != "" {
		pipe.Publish(ctx, r.channel, doc)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	r.logger.Debug("snapshot mirrored",
		zap.String("key", r.key),
		zap.Uint64("version", version),
		zap.Int("bytes", len(doc)),
	)
	return nil
}
