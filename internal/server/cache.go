package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/config"
	"github.com/greenloop-ai/ecoscan/pkg/ecoscan"
)

const cachePingTimeout = 2 * time.Second

// resultStore is the detect-handler view of the response cache.
type resultStore interface {
	key(image []byte, opts ecoscan.DetectOptions) string
	get(ctx context.Context, key string) ([]byte, bool)
	put(ctx context.Context, key string, body []byte)
}

// resultCache stores rendered detection responses in redis, keyed by a
// digest of the image bytes and request options. Identical uploads skip
// the whole pipeline.
type resultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// newResultCache connects to redis per cfg. Returns nil (cache disabled)
// when the cache is not configured or redis does not answer a ping.
func newResultCache(cfg config.RedisConfig, logger *zap.Logger) *resultCache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cachePingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, detection result cache disabled",
			zap.String("addr", cfg.Addr), zap.Error(err))
		client.Close()
		return nil
	}

	logger.Info("detection result cache enabled", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))
	return &resultCache{client: client, ttl: cfg.TTL, logger: logger}
}

// key digests the image and every option that changes the response.
func (c *resultCache) key(image []byte, opts ecoscan.DetectOptions) string {
	h := sha256.New()
	h.Write(image)
	fmt.Fprintf(h, "|%s|%g|%s", opts.ModelVersion, opts.MinConfidence, opts.Quality)
	if opts.Device != nil {
		fmt.Fprintf(h, "|%g|%d|%d|%s", opts.Device.MemoryGB, opts.Device.CPUCores,
			opts.Device.AcceleratorTier, opts.Device.Platform)
	}
	return "ecoscan:detect:" + hex.EncodeToString(h.Sum(nil))
}

// get returns the cached response body for key. Redis failures count as
// misses.
func (c *resultCache) get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("result cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return body, true
}

// put stores a response body under key. Failures are logged and dropped.
func (c *resultCache) put(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Debug("result cache write failed", zap.Error(err))
	}
}
