package modelcache

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Janitor defaults.
const (
	DefaultSweepInterval   = 30 * time.Second
	DefaultEvictionTTL     = 10 * time.Minute
	DefaultReclaimInterval = time.Minute
)

// JanitorConfig tunes the background sweep.
type JanitorConfig struct {
	SweepInterval   time.Duration
	EvictionTTL     time.Duration
	ReclaimInterval time.Duration
}

func (c *JanitorConfig) applyDefaults() {
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.EvictionTTL <= 0 {
		c.EvictionTTL = DefaultEvictionTTL
	}
	if c.ReclaimInterval <= 0 {
		c.ReclaimInterval = DefaultReclaimInterval
	}
}

// Janitor periodically evicts idle model handles and, on a separate longer
// interval, nudges the runtime to return free memory to the OS.
type Janitor struct {
	cache   *Cache
	cfg     JanitorConfig
	clock   clock.Clock
	logger  *zap.Logger
	reclaim func()
}

// NewJanitor creates a Janitor for the given cache. A nil clock uses the
// wall clock; a nil logger is replaced with a no-op logger.
func NewJanitor(cache *Cache, cfg JanitorConfig, clk clock.Clock, logger *zap.Logger) *Janitor {
	cfg.applyDefaults()
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		cache:   cache,
		cfg:     cfg,
		clock:   clk,
		logger:  logger,
		reclaim: debug.FreeOSMemory,
	}
}

// Run executes the sweep loop until ctx is cancelled. Sweep failures are
// logged and never terminate the loop; cancellation stops scheduling new
// sweeps and lets an in-progress sweep finish before returning.
func (j *Janitor) Run(ctx context.Context) {
	sweep := j.clock.Ticker(j.cfg.SweepInterval)
	defer sweep.Stop()
	reclaim := j.clock.Ticker(j.cfg.ReclaimInterval)
	defer reclaim.Stop()

	j.logger.Info("cache janitor started",
		zap.Duration("sweep_interval", j.cfg.SweepInterval),
		zap.Duration("eviction_ttl", j.cfg.EvictionTTL))

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cache janitor stopped")
			return
		case <-sweep.C:
			j.sweep()
		case <-reclaim.C:
			j.reclaim()
		}
	}
}

func (j *Janitor) sweep() {
	evicted, errs := j.cache.EvictIdle(j.cfg.EvictionTTL)
	for _, err := range errs {
		j.logger.Warn("cache sweep failure", zap.Error(err))
	}
	if len(evicted) > 0 {
		j.logger.Info("evicted idle model handles",
			zap.Strings("keys", evicted),
			zap.Int("remaining", j.cache.Len()))
	}
}
