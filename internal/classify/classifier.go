// Package classify orchestrates the detection pipeline: decode →
// preprocess → infer → validate → enrich, plus the warm-up lifecycle.
package classify

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/greenloop-ai/ecoscan/internal/envdata"
	"github.com/greenloop-ai/ecoscan/internal/model"
	"github.com/greenloop-ai/ecoscan/internal/modelcache"
	"github.com/greenloop-ai/ecoscan/internal/predictor"
	"github.com/greenloop-ai/ecoscan/internal/stats"
	"github.com/greenloop-ai/ecoscan/internal/worker"
)

// Config holds classifier construction parameters.
type Config struct {
	// Backend names the predictor backend to load models with ("onnx",
	// "stub", ...).
	Backend string
	// ModelPath locates the default model artifact; sibling versions are
	// resolved next to it.
	ModelPath string
	// LibraryPath optionally points at the ONNX Runtime shared library.
	LibraryPath string
	// Threads bounds backend intra-op parallelism; 0 lets the backend decide.
	Threads int
	// Policy overrides the per-category confidence thresholds.
	Policy ConfidencePolicy
}

// Options are per-request knobs for Classify.
type Options struct {
	// ModelVersion selects a catalog model; "" and "latest" resolve to the
	// default.
	ModelVersion string
	// MinConfidence is a request-level floor applied on top of the
	// per-category policy (the stricter of the two wins). Must be in [0,1].
	MinConfidence float64
	// Profile overrides the processing profile; nil uses DefaultProfile.
	Profile *model.ProcessingProfile
}

// DefaultProfile is the processing profile used when the caller supplies
// no device-derived profile.
func DefaultProfile() model.ProcessingProfile {
	return model.ProcessingProfile{
		TargetResolution: model.Resolution{Width: 640, Height: 640},
		Precision:        model.PrecisionFloat32,
		QualityTier:      model.TierMidRange,
		Enhance:          true,
		Denoise:          true,
		BatchSize:        1,
	}
}

// Classifier runs the adaptive classification pipeline. CPU-bound stages
// execute on a bounded worker pool; model handles live in a TTL cache
// shared with the janitor; warm-up is single-flight.
type Classifier struct {
	cfg          Config
	newPredictor predictor.Constructor
	cache        *modelcache.Cache
	catalog      *envdata.Catalog
	workers      *worker.Pool
	stats        *stats.Aggregator
	logger       *zap.Logger
	policy       ConfidencePolicy

	warm  singleflight.Group
	ready atomic.Bool
}

// New creates a Classifier. The backend name is resolved immediately so a
// misconfigured deployment fails at startup, not on the first request.
func New(cfg Config, cache *modelcache.Cache, catalog *envdata.Catalog, workers *worker.Pool, agg *stats.Aggregator, logger *zap.Logger) (*Classifier, error) {
	if cfg.Backend == "" {
		cfg.Backend = "onnx"
	}
	ctor, err := predictor.Get(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Classifier{
		cfg:          cfg,
		newPredictor: ctor,
		cache:        cache,
		catalog:      catalog,
		workers:      workers,
		stats:        agg,
		logger:       logger,
		policy:       policy,
	}, nil
}

// Ready reports whether warm-up has completed. Once true it stays true for
// the process lifetime.
func (c *Classifier) Ready() bool {
	return c.ready.Load()
}

// WarmUp loads the default model ahead of traffic. Concurrent callers
// share a single in-flight initialization: exactly one load attempt runs
// at a time, and every waiter observes its outcome. On failure the
// classifier returns to the uninitialized state so a later call may retry.
func (c *Classifier) WarmUp(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}
	_, err, _ := c.warm.Do("warmup", func() (any, error) {
		if c.ready.Load() {
			return nil, nil
		}
		start := time.Now()
		if _, err := c.loadPredictor(ctx, predictor.DefaultVersion); err != nil {
			return nil, err
		}
		c.ready.Store(true)
		c.logger.Info("warm-up complete",
			zap.String("model", predictor.DefaultVersion),
			zap.Duration("elapsed", time.Since(start)))
		return nil, nil
	})
	return err
}

// Classify runs the full pipeline on one image. Stages execute strictly in
// order for a request; requests are independent of each other.
func (c *Classifier) Classify(ctx context.Context, imageBytes []byte, opts Options) ([]model.EnrichedDetection, error) {
	start := time.Now()

	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, NewError(KindConfiguration, "confidence threshold must be within [0,1]", nil)
	}
	version := predictor.ResolveVersion(opts.ModelVersion)
	if !predictor.KnownVersion(version) {
		return nil, NewError(KindConfiguration, fmt.Sprintf("unknown model version %q", opts.ModelVersion), nil)
	}

	if err := c.WarmUp(ctx); err != nil {
		return nil, NewError(KindNotReady, "service warm-up has not completed", err)
	}

	profile := DefaultProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}

	// Decode and preprocess are CPU-bound; run them on the worker pool so
	// they never stall request intake.
	var tensor *model.ImageTensor
	if err := c.workers.Do(ctx, func() error {
		img, err := decode(imageBytes)
		if err != nil {
			return err
		}
		tensor = preprocess(img, profile, c.logger)
		return nil
	}); err != nil {
		return nil, err
	}

	pred, err := c.loadPredictor(ctx, version)
	if err != nil {
		return nil, NewError(KindInference, "model could not be loaded", err)
	}

	raw, err := pred.Predict(ctx, tensor, profile)
	if err != nil {
		return nil, NewError(KindInference, "inference failed", err)
	}

	var enriched []model.EnrichedDetection
	if err := c.workers.Do(ctx, func() error {
		kept := c.policy.Filter(raw, opts.MinConfidence)
		enriched = make([]model.EnrichedDetection, 0, len(kept))
		for _, d := range kept {
			enriched = append(enriched, enrich(d, c.catalog))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	c.stats.Record(elapsed)
	c.logger.Debug("classification complete",
		zap.String("model", version),
		zap.Int("raw_detections", len(raw)),
		zap.Int("detections", len(enriched)),
		zap.Duration("elapsed", elapsed))
	return enriched, nil
}

// loadPredictor fetches the cached model handle for version, loading it on
// first use. Loads for the same version are coalesced by the cache.
func (c *Classifier) loadPredictor(ctx context.Context, version string) (predictor.Predictor, error) {
	h, err := c.cache.GetOrLoad(ctx, version, func(context.Context) (modelcache.Handle, error) {
		c.logger.Info("loading model", zap.String("version", version), zap.String("backend", c.cfg.Backend))
		return c.newPredictor(predictor.Config{
			Version:     version,
			ModelPath:   c.modelPath(version),
			LibraryPath: c.cfg.LibraryPath,
			Threads:     c.cfg.Threads,
		})
	})
	if err != nil {
		return nil, err
	}
	return h.(predictor.Predictor), nil
}

// modelPath resolves the artifact location for a model version. Non-default
// versions live alongside the default artifact.
func (c *Classifier) modelPath(version string) string {
	if version == predictor.DefaultVersion || c.cfg.ModelPath == "" {
		return c.cfg.ModelPath
	}
	return filepath.Join(filepath.Dir(c.cfg.ModelPath), version+".onnx")
}
