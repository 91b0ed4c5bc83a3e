// Package ecoscan exposes the waste-detection service as an embeddable
// API: adaptive image classification, device optimization, environmental
// impact lookups, and feedback collection.
package ecoscan

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/classify"
	"github.com/greenloop-ai/ecoscan/internal/config"
	"github.com/greenloop-ai/ecoscan/internal/envdata"
	"github.com/greenloop-ai/ecoscan/internal/feedback"
	"github.com/greenloop-ai/ecoscan/internal/model"
	"github.com/greenloop-ai/ecoscan/internal/modelcache"
	"github.com/greenloop-ai/ecoscan/internal/optimizer"
	"github.com/greenloop-ai/ecoscan/internal/predictor"
	"github.com/greenloop-ai/ecoscan/internal/stats"
	"github.com/greenloop-ai/ecoscan/internal/worker"
)

// Service wires the classification pipeline, device optimizer, impact
// catalog, and feedback sink behind one API. Create once, reuse across
// requests; safe for concurrent use.
type Service struct {
	cfg        *config.Config
	logger     *zap.Logger
	classifier *classify.Classifier
	catalog    *envdata.Catalog
	cache      *modelcache.Cache
	janitor    *modelcache.Janitor
	stats      *stats.Aggregator
	sink       feedback.Sink
}

// New creates a Service from the given configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ecoscan: nil configuration")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.backend == "" {
		o.backend = cfg.Model.Backend
	}
	if o.clock == nil {
		o.clock = clock.New()
	}

	var src envdata.Source
	if o.catalogPath != "" {
		src = envdata.FileSource{Path: o.catalogPath}
	}
	catalog := envdata.New(src, o.logger)

	cache := modelcache.NewCache(o.clock)
	agg := stats.New()

	classifier, err := classify.New(classify.Config{
		Backend:     o.backend,
		ModelPath:   cfg.Model.Path,
		LibraryPath: cfg.Model.LibraryPath,
		Threads:     cfg.Model.Threads,
	}, cache, catalog, worker.New(cfg.Model.Workers), agg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("ecoscan: %w", err)
	}

	sink := o.sink
	if sink == nil {
		if cfg.Feedback.WebhookURL != "" {
			sink = feedback.NewWebhookSink(cfg.Feedback.WebhookURL, o.logger,
				feedback.WithBatchSize(cfg.Feedback.BatchSize),
				feedback.WithFlushInterval(cfg.Feedback.FlushInterval))
		} else {
			sink = feedback.NewLogSink(o.logger)
		}
	}

	janitor := modelcache.NewJanitor(cache, modelcache.JanitorConfig{
		SweepInterval:   cfg.Cache.SweepInterval,
		EvictionTTL:     cfg.Cache.EvictionTTL,
		ReclaimInterval: cfg.Cache.ReclaimInterval,
	}, o.clock, o.logger)

	return &Service{
		cfg:        cfg,
		logger:     o.logger,
		classifier: classifier,
		catalog:    catalog,
		cache:      cache,
		janitor:    janitor,
		stats:      agg,
		sink:       sink,
	}, nil
}

// WarmUp loads the default model ahead of traffic. Concurrent callers
// share one load attempt; a failure leaves the service unready and a later
// call may retry.
func (s *Service) WarmUp(ctx context.Context) error {
	return s.classifier.WarmUp(ctx)
}

// Ready reports whether warm-up has completed.
func (s *Service) Ready() bool {
	return s.classifier.Ready()
}

// RunJanitor executes the cache maintenance loop until ctx is cancelled.
// Run it on its own goroutine.
func (s *Service) RunJanitor(ctx context.Context) {
	s.janitor.Run(ctx)
}

// Detect classifies the waste items in an image. When opts.Device is set
// the processing profile is derived from the device's capabilities and the
// optimizer's advisory notes are included in the result.
func (s *Service) Detect(ctx context.Context, imageBytes []byte, opts DetectOptions) (*DetectResult, error) {
	start := time.Now()

	classifyOpts := classify.Options{
		ModelVersion:  opts.ModelVersion,
		MinConfidence: opts.MinConfidence,
	}

	var deviceRecs []string
	if opts.Device != nil {
		profile, _, recs, err := optimizer.Optimize(deviceToInternal(*opts.Device), opts.Quality)
		if err != nil {
			return nil, classify.NewError(classify.KindConfiguration, err.Error(), err)
		}
		classifyOpts.Profile = &profile
		deviceRecs = recs
	}

	dets, err := s.classifier.Classify(ctx, imageBytes, classifyOpts)
	if err != nil {
		return nil, err
	}

	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		out = append(out, detectionFromInternal(d))
	}

	return &DetectResult{
		Detections:     out,
		ProcessingTime: time.Since(start),
		Model:          s.modelInfo(predictor.ResolveVersion(opts.ModelVersion)),
		Suggestions:    append(deviceRecs, usageSuggestions(out)...),
	}, nil
}

// Optimize resolves the processing profile, performance prediction, and
// advisory recommendations for a device descriptor.
func (s *Service) Optimize(device Device, quality string) (*OptimizeResult, error) {
	profile, prediction, recs, err := optimizer.Optimize(deviceToInternal(device), quality)
	if err != nil {
		return nil, classify.NewError(classify.KindConfiguration, err.Error(), err)
	}
	return &OptimizeResult{
		DeviceTier:      profile.QualityTier,
		Profile:         profileFromInternal(profile),
		Prediction:      predictionFromInternal(prediction),
		Recommendations: recs,
	}, nil
}

// SubmitFeedback validates and forwards a user correction. Returns the
// assigned feedback id.
func (s *Service) SubmitFeedback(ctx context.Context, req FeedbackRequest) (string, error) {
	if req.DetectionID == "" {
		return "", classify.NewError(classify.KindConfiguration, "detection_id is required", nil)
	}
	if req.ConfidenceRating < 0 || req.ConfidenceRating > 1 {
		return "", classify.NewError(classify.KindConfiguration, "confidence_rating must be within [0,1]", nil)
	}
	if req.Correction != "" && !knownCategory(req.Correction) {
		return "", classify.NewError(classify.KindConfiguration,
			fmt.Sprintf("unknown category %q in user_correction", req.Correction), nil)
	}

	fb := model.Feedback{
		ID:               uuid.NewString(),
		DetectionID:      req.DetectionID,
		Correction:       req.Correction,
		ConfidenceRating: req.ConfidenceRating,
		WasHelpful:       req.WasHelpful,
		ReceivedAt:       time.Now().UTC(),
	}
	if err := s.sink.Submit(ctx, fb); err != nil {
		return "", fmt.Errorf("ecoscan: submit feedback: %w", err)
	}
	return fb.ID, nil
}

// Health returns a point-in-time view of service state.
func (s *Service) Health() Health {
	snap := s.stats.Snapshot()
	status := "starting"
	if s.classifier.Ready() {
		status = "healthy"
	}
	return Health{
		Status:              status,
		Ready:               s.classifier.Ready(),
		UptimeSeconds:       snap.Uptime.Seconds(),
		TotalRequests:       snap.TotalRequests,
		AverageProcessingMS: float64(snap.AverageProcessingTime) / float64(time.Millisecond),
		CachedModels:        s.cache.Len(),
	}
}

// Models lists the detection models this service can serve.
func (s *Service) Models() []ModelInfo {
	catalog := predictor.Catalog()
	out := make([]ModelInfo, 0, len(catalog))
	for _, m := range catalog {
		out = append(out, modelInfoFromInternal(m))
	}
	return out
}

// EnvironmentalImpact looks up impact facts for an item name. The second
// return is false for unknown items.
func (s *Service) EnvironmentalImpact(item string) (Impact, bool) {
	fact, ok := s.catalog.Lookup(item)
	return impactFromInternal(fact), ok
}

// Close flushes the feedback sink and releases all cached model handles.
func (s *Service) Close() error {
	sinkErr := s.sink.Close()
	if err := s.cache.Close(); err != nil {
		return err
	}
	return sinkErr
}

func (s *Service) modelInfo(version string) ModelInfo {
	for _, m := range predictor.Catalog() {
		if m.ID == version {
			return modelInfoFromInternal(m)
		}
	}
	return ModelInfo{ID: version}
}

func knownCategory(category string) bool {
	c := model.CanonicalCategory(category)
	for _, k := range model.KnownCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// usageSuggestions derives reduction advice from what was detected.
func usageSuggestions(dets []Detection) []string {
	var landfill, hazardous int
	for _, d := range dets {
		switch d.Category {
		case model.CategoryLandfill:
			landfill++
		case model.CategoryHazardous:
			hazardous++
		}
	}

	var out []string
	if landfill > 0 {
		out = append(out, "Some detected items are landfill-bound; reusable alternatives would cut this waste")
	}
	if hazardous > 0 {
		out = append(out, "Hazardous items detected; locate your nearest designated drop-off point")
	}
	if len(dets) >= 5 {
		out = append(out, "A large number of waste items was detected; reviewing recurring purchases may reduce it")
	}
	return out
}
