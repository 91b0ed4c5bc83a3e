package ecoscan

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/feedback"
	"github.com/greenloop-ai/ecoscan/internal/model"
)

type options struct {
	logger      *zap.Logger
	backend     string
	catalogPath string
	sink        feedback.Sink
	clock       clock.Clock
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the structured logger. Default: no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPredictorBackend overrides the inference backend named in the
// configuration ("onnx", "stub").
func WithPredictorBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithCatalogFile loads the environmental-impact catalog from a YAML file
// instead of the built-in table. A load failure falls back to the built-in
// table and is logged.
func WithCatalogFile(path string) Option {
	return func(o *options) { o.catalogPath = path }
}

// WithClock injects a clock for the model cache and janitor. Default: wall
// clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// FeedbackSink receives accepted feedback records. Submit must be safe for
// concurrent use.
type FeedbackSink interface {
	Submit(ctx context.Context, fb Feedback) error
	Close() error
}

// WithFeedbackSink delivers feedback to a custom sink instead of the
// configured webhook or service log.
func WithFeedbackSink(s FeedbackSink) Option {
	return func(o *options) { o.sink = sinkAdapter{s} }
}

// sinkAdapter bridges a caller-supplied sink to the internal sink form.
type sinkAdapter struct {
	sink FeedbackSink
}

func (a sinkAdapter) Submit(ctx context.Context, fb model.Feedback) error {
	return a.sink.Submit(ctx, Feedback{
		ID:               fb.ID,
		DetectionID:      fb.DetectionID,
		Correction:       fb.Correction,
		ConfidenceRating: fb.ConfidenceRating,
		WasHelpful:       fb.WasHelpful,
		ReceivedAt:       fb.ReceivedAt,
	})
}

func (a sinkAdapter) Close() error { return a.sink.Close() }
