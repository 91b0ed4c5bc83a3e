// Package feedback forwards user corrections to downstream training
// pipelines.
package feedback

import (
	"context"

	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

// Sink receives accepted feedback records. Implementations decide delivery
// semantics; Submit must be safe for concurrent use.
type Sink interface {
	Submit(ctx context.Context, fb model.Feedback) error
	Close() error
}

// LogSink records feedback to the structured log. It is the default sink
// for deployments without a training endpoint.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Submit(_ context.Context, fb model.Feedback) error {
	s.logger.Info("feedback received",
		zap.String("id", fb.ID),
		zap.String("detection_id", fb.DetectionID),
		zap.String("correction", fb.Correction),
		zap.Float64("confidence_rating", fb.ConfidenceRating),
		zap.Bool("was_helpful", fb.WasHelpful))
	return nil
}

func (s *LogSink) Close() error { return nil }
