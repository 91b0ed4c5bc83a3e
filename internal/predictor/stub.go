package predictor

import (
	"context"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

func init() {
	Register("stub", func(cfg Config) (Predictor, error) {
		return &stubPredictor{}, nil
	})
}

// stubPredictor returns deterministic detections sized to the input image.
// Used in development and tests, where no model artifact is available.
type stubPredictor struct{}

func (p *stubPredictor) Predict(ctx context.Context, img *model.ImageTensor, _ model.ProcessingProfile) ([]model.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := float64(img.SourceWidth)
	h := float64(img.SourceHeight)
	return []model.RawDetection{
		{
			Label:      "Plastic Bottle",
			Category:   model.CategoryRecycle,
			Confidence: 0.92,
			BBox:       model.BoundingBox{X1: 0.15 * w, Y1: 0.1 * h, X2: 0.4 * w, Y2: 0.6 * h},
			Materials:  map[string]float64{"plastic": 0.95, "metal": 0.05},
		},
		{
			Label:      "Apple Core",
			Category:   model.CategoryCompost,
			Confidence: 0.87,
			BBox:       model.BoundingBox{X1: 0.5 * w, Y1: 0.2 * h, X2: 0.75 * w, Y2: 0.5 * h},
			Materials:  map[string]float64{"organic": 1.0},
		},
	}, nil
}

func (p *stubPredictor) Close() error { return nil }
