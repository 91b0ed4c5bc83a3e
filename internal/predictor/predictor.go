// Package predictor defines the inference capability consumed by the
// classification pipeline and the registry of its backends.
package predictor

import (
	"context"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

// Predictor runs object detection on a preprocessed image. Implementations
// are opaque model handles: expensive to create, safe for concurrent
// Predict calls, released with Close.
type Predictor interface {
	Predict(ctx context.Context, img *model.ImageTensor, profile model.ProcessingProfile) ([]model.RawDetection, error)
	Close() error
}

// Config carries backend construction parameters.
type Config struct {
	// Version is the model identifier being loaded (see Catalog).
	Version string
	// ModelPath is the backend-specific model file location.
	ModelPath string
	// LibraryPath points at the ONNX Runtime shared library, when relevant.
	LibraryPath string
	// Threads bounds intra-op parallelism; 0 lets the backend decide.
	Threads int
}
