package predictor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

func init() {
	Register("onnx", newONNXPredictor)
}

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// scoreFloor discards anchors whose best class score is effectively noise
// before they reach the confidence policy.
const scoreFloor = 0.05

// onnxPredictor runs a YOLO-style waste-detection model through ONNX
// Runtime. One instance per loaded model version; Predict is safe for
// concurrent use (the dynamic session serializes runs internally).
type onnxPredictor struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

func newONNXPredictor(cfg Config) (Predictor, error) {
	libPath := cfg.LibraryPath
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(cfg.ModelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input and 1 output, got %d/%d", len(inputs), len(outputs))
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	opts.SetIntraOpNumThreads(threads)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxPredictor{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

func (p *onnxPredictor) Predict(ctx context.Context, img *model.ImageTensor, profile model.ProcessingProfile) ([]model.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := img.Width, img.Height
	inShape := ort.NewShape(1, int64(img.Channels), int64(h), int64(w))
	in, err := ort.NewTensor(inShape, img.Data)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	anchors := anchorCount(w, h)
	outShape := ort.NewShape(1, int64(4+len(wasteClasses)), int64(anchors))
	out, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := p.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	return decodeDetections(out.GetData(), anchors, w, h, img.SourceWidth, img.SourceHeight), nil
}

func (p *onnxPredictor) Close() error {
	return p.session.Destroy()
}

// anchorCount returns the number of YOLO anchor cells for an input size:
// one cell per position at strides 8, 16, and 32.
func anchorCount(w, h int) int {
	return (w/8)*(h/8) + (w/16)*(h/16) + (w/32)*(h/32)
}

// decodeDetections converts the raw [1, 4+C, anchors] output into
// detections in source-image coordinates. Anchor order is preserved, so
// downstream filtering stays stable.
func decodeDetections(preds []float32, anchors, inW, inH, srcW, srcH int) []model.RawDetection {
	scaleX := float64(srcW) / float64(inW)
	scaleY := float64(srcH) / float64(inH)

	detections := make([]model.RawDetection, 0, 16)
	for i := 0; i < anchors; i++ {
		bestClass := -1
		bestScore := float32(0)
		for c := range wasteClasses {
			score := preds[(4+c)*anchors+i]
			if score > bestScore {
				bestScore = score
				bestClass = c
			}
		}
		if bestClass < 0 || bestScore < scoreFloor {
			continue
		}

		cx := float64(preds[i])
		cy := float64(preds[anchors+i])
		bw := float64(preds[2*anchors+i])
		bh := float64(preds[3*anchors+i])

		cls := wasteClasses[bestClass]
		detections = append(detections, model.RawDetection{
			Label:      cls.Label,
			Category:   cls.Category,
			Confidence: float64(bestScore),
			BBox: model.BoundingBox{
				X1: clamp((cx-bw/2)*scaleX, 0, float64(srcW)),
				Y1: clamp((cy-bh/2)*scaleY, 0, float64(srcH)),
				X2: clamp((cx+bw/2)*scaleX, 0, float64(srcW)),
				Y2: clamp((cy+bh/2)*scaleY, 0, float64(srcH)),
			},
			Materials: cls.Materials,
		})
	}
	return detections
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
