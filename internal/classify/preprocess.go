package classify

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

const (
	// contrastBoost is the percentage applied during contrast normalization.
	contrastBoost = 8
	// denoiseSigma is the Gaussian sigma used for noise reduction.
	denoiseSigma = 0.6
)

// preprocess resizes the decoded image to the profile's target resolution
// and applies the profile's optional enhancement steps, then scales the
// result into a [0,1] CHW tensor.
//
// Resizing picks an area-style filter when shrinking (avoids aliasing) and
// a linear filter when enlarging (avoids over-smoothing). Enhancement
// failures degrade gracefully: the best image obtained so far continues
// down the pipeline; the fault is logged, never fatal.
func preprocess(img image.Image, p model.ProcessingProfile, logger *zap.Logger) *model.ImageTensor {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	target := p.TargetResolution

	filter := imaging.Linear
	if srcW > target.Width || srcH > target.Height {
		filter = imaging.Box
	}
	best := imaging.Resize(img, target.Width, target.Height, filter)

	if p.Enhance {
		if out, err := enhanceStep(func() *image.NRGBA {
			return imaging.AdjustContrast(best, contrastBoost)
		}); err != nil {
			logger.Warn("contrast normalization failed, continuing with unenhanced image", zap.Error(err))
		} else {
			best = out
		}
	}

	if p.Denoise {
		if out, err := enhanceStep(func() *image.NRGBA {
			return imaging.Blur(best, denoiseSigma)
		}); err != nil {
			logger.Warn("noise reduction failed, continuing without it", zap.Error(err))
		} else {
			best = out
		}
	}

	return toTensor(best, srcW, srcH)
}

// enhanceStep runs one optional enhancement, converting panics and empty
// results into errors so the caller can fall back to its previous image.
func enhanceStep(fn func() *image.NRGBA) (out *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("enhancement panic: %v", r)
		}
	}()
	out = fn()
	if out == nil || out.Bounds().Empty() {
		return nil, fmt.Errorf("enhancement produced an empty image")
	}
	return out, nil
}

// toTensor converts an NRGBA image into a planar CHW float32 tensor with
// values scaled to [0,1].
func toTensor(img *image.NRGBA, srcW, srcH int) *model.ImageTensor {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		off := y * w
		for x := 0; x < w; x++ {
			i := off + x
			data[i] = float32(row[x*4]) / 255.0
			data[plane+i] = float32(row[x*4+1]) / 255.0
			data[2*plane+i] = float32(row[x*4+2]) / 255.0
		}
	}

	return &model.ImageTensor{
		Data:         data,
		Width:        w,
		Height:       h,
		Channels:     3,
		SourceWidth:  srcW,
		SourceHeight: srcH,
	}
}
