package classify

import "github.com/greenloop-ai/ecoscan/internal/model"

// defaultThreshold applies to categories without an explicit policy entry.
const defaultThreshold = 0.5

// ConfidencePolicy maps canonical categories to minimum acceptance
// confidence.
type ConfidencePolicy map[string]float64

// DefaultPolicy returns the per-category thresholds the service ships with.
func DefaultPolicy() ConfidencePolicy {
	return ConfidencePolicy{
		model.CategoryRecycle:   0.7,
		model.CategoryCompost:   0.8,
		model.CategoryLandfill:  0.6,
		model.CategoryHazardous: 0.9,
	}
}

// ThresholdFor returns the acceptance threshold for a category. The
// category is canonicalized first, so the "trash" alias shares the
// landfill threshold.
func (p ConfidencePolicy) ThresholdFor(category string) float64 {
	if t, ok := p[model.CanonicalCategory(category)]; ok {
		return t
	}
	return defaultThreshold
}

// Filter drops detections below the policy threshold for their category,
// or below floor when that is stricter. The filter is stable: survivors
// keep their input order. Thresholds are boundary-inclusive.
func (p ConfidencePolicy) Filter(dets []model.RawDetection, floor float64) []model.RawDetection {
	out := make([]model.RawDetection, 0, len(dets))
	for _, d := range dets {
		threshold := p.ThresholdFor(d.Category)
		if floor > threshold {
			threshold = floor
		}
		if d.Confidence >= threshold {
			out = append(out, d)
		}
	}
	return out
}
