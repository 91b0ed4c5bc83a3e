package model

// Precision modes for model execution.
const (
	PrecisionInt8    = "int8"
	PrecisionFloat16 = "float16"
	PrecisionFloat32 = "float32"
)

// Device tiers used to select a base profile.
const (
	TierLowEnd   = "low_end"
	TierMidRange = "mid_range"
	TierHighEnd  = "high_end"
)

// Resolution is a target processing size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Pixels returns the pixel count of the resolution.
func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// ProcessingProfile is the resolved set of processing parameters for one
// request. Immutable once constructed; derived from defaults or from the
// device optimizer.
type ProcessingProfile struct {
	TargetResolution Resolution `json:"target_resolution"`
	Precision        string     `json:"precision"`
	QualityTier      string     `json:"quality_tier"`
	UseAccelerator   bool       `json:"use_accelerator"`
	Enhance          bool       `json:"enhance"`
	Denoise          bool       `json:"denoise"`
	BatchSize        int        `json:"batch_size"`
}

// PerformancePrediction is a closed-form estimate of how a profile will
// behave on a device. All fields are monotonic in resolution.
type PerformancePrediction struct {
	InferenceMillis float64 `json:"expected_latency_ms"`
	MemoryMB        float64 `json:"expected_memory_mb"`
	Accuracy        float64 `json:"expected_accuracy"`
}
