package ecoscan

import (
	"time"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

// Box is an axis-aligned bounding box in source-image pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Impact holds environmental facts for an item type. Zero values mean the
// fact is not known.
type Impact struct {
	CO2Footprint         float64  `json:"co2_footprint,omitempty"`
	RecyclingRate        float64  `json:"recycling_rate,omitempty"`
	DecompositionTime    string   `json:"decomposition_time,omitempty"`
	CompostTime          string   `json:"compost_time,omitempty"`
	RecycledUses         []string `json:"recycled_uses,omitempty"`
	EnergySavedRecycling float64  `json:"energy_saved_recycling,omitempty"`
}

// Empty reports whether no field of the impact is set.
func (i Impact) Empty() bool {
	return i.CO2Footprint == 0 &&
		i.RecyclingRate == 0 &&
		i.DecompositionTime == "" &&
		i.CompostTime == "" &&
		len(i.RecycledUses) == 0 &&
		i.EnergySavedRecycling == 0
}

// Detection is one classified item with disposal guidance.
type Detection struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Category     string   `json:"category"`
	Confidence   float64  `json:"confidence"`
	BBox         Box      `json:"bbox"`
	Instructions string   `json:"instructions"`
	Tips         []string `json:"tips"`
	Impact       Impact   `json:"environmental_impact"`
}

// Device describes the requesting device's capabilities. Zero values mean
// "unknown" and are normalized to mid-range defaults.
type Device struct {
	MemoryGB        float64 `json:"memory"`
	CPUCores        int     `json:"cores"`
	AcceleratorTier int     `json:"accelerator_tier"`
	Platform        string  `json:"platform"`
	NetworkSpeed    string  `json:"network_speed"`
}

// Resolution is a processing size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Profile is the resolved set of processing parameters for a device.
type Profile struct {
	TargetResolution Resolution `json:"target_resolution"`
	Precision        string     `json:"precision"`
	QualityTier      string     `json:"quality_tier"`
	UseAccelerator   bool       `json:"use_accelerator"`
	Enhance          bool       `json:"enhance"`
	Denoise          bool       `json:"denoise"`
	BatchSize        int        `json:"batch_size"`
}

// Prediction estimates how a profile will behave on a device.
type Prediction struct {
	ExpectedLatencyMS float64 `json:"expected_latency_ms"`
	ExpectedMemoryMB  float64 `json:"expected_memory_mb"`
	ExpectedAccuracy  float64 `json:"expected_accuracy"`
}

// ModelInfo is static metadata about an available detection model.
type ModelInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Accuracy   float64  `json:"accuracy"`
	Speed      string   `json:"speed"`
	SizeMB     int      `json:"size_mb"`
	Categories []string `json:"supported_categories"`
}

// Health is a point-in-time view of service state.
type Health struct {
	Status              string  `json:"status"`
	Ready               bool    `json:"model_loaded"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
	TotalRequests       int64   `json:"total_requests"`
	AverageProcessingMS float64 `json:"average_processing_ms"`
	CachedModels        int     `json:"cached_models"`
}

// DetectOptions are per-request knobs for Detect.
type DetectOptions struct {
	// ModelVersion selects a catalog model; "" and "latest" use the default.
	ModelVersion string
	// MinConfidence is an extra floor on top of per-category thresholds.
	MinConfidence float64
	// Device, when set, derives the processing profile from the device's
	// capabilities instead of the service default.
	Device *Device
	// Quality is the preference used with Device: "fast", "balanced",
	// "accurate". Ignored when Device is nil.
	Quality string
}

// DetectResult is the outcome of one detection request.
type DetectResult struct {
	Detections     []Detection   `json:"detections"`
	ProcessingTime time.Duration `json:"-"`
	Model          ModelInfo     `json:"model_info"`
	Suggestions    []string      `json:"suggestions,omitempty"`
}

// OptimizeResult is the outcome of a device optimization request.
type OptimizeResult struct {
	DeviceTier      string     `json:"device_tier"`
	Profile         Profile    `json:"profile"`
	Prediction      Prediction `json:"prediction"`
	Recommendations []string   `json:"recommendations"`
}

// Feedback is an accepted user correction as delivered to a feedback sink:
// a FeedbackRequest plus the assigned id and receipt time.
type Feedback struct {
	ID               string    `json:"id"`
	DetectionID      string    `json:"detection_id"`
	Correction       string    `json:"user_correction"`
	ConfidenceRating float64   `json:"confidence_rating"`
	WasHelpful       bool      `json:"was_helpful"`
	ReceivedAt       time.Time `json:"received_at"`
}

// FeedbackRequest is a user correction for a previous detection.
type FeedbackRequest struct {
	DetectionID      string  `json:"detection_id"`
	Correction       string  `json:"user_correction"`
	ConfidenceRating float64 `json:"confidence_rating"`
	WasHelpful       bool    `json:"was_helpful"`
}

func detectionFromInternal(d model.EnrichedDetection) Detection {
	return Detection{
		ID:           d.ID,
		Label:        d.Label,
		Category:     d.Category,
		Confidence:   d.Confidence,
		BBox:         Box{X1: d.BBox.X1, Y1: d.BBox.Y1, X2: d.BBox.X2, Y2: d.BBox.Y2},
		Instructions: d.Instructions,
		Tips:         d.Tips,
		Impact:       impactFromInternal(d.Impact),
	}
}

func impactFromInternal(f model.EnvironmentalFact) Impact {
	return Impact{
		CO2Footprint:         f.CO2Footprint,
		RecyclingRate:        f.RecyclingRate,
		DecompositionTime:    f.DecompositionTime,
		CompostTime:          f.CompostTime,
		RecycledUses:         f.RecycledUses,
		EnergySavedRecycling: f.EnergySavedRecycling,
	}
}

func deviceToInternal(d Device) model.DeviceInfo {
	return model.DeviceInfo{
		MemoryGB:        d.MemoryGB,
		CPUCores:        d.CPUCores,
		AcceleratorTier: d.AcceleratorTier,
		Platform:        d.Platform,
		NetworkSpeed:    d.NetworkSpeed,
	}
}

func profileFromInternal(p model.ProcessingProfile) Profile {
	return Profile{
		TargetResolution: Resolution{Width: p.TargetResolution.Width, Height: p.TargetResolution.Height},
		Precision:        p.Precision,
		QualityTier:      p.QualityTier,
		UseAccelerator:   p.UseAccelerator,
		Enhance:          p.Enhance,
		Denoise:          p.Denoise,
		BatchSize:        p.BatchSize,
	}
}

func predictionFromInternal(p model.PerformancePrediction) Prediction {
	return Prediction{
		ExpectedLatencyMS: p.InferenceMillis,
		ExpectedMemoryMB:  p.MemoryMB,
		ExpectedAccuracy:  p.Accuracy,
	}
}

func modelInfoFromInternal(m model.ModelInfo) ModelInfo {
	return ModelInfo{
		ID:         m.ID,
		Name:       m.Name,
		Accuracy:   m.Accuracy,
		Speed:      m.Speed,
		SizeMB:     m.SizeMB,
		Categories: m.Categories,
	}
}
