// Package optimizer selects a processing profile for a device descriptor
// and quality preference. Optimize is a pure function: identical inputs
// yield identical outputs, and it is safe to call concurrently.
package optimizer

import (
	"fmt"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

// Quality preferences accepted by Optimize.
const (
	QualityFast     = "fast"
	QualityBalanced = "balanced"
	QualityAccurate = "accurate"
)

const (
	// fastCeiling is the largest resolution the "fast" preference allows.
	fastCeiling = 320
	// accurateFloor is the smallest resolution the "accurate" preference allows.
	accurateFloor = 640

	// referencePixels anchors the closed-form predictions (640×640).
	referencePixels = 640 * 640
	baseLatencyMS   = 200.0
	baseMemoryMB    = 150.0
	baseAccuracy    = 0.85
	accuracyCeiling = 0.97
	// minCapability bounds the capability divisor below so very weak
	// devices cannot blow up the latency estimate.
	minCapability = 0.25
)

// tierProfile is one row of the device-tier decision table.
type tierProfile struct {
	resolution int
	precision  string
	useAccel   bool
	enhance    bool
	denoise    bool
	batchSize  int
	// capability is the tier's device-capability factor used by the
	// performance prediction. Chosen so that a stronger tier never
	// predicts higher latency despite its larger resolution.
	capability float64
}

var tierTable = map[string]tierProfile{
	model.TierLowEnd:   {resolution: 416, precision: model.PrecisionInt8, useAccel: false, enhance: false, denoise: false, batchSize: 1, capability: 0.5},
	model.TierMidRange: {resolution: 640, precision: model.PrecisionFloat32, useAccel: false, enhance: true, denoise: true, batchSize: 1, capability: 2.0},
	model.TierHighEnd:  {resolution: 832, precision: model.PrecisionFloat32, useAccel: true, enhance: true, denoise: true, batchSize: 2, capability: 3.5},
}

// ClassifyTier buckets a device descriptor into low_end, mid_range, or
// high_end. Missing fields default to mid-range-equivalent values.
func ClassifyTier(device model.DeviceInfo) string {
	d := device.Normalized()
	switch {
	case d.MemoryGB <= 2 || d.CPUCores <= 2:
		return model.TierLowEnd
	case d.MemoryGB >= 8 && d.CPUCores >= 8 && d.AcceleratorTier >= 2:
		return model.TierHighEnd
	default:
		return model.TierMidRange
	}
}

// Optimize resolves a processing profile, a performance prediction, and
// advisory recommendations for the given device and quality preference.
// Recommendations never affect the returned profile.
func Optimize(device model.DeviceInfo, quality string) (model.ProcessingProfile, model.PerformancePrediction, []string, error) {
	if quality == "" {
		quality = QualityBalanced
	}
	switch quality {
	case QualityFast, QualityBalanced, QualityAccurate:
	default:
		return model.ProcessingProfile{}, model.PerformancePrediction{}, nil,
			fmt.Errorf("optimizer: unknown quality preference %q", quality)
	}

	device = device.Normalized()
	tier := ClassifyTier(device)
	row := tierTable[tier]

	profile := model.ProcessingProfile{
		TargetResolution: model.Resolution{Width: row.resolution, Height: row.resolution},
		Precision:        row.precision,
		QualityTier:      tier,
		UseAccelerator:   row.useAccel && device.AcceleratorTier >= 1,
		Enhance:          row.enhance,
		Denoise:          row.denoise,
		BatchSize:        row.batchSize,
	}

	switch quality {
	case QualityFast:
		// Only shrinks: never grows a low-end profile.
		if profile.TargetResolution.Width > fastCeiling {
			profile.TargetResolution = model.Resolution{Width: fastCeiling, Height: fastCeiling}
		}
		profile.Enhance = false
		profile.Denoise = false
		profile.Precision = model.PrecisionInt8
	case QualityAccurate:
		if profile.TargetResolution.Width < accurateFloor {
			profile.TargetResolution = model.Resolution{Width: accurateFloor, Height: accurateFloor}
		}
		profile.Enhance = true
		profile.Denoise = true
	}

	prediction := predict(profile, row.capability)
	recs := recommendations(device, profile)
	return profile, prediction, recs, nil
}

// predict derives the closed-form performance estimate for a profile.
// Latency, memory, and accuracy are all monotonic in resolution.
func predict(p model.ProcessingProfile, capability float64) model.PerformancePrediction {
	if capability < minCapability {
		capability = minCapability
	}
	if p.UseAccelerator {
		capability *= 2
	}

	sizeFactor := float64(p.TargetResolution.Pixels()) / referencePixels

	latency := baseLatencyMS * sizeFactor / capability
	if p.Precision == model.PrecisionInt8 {
		latency *= 0.7
	}

	memory := baseMemoryMB * sizeFactor * float64(p.BatchSize)
	if p.Precision == model.PrecisionInt8 {
		memory *= 0.5
	}

	accuracy := baseAccuracy + 0.05*(sizeFactor-1)
	if p.Precision == model.PrecisionInt8 {
		accuracy -= 0.02
	}
	if p.Enhance && p.Denoise {
		accuracy += 0.04
	}
	if accuracy > accuracyCeiling {
		accuracy = accuracyCeiling
	}
	if accuracy < 0 {
		accuracy = 0
	}

	return model.PerformancePrediction{
		InferenceMillis: latency,
		MemoryMB:        memory,
		Accuracy:        accuracy,
	}
}

// recommendations produces advisory notes keyed off simple thresholds.
func recommendations(device model.DeviceInfo, p model.ProcessingProfile) []string {
	var recs []string
	if device.MemoryGB < 2 {
		recs = append(recs,
			"Consider closing other applications to free up memory",
			"The fast quality preference will improve responsiveness on this device")
	}
	if device.Platform == "mobile" && p.UseAccelerator {
		recs = append(recs, "Hardware acceleration increases battery drain on mobile devices")
	}
	if p.TargetResolution.Width < 640 {
		recs = append(recs, "Image quality reduced for better performance")
	}
	if p.TargetResolution.Width > 640 {
		recs = append(recs, "Higher resolution selected; processing will take longer")
	}
	if !p.UseAccelerator && device.AcceleratorTier == 0 {
		recs = append(recs, "Hardware acceleration would significantly improve performance")
	}
	return recs
}
