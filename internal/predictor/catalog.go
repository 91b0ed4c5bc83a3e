package predictor

import "github.com/greenloop-ai/ecoscan/internal/model"

// DefaultVersion is the model loaded by warm-up and by requests that ask
// for "latest".
const DefaultVersion = "yolov8n-waste"

// Catalog returns the static metadata for the models this service can
// serve. The model files themselves are external artifacts.
func Catalog() []model.ModelInfo {
	return []model.ModelInfo{
		{
			ID:         "yolov8n-waste",
			Name:       "YOLOv8 Nano Waste Detector",
			Accuracy:   0.87,
			Speed:      "fast",
			SizeMB:     12,
			Categories: []string{model.CategoryRecycle, model.CategoryCompost, model.CategoryLandfill},
		},
		{
			ID:         "efficientdet-waste",
			Name:       "EfficientDet Waste Classifier",
			Accuracy:   0.92,
			Speed:      "medium",
			SizeMB:     45,
			Categories: model.KnownCategories(),
		},
	}
}

// ResolveVersion maps request aliases to a concrete catalog ID. Unknown
// versions pass through; the load path reports them.
func ResolveVersion(v string) string {
	if v == "" || v == "latest" {
		return DefaultVersion
	}
	return v
}

// KnownVersion reports whether v names a catalog model.
func KnownVersion(v string) bool {
	for _, m := range Catalog() {
		if m.ID == v {
			return true
		}
	}
	return false
}
