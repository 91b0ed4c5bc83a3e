package model

// BoundingBox is an axis-aligned box in source-image pixel coordinates.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RawDetection is a single prediction as returned by a Predictor backend,
// before confidence filtering and enrichment.
type RawDetection struct {
	Label      string             // e.g. "Plastic Bottle"
	Category   string             // canonical waste category
	Confidence float64            // in [0,1]
	BBox       BoundingBox
	Materials  map[string]float64 // material→fraction, fractions sum to ≤ 1.0
}

// EnrichedDetection is the caller-facing detection: a validated RawDetection
// plus disposal guidance and environmental facts. Immutable once built.
type EnrichedDetection struct {
	ID           string            `json:"id"`
	Label        string            `json:"label"`
	Category     string            `json:"category"`
	Confidence   float64           `json:"confidence"`
	BBox         BoundingBox       `json:"bbox"`
	Instructions string            `json:"instructions"`
	Tips         []string          `json:"tips"`
	Impact       EnvironmentalFact `json:"environmental_impact"`
}
