package model

// ModelInfo is static metadata about an available detection model.
type ModelInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Accuracy   float64  `json:"accuracy"`
	Speed      string   `json:"speed"` // "fast", "medium", "slow"
	SizeMB     int      `json:"size_mb"`
	Categories []string `json:"supported_categories"`
}
