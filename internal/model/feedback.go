package model

import "time"

// Feedback is a user correction for a previous detection, forwarded to an
// external training store.
type Feedback struct {
	ID               string    `json:"id"`
	DetectionID      string    `json:"detection_id"`
	Correction       string    `json:"user_correction"`
	ConfidenceRating float64   `json:"confidence_rating"` // in [0,1]
	WasHelpful       bool      `json:"was_helpful"`
	ReceivedAt       time.Time `json:"received_at"`
}
