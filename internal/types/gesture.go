package types

import (
	"time"

	"github.com/google/uuid"
)

// Landmark is one tracked hand point in normalized image coordinates.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ClassifyFrameRequest carries the 21 hand landmarks of a single video frame.
type ClassifyFrameRequest struct {
	Landmarks []Landmark `json:"landmarks"`
}

// ClassifyFrameResponse is the per-frame classification result. Code is empty
// when no letter matched the frame.
type ClassifyFrameResponse struct {
	Code     string `json:"code,omitempty"`
	Detected bool   `json:"detected"`
}

// TranslateRequest carries the letter codes accumulated over a capture run.
type TranslateRequest struct {
	Codes []string `json:"codes"`
}

// TranslateResponse is the phrase a code sequence maps to.
type TranslateResponse struct {
	Phrase string   `json:"phrase"`
	Codes  []string `json:"codes"`
}

// GestureTranslation is a persisted translation history row.
type GestureTranslation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Codes     []string  `json:"codes"`
	Phrase    string    `json:"phrase"`
	CreatedAt time.Time `json:"created_at"`
}
