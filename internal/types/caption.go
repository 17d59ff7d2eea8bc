package types

import (
	"time"

	"github.com/google/uuid"
)

// CaptionSession groups the transcript of one live-captioning run.
type CaptionSession struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Language  string     `json:"language" example:"en-US"`
	Draft     string     `json:"draft,omitempty"` // Autosaved working text, last write wins.
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CaptionSegment is one recognized utterance. Interim segments may be
// superseded later; only final segments make it into exports.
type CaptionSegment struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Text      string    `json:"text"`
	Final     bool      `json:"final"`
	SpokenAt  time.Time `json:"spoken_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCaptionSessionParams is the body for starting a session.
type CreateCaptionSessionParams struct {
	Title    string `json:"title"`
	Language string `json:"language,omitempty"`
}

// AppendSegmentParams is the body for appending one recognized utterance.
type AppendSegmentParams struct {
	Text     string     `json:"text"`
	Final    bool       `json:"final"`
	SpokenAt *time.Time `json:"spoken_at,omitempty"`
}

// SaveDraftParams is the body of the debounced autosave call.
type SaveDraftParams struct {
	Text string `json:"text"`
}

// SessionSummary is the Gemini-generated lesson summary of a transcript.
type SessionSummary struct {
	SessionID uuid.UUID `json:"session_id"`
	Summary   string    `json:"summary"`
	Model     string    `json:"model"`
}
