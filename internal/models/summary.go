package models

import (
	"time"

	"github.com/google/uuid"
)

// NoteSummary is a persisted AI-generated summary, keyed by note
type NoteSummary struct {
	NoteID    uuid.UUID `json:"note_id"`
	BrainID   uuid.UUID `json:"brain_id"`
	UserID    uuid.UUID `json:"user_id"`
	Summary   string    `json:"summary"`
	Model     AIModel   `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
