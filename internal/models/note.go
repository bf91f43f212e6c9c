package models

import (
	"time"

	"github.com/google/uuid"
)

// AIModel identifies which model family generates summaries for a note
type AIModel string

const (
	AIModelClaude AIModel = "claude"
	AIModelOpenAI AIModel = "openai"
)

// Note represents a note inside a brain
type Note struct {
	ID        uuid.UUID `json:"id"`
	BrainID   uuid.UUID `json:"brain_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	AIModel   AIModel   `json:"ai_model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the note carries tag (case-sensitive exact match).
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag preserving insertion order. Returns false if the tag
// is already present; Tags never contains duplicates.
func (n *Note) AddTag(tag string) bool {
	if tag == "" || n.HasTag(tag) {
		return false
	}
	n.Tags = append(n.Tags, tag)
	return true
}

// RemoveTag removes the exact tag. No-op (false) if absent.
func (n *Note) RemoveTag(tag string) bool {
	for i, t := range n.Tags {
		if t == tag {
			n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
			return true
		}
	}
	return false
}
