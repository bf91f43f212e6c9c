package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the summarization status of a document
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document represents an uploaded document (PDF or plain text) inside a brain
type Document struct {
	ID          uuid.UUID      `json:"id"`
	BrainID     uuid.UUID      `json:"brain_id"`
	UserID      uuid.UUID      `json:"user_id"`
	Name        string         `json:"name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
