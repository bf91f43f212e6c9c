package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionProvider identifies an external integration
type ConnectionProvider string

const (
	ConnectionProviderNotion      ConnectionProvider = "notion"
	ConnectionProviderGoogleDrive ConnectionProvider = "google_drive"
)

// ValidConnectionProvider reports whether p is a known provider.
func ValidConnectionProvider(p string) bool {
	switch ConnectionProvider(p) {
	case ConnectionProviderNotion, ConnectionProviderGoogleDrive:
		return true
	}
	return false
}

// Connection represents a user's link to an external workspace (Notion, Google Drive)
type Connection struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	Provider    ConnectionProvider `json:"provider"`
	AccessToken string             `json:"-"`
	WorkspaceID *string            `json:"workspace_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
