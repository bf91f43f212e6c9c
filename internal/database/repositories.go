package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
)

// NoteRepositoryInterface defines the interface for note repository operations
// This interface enables better testability by allowing mock implementations
type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	GetByBrainID(ctx context.Context, brainID uuid.UUID, tag *string) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

// BrainRepositoryInterface defines the interface for brain repository operations
type BrainRepositoryInterface interface {
	Create(ctx context.Context, brain *models.Brain) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Brain, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Brain, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, brain *models.Brain) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentRepositoryInterface defines the interface for document repository operations
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByBrainID(ctx context.Context, brainID uuid.UUID) ([]*models.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SummaryRepositoryInterface defines the interface for summary repository operations
type SummaryRepositoryInterface interface {
	Save(ctx context.Context, s *models.NoteSummary) error
	GetNoteSummary(ctx context.Context, noteID, brainID uuid.UUID) (*models.NoteSummary, error)
	Delete(ctx context.Context, noteID uuid.UUID) error
}

// ConnectionRepositoryInterface defines the interface for connection repository operations
type ConnectionRepositoryInterface interface {
	Upsert(ctx context.Context, conn *models.Connection) error
	GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.ConnectionProvider) (*models.Connection, error)
	DeleteByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.ConnectionProvider) error
}

// UsageRepositoryInterface defines the interface for usage repository operations
type UsageRepositoryInterface interface {
	RecordAPICall(ctx context.Context, userID uuid.UUID) error
	GetUsage(ctx context.Context, userID uuid.UUID) (models.Usage, error)
}

// Ensure concrete types implement the interfaces
var (
	_ NoteRepositoryInterface       = (*NoteRepository)(nil)
	_ BrainRepositoryInterface      = (*BrainRepository)(nil)
	_ DocumentRepositoryInterface   = (*DocumentRepository)(nil)
	_ SummaryRepositoryInterface    = (*SummaryRepository)(nil)
	_ ConnectionRepositoryInterface = (*ConnectionRepository)(nil)
	_ UsageRepositoryInterface      = (*UsageRepository)(nil)
)
