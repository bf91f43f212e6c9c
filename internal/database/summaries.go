package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
)

// SummaryRepository handles saved note summary database operations
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Save upserts a note's summary
func (r *SummaryRepository) Save(ctx context.Context, s *models.NoteSummary) error {
	query := `
		INSERT INTO note_summaries (note_id, brain_id, user_id, summary, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (note_id) DO UPDATE
		SET summary = EXCLUDED.summary, model = EXCLUDED.model, updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		s.NoteID,
		s.BrainID,
		s.UserID,
		s.Summary,
		s.Model,
		now,
		now,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}

// GetNoteSummary retrieves the saved summary for a note within a brain.
// Returns (nil, nil) when no summary has been saved.
func (r *SummaryRepository) GetNoteSummary(ctx context.Context, noteID, brainID uuid.UUID) (*models.NoteSummary, error) {
	s := &models.NoteSummary{}
	query := `
		SELECT note_id, brain_id, user_id, summary, model, created_at, updated_at
		FROM note_summaries
		WHERE note_id = $1 AND brain_id = $2
	`

	err := r.db.QueryRowContext(ctx, query, noteID, brainID).Scan(
		&s.NoteID,
		&s.BrainID,
		&s.UserID,
		&s.Summary,
		&s.Model,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return s, nil
}

// Delete removes a note's saved summary
func (r *SummaryRepository) Delete(ctx context.Context, noteID uuid.UUID) error {
	query := `DELETE FROM note_summaries WHERE note_id = $1`

	if _, err := r.db.ExecContext(ctx, query, noteID); err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}

	return nil
}
