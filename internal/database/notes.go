package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bra3n/bra3n/internal/models"
)

// NoteRepository handles note database operations
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create creates a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, brain_id, user_id, title, content, tags, ai_model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.BrainID,
		note.UserID,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.AIModel,
		now,
		now,
	).Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note := &models.Note{}
	query := `
		SELECT id, brain_id, user_id, title, content, tags, ai_model, created_at, updated_at
		FROM notes
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.BrainID,
		&note.UserID,
		&note.Title,
		&note.Content,
		pq.Array(&note.Tags),
		&note.AIModel,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// GetByBrainID retrieves all notes in a brain, optionally filtered by tag
func (r *NoteRepository) GetByBrainID(ctx context.Context, brainID uuid.UUID, tag *string) ([]*models.Note, error) {
	query := `
		SELECT id, brain_id, user_id, title, content, tags, ai_model, created_at, updated_at
		FROM notes
		WHERE brain_id = $1
	`
	args := []any{brainID}

	if tag != nil {
		query += " AND $2 = ANY(tags)"
		args = append(args, *tag)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		note := &models.Note{}
		err := rows.Scan(
			&note.ID,
			&note.BrainID,
			&note.UserID,
			&note.Title,
			&note.Content,
			pq.Array(&note.Tags),
			&note.AIModel,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		result = append(result, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return result, nil
}

// Update updates an existing note
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $2, content = $3, tags = $4, ai_model = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.AIModel,
		now,
	).Scan(&note.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("note not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// DeleteNote deletes a note by ID
func (r *NoteRepository) DeleteNote(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("note not found")
	}

	return nil
}
