package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
)

// BrainRepository handles brain database operations
type BrainRepository struct {
	db *DB
}

// NewBrainRepository creates a new brain repository
func NewBrainRepository(db *DB) *BrainRepository {
	return &BrainRepository{db: db}
}

// Create creates a new brain
func (r *BrainRepository) Create(ctx context.Context, brain *models.Brain) error {
	query := `
		INSERT INTO brains (id, user_id, name, description, is_shared, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		brain.ID,
		brain.UserID,
		brain.Name,
		brain.Description,
		brain.IsShared,
		now,
		now,
	).Scan(&brain.CreatedAt, &brain.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create brain: %w", err)
	}

	return nil
}

// GetByID retrieves a brain by ID
func (r *BrainRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brain, error) {
	brain := &models.Brain{}
	query := `
		SELECT id, user_id, name, description, is_shared, created_at, updated_at
		FROM brains
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&brain.ID,
		&brain.UserID,
		&brain.Name,
		&brain.Description,
		&brain.IsShared,
		&brain.CreatedAt,
		&brain.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("brain not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brain: %w", err)
	}

	return brain, nil
}

// GetByUserID retrieves all brains owned by a user
func (r *BrainRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Brain, error) {
	query := `
		SELECT id, user_id, name, description, is_shared, created_at, updated_at
		FROM brains
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brains: %w", err)
	}
	defer rows.Close()

	var brains []*models.Brain
	for rows.Next() {
		brain := &models.Brain{}
		err := rows.Scan(
			&brain.ID,
			&brain.UserID,
			&brain.Name,
			&brain.Description,
			&brain.IsShared,
			&brain.CreatedAt,
			&brain.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brain: %w", err)
		}
		brains = append(brains, brain)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brains: %w", err)
	}

	return brains, nil
}

// CountByUserID returns how many brains a user owns
func (r *BrainRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM brains WHERE user_id = $1`

	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count brains: %w", err)
	}

	return count, nil
}

// Update updates an existing brain
func (r *BrainRepository) Update(ctx context.Context, brain *models.Brain) error {
	query := `
		UPDATE brains
		SET name = $2, description = $3, is_shared = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		brain.ID,
		brain.Name,
		brain.Description,
		brain.IsShared,
		now,
	).Scan(&brain.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("brain not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update brain: %w", err)
	}

	return nil
}

// Delete deletes a brain and its contents by ID
func (r *BrainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM brains WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete brain: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("brain not found")
	}

	return nil
}
