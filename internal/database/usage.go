package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
)

// UsageRepository tracks per-user consumption counted against plan limits
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// RecordAPICall increments the user's API call counter for the current period
func (r *UsageRepository) RecordAPICall(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO api_usage (user_id, period_start, api_calls, updated_at)
		VALUES ($1, date_trunc('month', NOW()), 1, $2)
		ON CONFLICT (user_id, period_start) DO UPDATE
		SET api_calls = api_usage.api_calls + 1,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to record api call: %w", err)
	}

	return nil
}

// GetUsage returns the user's consumption for the current period
func (r *UsageRepository) GetUsage(ctx context.Context, userID uuid.UUID) (models.Usage, error) {
	var usage models.Usage

	query := `
		SELECT COALESCE(u.api_calls, 0),
		       (SELECT COUNT(*) FROM brains b WHERE b.user_id = $1)
		FROM (SELECT 1) dummy
		LEFT JOIN api_usage u
		  ON u.user_id = $1 AND u.period_start = date_trunc('month', NOW())
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&usage.APICalls, &usage.Brains)
	if err != nil {
		return models.Usage{}, fmt.Errorf("failed to get usage: %w", err)
	}

	return usage, nil
}
