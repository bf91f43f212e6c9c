package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
)

// ConnectionRepository handles external integration connection records
type ConnectionRepository struct {
	db *DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Upsert stores the user's connection to a provider, replacing any existing one
func (r *ConnectionRepository) Upsert(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (id, user_id, provider, access_token, workspace_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    workspace_id = EXCLUDED.workspace_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		conn.ID,
		conn.UserID,
		conn.Provider,
		conn.AccessToken,
		conn.WorkspaceID,
		now,
		now,
	).Scan(&conn.CreatedAt, &conn.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}

	return nil
}

// GetByUserAndProvider retrieves the user's connection to a provider.
// Returns (nil, nil) when the user has no connection.
func (r *ConnectionRepository) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.ConnectionProvider) (*models.Connection, error) {
	conn := &models.Connection{}
	query := `
		SELECT id, user_id, provider, access_token, workspace_id, created_at, updated_at
		FROM connections
		WHERE user_id = $1 AND provider = $2
	`

	err := r.db.QueryRowContext(ctx, query, userID, provider).Scan(
		&conn.ID,
		&conn.UserID,
		&conn.Provider,
		&conn.AccessToken,
		&conn.WorkspaceID,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return conn, nil
}

// DeleteByUserAndProvider removes the user's connection to a provider.
// Deleting a connection that does not exist is not an error.
func (r *ConnectionRepository) DeleteByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.ConnectionProvider) error {
	query := `DELETE FROM connections WHERE user_id = $1 AND provider = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, provider); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	return nil
}
