package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultDocumentTextTTL bounds how long staged document text waits for a worker
const DefaultDocumentTextTTL = 24 * time.Hour

// DocumentTextStore stages extracted document text between upload and the
// summary worker. Text lives in Redis under a TTL so abandoned uploads expire.
type DocumentTextStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentTextStore creates a store from a Redis URL
func NewDocumentTextStore(redisURL string) (*DocumentTextStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewDocumentTextStoreWithClient(redis.NewClient(opts)), nil
}

// NewDocumentTextStoreWithClient creates a store around an existing client
func NewDocumentTextStoreWithClient(client *redis.Client) *DocumentTextStore {
	return &DocumentTextStore{
		client: client,
		ttl:    DefaultDocumentTextTTL,
	}
}

func documentTextKey(documentID uuid.UUID) string {
	return "document_text:" + documentID.String()
}

// Put stages a document's extracted text
func (s *DocumentTextStore) Put(ctx context.Context, documentID uuid.UUID, text string) error {
	if err := s.client.Set(ctx, documentTextKey(documentID), text, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage document text: %w", err)
	}
	return nil
}

// Get retrieves a document's staged text. Returns an error if the text
// expired or was never staged.
func (s *DocumentTextStore) Get(ctx context.Context, documentID uuid.UUID) (string, error) {
	text, err := s.client.Get(ctx, documentTextKey(documentID)).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("document text not found for %s", documentID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get document text: %w", err)
	}
	return text, nil
}

// Delete removes a document's staged text once processing completes
func (s *DocumentTextStore) Delete(ctx context.Context, documentID uuid.UUID) error {
	if err := s.client.Del(ctx, documentTextKey(documentID)).Err(); err != nil {
		return fmt.Errorf("failed to delete document text: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (s *DocumentTextStore) Close() error {
	return s.client.Close()
}
