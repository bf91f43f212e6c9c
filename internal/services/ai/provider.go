package ai

import (
	"context"

	"github.com/bra3n/bra3n/internal/models"
)

// Summarizer is the interface for AI summarization providers
type Summarizer interface {
	// SummarizeNote produces a short summary of a note's content
	SummarizeNote(ctx context.Context, note *models.Note) (string, error)

	// SummarizeDocument produces a short summary of extracted document text
	SummarizeDocument(ctx context.Context, name, text string) (string, error)

	// Model reports which model family the provider serves
	Model() models.AIModel
}

// ProviderFactory creates a summarizer from provider-specific config
type ProviderFactory func(config map[string]string) (Summarizer, error)

// ProviderRegistry stores available summarization providers keyed by model
type ProviderRegistry struct {
	providers map[models.AIModel]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[models.AIModel]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(model models.AIModel, factory ProviderFactory) {
	r.providers[model] = factory
}

// GetProvider builds the summarizer for a model
func (r *ProviderRegistry) GetProvider(model models.AIModel, config map[string]string) (Summarizer, error) {
	factory, ok := r.providers[model]
	if !ok {
		return nil, &ErrProviderNotFound{Model: model}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Model models.AIModel
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + string(e.Model)
}
