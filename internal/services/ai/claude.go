package ai

import (
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
)

const (
	// DefaultClaudeModel is the default Claude model to use
	DefaultClaudeModel = "claude-3-5-haiku-latest"
	// DefaultClaudeBaseURL is Anthropic's OpenAI-compatible endpoint
	DefaultClaudeBaseURL = "https://api.anthropic.com/v1"
)

// ClaudeProvider implements the Summarizer interface against Anthropic's
// OpenAI-compatible API surface, reusing the OpenAI client plumbing.
type ClaudeProvider struct {
	*OpenAIProvider
}

// NewClaudeProvider creates a new Claude provider
func NewClaudeProvider(apiKey string, model string) *ClaudeProvider {
	return NewClaudeProviderWithLogger(apiKey, DefaultClaudeBaseURL, model, nil, false)
}

// NewClaudeProviderWithLogger creates a new Claude provider with logger support
func NewClaudeProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *ClaudeProvider {
	if model == "" {
		model = DefaultClaudeModel
	}
	if baseURL == "" {
		baseURL = DefaultClaudeBaseURL
	}
	return &ClaudeProvider{
		OpenAIProvider: NewOpenAIProviderWithLogger(apiKey, baseURL, model, logger, debugMode),
	}
}

// Model reports the model family served by this provider
func (p *ClaudeProvider) Model() models.AIModel {
	return models.AIModelClaude
}
