package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxSummaryInputChars caps how much note or document text is sent for summarization
	MaxSummaryInputChars = 16000

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

const summarySystemPrompt = "You are a helpful assistant that writes concise summaries of personal knowledge base content. Respond with the summary text only, no preamble."

// OpenAIProvider implements the Summarizer interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Model reports the model family served by this provider
func (p *OpenAIProvider) Model() models.AIModel {
	return models.AIModelOpenAI
}

// SummarizeNote produces a short summary of a note's content
func (p *OpenAIProvider) SummarizeNote(ctx context.Context, note *models.Note) (string, error) {
	prompt := buildNoteSummaryPrompt(note)
	return p.complete(ctx, "summarize_note", prompt)
}

// SummarizeDocument produces a short summary of extracted document text
func (p *OpenAIProvider) SummarizeDocument(ctx context.Context, name, text string) (string, error) {
	prompt := buildDocumentSummaryPrompt(name, text)
	return p.complete(ctx, "summarize_document", prompt)
}

func (p *OpenAIProvider) complete(ctx context.Context, operation, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(summarySystemPrompt),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_id", ExtractUserID(ctx)),
			zap.String("note_id", ExtractNoteID(ctx)),
			zap.String("request_id", ExtractRequestID(ctx)),
		)
	}

	resp, err := p.client.Chat.Completions.New(ctx, req)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
			)
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s", ErrNoChoicesInResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty summary in response")
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
		)
	}

	return content, nil
}

func buildNoteSummaryPrompt(note *models.Note) string {
	var b strings.Builder
	b.WriteString("Summarize the following note in 2-3 sentences.\n\n")
	b.WriteString("Title: ")
	b.WriteString(note.Title)
	b.WriteString("\n")
	if len(note.Tags) > 0 {
		b.WriteString("Tags: ")
		b.WriteString(strings.Join(note.Tags, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(TruncateString(note.Content, MaxSummaryInputChars))
	return b.String()
}

func buildDocumentSummaryPrompt(name, text string) string {
	var b strings.Builder
	b.WriteString("Summarize the following document in 3-5 sentences.\n\n")
	b.WriteString("Document: ")
	b.WriteString(name)
	b.WriteString("\n\n")
	b.WriteString(TruncateString(text, MaxSummaryInputChars))
	return b.String()
}
