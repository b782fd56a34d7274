package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderClaude ProviderType = "claude"
)

// ContentRequest is a provider-agnostic single-turn generation request
type ContentRequest struct {
	Prompt            string
	SystemInstruction string
	Model             string
	Temperature       float32
	MaxTokens         int
}

// ContentResponse is a provider-agnostic generation response
type ContentResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// Provider generates text for a request
type Provider interface {
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)
	GetProviderType() ProviderType
	Close() error
}

// ProviderFactory routes requests to Claude or Gemini, creating clients lazily.
// Each provider has its own rate limiter.
type ProviderFactory struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	retry        *RetryConfig
	logger       arbor.ILogger

	mu            sync.Mutex
	geminiClient  *genai.Client
	claudeClient  *anthropic.Client
	geminiLimiter *rate.Limiter
	claudeLimiter *rate.Limiter
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, logger arbor.ILogger) *ProviderFactory {
	retry := NewDefaultRetryConfig()
	if config.LLM.MaxRetries > 0 {
		retry.MaxRetries = config.LLM.MaxRetries
	}

	return &ProviderFactory{
		geminiConfig:  &config.Gemini,
		claudeConfig:  &config.Claude,
		llmConfig:     &config.LLM,
		retry:         retry,
		logger:        logger,
		geminiLimiter: newLimiter(config.Gemini.RateLimit, 4*time.Second),
		claudeLimiter: newLimiter(config.Claude.RateLimit, time.Second),
	}
}

// newLimiter allows one request per interval; an unparseable interval uses the fallback
func newLimiter(interval string, fallback time.Duration) *rate.Limiter {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		d = fallback
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

func parseTimeout(timeout string) time.Duration {
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// DetectProvider determines the provider from a model string such as
// "claude-haiku-...", "claude/...", "gemini-..." or "google/...".
// Empty or unrecognized models use the default provider.
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"), strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(model, "gemini/"), strings.HasPrefix(model, "google/"), strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	}

	return ProviderType(f.llmConfig.DefaultProvider)
}

// NormalizeModel removes a provider prefix from the model name
func NormalizeModel(model string) string {
	for _, prefix := range []string{"claude/", "anthropic/", "gemini/", "google/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// GetProviderType returns the default provider
func (f *ProviderFactory) GetProviderType() ProviderType {
	return ProviderType(f.llmConfig.DefaultProvider)
}

func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	apiKey, err := common.ResolveAPIKey("gemini_api_key", f.geminiConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Gemini API key: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

func (f *ProviderFactory) getClaudeClient() (*anthropic.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claudeClient != nil {
		return f.claudeClient, nil
	}

	apiKey, err := common.ResolveAPIKey("anthropic_api_key", f.claudeConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Anthropic API key: %w", err)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	f.claudeClient = &client
	return f.claudeClient, nil
}

// GenerateContent generates content with the provider implied by the request model
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	if strings.TrimSpace(request.Prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	provider := f.DetectProvider(request.Model)
	model := NormalizeModel(request.Model)

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Msg("Generating content with provider")

	switch provider {
	case ProviderClaude:
		return f.generateWithClaude(ctx, request, model)
	default:
		return f.generateWithGemini(ctx, request, model)
	}
}

func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getClaudeClient()
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = f.claudeConfig.Model
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.claudeConfig.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if request.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemInstruction},
		}
	}

	timeout := parseTimeout(f.claudeConfig.Timeout)
	resp, err := withRetry(ctx, f.logger, f.retry, "Claude", func() (*anthropic.Message, error) {
		if err := f.claudeLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Messages.New(callCtx, params)
	})
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed after %d retries: %w", f.retry.MaxRetries, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	return &ContentResponse{
		Text:     text.String(),
		Provider: ProviderClaude,
		Model:    model,
	}, nil
}

func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = f.geminiConfig.Model
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.geminiConfig.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if request.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemInstruction, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(request.Prompt, genai.RoleUser)}

	timeout := parseTimeout(f.geminiConfig.Timeout)
	resp, err := withRetry(ctx, f.logger, f.retry, "Gemini", func() (*genai.GenerateContentResponse, error) {
		if err := f.geminiLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Models.GenerateContent(callCtx, model, contents, config)
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed after %d retries: %w", f.retry.MaxRetries, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	responseText := resp.Text()
	if responseText == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	return &ContentResponse{
		Text:     responseText,
		Provider: ProviderGemini,
		Model:    model,
	}, nil
}

// Close drops the cached clients
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geminiClient = nil
	f.claudeClient = nil
	return nil
}
