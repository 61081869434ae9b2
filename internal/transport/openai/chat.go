package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
	"github.com/kailas-cloud/travel-assistant/internal/metrics"
)

// ChatClient drives tool-calling chat completions against the model provider.
// The tool catalogue is fixed; callers only supply the conversation so far.
type ChatClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat completion client.
func NewChatClient(cfg *Config) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.ChatModel,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Chat sends one model turn with the fixed tool catalogue and returns the
// assistant message. Every error is wrapped with domain.ErrChatProviderError
// so the orchestrator can treat it as transient.
func (c *ChatClient) Chat(
	ctx context.Context, messages []openai.ChatCompletionMessage,
) (openai.ChatCompletionMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       toolCatalogue,
		ToolChoice:  "auto",
		Temperature: 0.3,
		MaxTokens:   600,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return openai.ChatCompletionMessage{},
			fmt.Errorf("chat completion: %v: %w", err, domain.ErrChatProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return openai.ChatCompletionMessage{},
			fmt.Errorf("chat completion returned no choices: %w", domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	return resp.Choices[0].Message, nil
}
