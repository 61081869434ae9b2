package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Moderator is the content moderation predicate. Failure policy (fail-open)
// lives in the advisor; this layer only reports what the provider said.
type Moderator struct {
	client  *openai.Client
	timeout time.Duration
}

// NewModerator creates an OpenAI moderation client.
func NewModerator(cfg *Config) *Moderator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Moderator{
		client:  openai.NewClientWithConfig(clientCfg),
		timeout: cfg.Timeout,
	}
}

// Flagged reports whether the moderation endpoint flagged the text.
func (m *Moderator) Flagged(ctx context.Context, text string) (bool, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, err := m.client.Moderations(ctx, openai.ModerationRequest{Input: text})
	if err != nil {
		return false, fmt.Errorf("moderation request: %w", err)
	}
	if len(resp.Results) == 0 {
		return false, fmt.Errorf("moderation returned no results")
	}
	return resp.Results[0].Flagged, nil
}
