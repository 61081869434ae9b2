package advisor

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

// ChatClient sends one model turn and returns the assistant message.
// The transport owns the tool catalogue; the orchestrator owns the conversation.
type ChatClient interface {
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionMessage, error)
}

// Moderator is the content moderation predicate consulted before any model call.
type Moderator interface {
	Flagged(ctx context.Context, text string) (bool, error)
}

// Catalogue is the grounding data source behind the search tools.
// Implementations never fail: lookup problems degrade to placeholder rows.
type Catalogue interface {
	SearchHotels(ctx context.Context, query string, k int, city string) []domain.Row
	SearchFlights(ctx context.Context, query string, k int, city string) []domain.Row
	SearchExperiences(ctx context.Context, query string, k int, city string) []domain.Row
}

// CityResolver establishes the destination context for a query.
type CityResolver interface {
	Parse(query string) (city, theme string)
	Canonical(city string) (string, bool)
}

// CityPicker chooses a destination when the query names none.
type CityPicker interface {
	PickCity(theme string) string
}

// Config bounds the orchestration loop.
type Config struct {
	// MaxTurns caps model turns per conversation attempt.
	MaxTurns int
	// MaxAttempts caps whole-conversation attempts against transient failures.
	MaxAttempts int
	// BypassCityCheck disables the known-city repair of the returned
	// destination. Test environments only.
	BypassCityCheck bool
}

// ApplyDefaults fills unset bounds.
func (c *Config) ApplyDefaults() {
	if c.MaxTurns <= 0 {
		c.MaxTurns = 5
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
}
