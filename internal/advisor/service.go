// Package advisor runs the tool-calling conversation that turns a free-text
// travel query into validated TravelAdvice. One Advise call is: moderation
// gate, destination resolution, then a bounded model loop where search tools
// ground the answer in catalogue rows and return_advice terminates it.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kailas-cloud/travel-assistant/internal/catalogue"
	"github.com/kailas-cloud/travel-assistant/internal/domain"
	"github.com/kailas-cloud/travel-assistant/internal/logger"
	"github.com/kailas-cloud/travel-assistant/internal/metrics"
)

const (
	minK = 1
	maxK = 5

	defaultFromAirport = "LHR"
	defaultFlightDate  = "2025-07-01"

	attemptBackoff = 1 * time.Second
)

// unserviceableKeywords short-circuit the conversation: destinations the
// network will never serve, answered without spending a model call.
var unserviceableKeywords = []string{"mars", "moon", "jupiter"}

// Service orchestrates advisory conversations.
type Service struct {
	chat      ChatClient
	moderator Moderator
	catalogue Catalogue
	resolver  CityResolver
	picker    CityPicker
	cfg       Config
	logger    *zap.Logger
}

// New wires an advisor service. Config zero values fall back to defaults.
func New(
	chat ChatClient,
	moderator Moderator,
	catalogue Catalogue,
	resolver CityResolver,
	picker CityPicker,
	cfg Config,
	logger *zap.Logger,
) *Service {
	cfg.ApplyDefaults()
	return &Service{
		chat:      chat,
		moderator: moderator,
		catalogue: catalogue,
		resolver:  resolver,
		picker:    picker,
		cfg:       cfg,
		logger:    logger,
	}
}

// Advise answers a travel query. It returns ErrContentFlagged for queries the
// moderation gate rejects; every other path yields usable advice, degrading
// through fallback constructors rather than failing.
func (s *Service) Advise(ctx context.Context, query string) (domain.TravelAdvice, error) {
	// The request-scoped logger carries request_id; fall back to the service
	// logger outside an HTTP request.
	log := logger.FromContextOr(ctx, s.logger).
		With(zap.String("conversation_id", uuid.NewString()))

	flagged, err := s.moderator.Flagged(ctx, query)
	if err != nil {
		// Fail open: an unavailable moderation endpoint must not take
		// the whole service down.
		log.Warn("moderation check failed, continuing unmoderated", zap.Error(err))
	} else if flagged {
		log.Info("query rejected by moderation")
		metrics.ConversationsTotal.WithLabelValues("moderated").Inc()
		return domain.TravelAdvice{}, domain.ErrContentFlagged
	}

	city, theme := s.resolver.Parse(query)
	if city == "" {
		city = s.picker.PickCity(theme)
	}
	log = log.With(zap.String("city", city))

	if mentionsUnserviceable(theme) {
		log.Info("query targets an out-of-network destination")
		metrics.ConversationsTotal.WithLabelValues("unserviceable").Inc()
		return domain.UnserviceableAdvice(), nil
	}

	var advice domain.TravelAdvice
	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), retry.NewConstant(attemptBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		a, convErr := s.runConversation(ctx, log, query, city)
		if convErr != nil {
			log.Warn("conversation attempt failed", zap.Error(convErr))
			return retry.RetryableError(convErr)
		}
		advice = a
		return nil
	})
	if err != nil {
		log.Error("all conversation attempts failed", zap.Error(err))
		metrics.ConversationsTotal.WithLabelValues("retry_exhausted").Inc()
		return domain.RetryAdvice(), nil
	}

	return advice, nil
}

// runConversation drives one bounded tool-calling loop. The only error it can
// return is a failed model call; every in-conversation problem is either fed
// back to the model or resolved with a fallback result.
func (s *Service) runConversation(
	ctx context.Context, log *zap.Logger, query, city string,
) (domain.TravelAdvice, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(city)},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	for turn := 1; turn <= s.cfg.MaxTurns; turn++ {
		msg, err := s.chat.Chat(ctx, messages)
		if err != nil {
			return domain.TravelAdvice{}, err
		}
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			log.Info("model answered without a structured result", zap.Int("turn", turn))
			metrics.ConversationsTotal.WithLabelValues("fallback").Inc()
			metrics.ConversationTurns.Observe(float64(turn))
			return domain.FallbackAdvice(), nil
		}

		for _, call := range msg.ToolCalls {
			tool := domain.ParseTool(call.Function.Name)
			switch tool {
			case domain.ToolReturnAdvice:
				advice, verr := s.finishAdvice([]byte(call.Function.Arguments), city)
				if verr != nil {
					log.Info("return_advice rejected, asking the model to repair",
						zap.Int("turn", turn), zap.Error(verr))
					metrics.ToolDispatchTotal.WithLabelValues(tool.String(), "invalid_args").Inc()
					messages = append(messages, toolResult(call.ID,
						fmt.Sprintf("Validation error: %v. Call return_advice again with all required fields.", verr)))
					continue
				}
				metrics.ToolDispatchTotal.WithLabelValues(tool.String(), "ok").Inc()
				metrics.ConversationsTotal.WithLabelValues("advice").Inc()
				metrics.ConversationTurns.Observe(float64(turn))
				return advice, nil

			case domain.ToolSearchHotels, domain.ToolSearchFlights, domain.ToolSearchExperiences:
				rows := s.dispatchSearch(ctx, log, tool, []byte(call.Function.Arguments), city)
				payload, merr := json.Marshal(rows)
				if merr != nil {
					payload = []byte("[]")
				}
				messages = append(messages, toolResult(call.ID, string(payload)))

			default:
				log.Warn("model called an unknown tool",
					zap.String("tool", call.Function.Name), zap.Int("turn", turn))
				metrics.ToolDispatchTotal.WithLabelValues("unknown", "unknown").Inc()
				metrics.ConversationsTotal.WithLabelValues("fallback").Inc()
				metrics.ConversationTurns.Observe(float64(turn))
				return domain.FallbackAdvice(), nil
			}
		}
	}

	log.Info("turn budget exhausted without a structured result",
		zap.Int("max_turns", s.cfg.MaxTurns))
	metrics.ConversationsTotal.WithLabelValues("fallback").Inc()
	metrics.ConversationTurns.Observe(float64(s.cfg.MaxTurns))
	return domain.FallbackAdvice(), nil
}

// searchArgs is the model-supplied argument shape of the search tools.
type searchArgs struct {
	Query       string `json:"query"`
	City        string `json:"city"`
	K           int    `json:"k"`
	FromAirport string `json:"from_airport"`
	Date        string `json:"date"`
}

// dispatchSearch runs one search tool call against the catalogue. The resolved
// city always overrides whatever city the model passed, rows from other cities
// are dropped, and an empty result is replaced by a placeholder row so the
// model is never left without grounding data.
func (s *Service) dispatchSearch(
	ctx context.Context, log *zap.Logger, tool domain.Tool, rawArgs []byte, city string,
) []domain.Row {
	kind, _ := tool.Kind()

	var args searchArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		log.Warn("unparseable search arguments, substituting placeholder",
			zap.String("tool", tool.String()), zap.Error(err))
		metrics.ToolDispatchTotal.WithLabelValues(tool.String(), "invalid_args").Inc()
		return []domain.Row{catalogue.Placeholder(kind, city)}
	}

	args.City = city
	args.K = clampK(args.K)
	if tool == domain.ToolSearchFlights {
		if args.FromAirport == "" {
			args.FromAirport = defaultFromAirport
		}
		if args.Date == "" {
			args.Date = defaultFlightDate
		}
	}

	var rows []domain.Row
	switch tool {
	case domain.ToolSearchHotels:
		rows = s.catalogue.SearchHotels(ctx, args.Query, args.K, args.City)
	case domain.ToolSearchFlights:
		rows = s.catalogue.SearchFlights(ctx, args.Query, args.K, args.City)
	case domain.ToolSearchExperiences:
		rows = s.catalogue.SearchExperiences(ctx, args.Query, args.K, args.City)
	}

	rows = keepCityRows(rows, city)
	if len(rows) == 0 {
		metrics.ToolDispatchTotal.WithLabelValues(tool.String(), "placeholder").Inc()
		rows = []domain.Row{placeholderForArgs(kind, city, args)}
	} else {
		metrics.ToolDispatchTotal.WithLabelValues(tool.String(), "ok").Inc()
		if tool == domain.ToolSearchFlights {
			fillFlightDefaults(rows, args)
		}
	}
	return rows
}

// finishAdvice decodes and validates a return_advice call. The destination
// defaults to the resolved city when the model omits it, and an unknown
// destination is repaired to a catalogue city unless the check is bypassed.
func (s *Service) finishAdvice(rawArgs []byte, city string) (domain.TravelAdvice, error) {
	var peek struct {
		Destination string `json:"destination"`
	}
	if err := json.Unmarshal(rawArgs, &peek); err == nil && peek.Destination == "" && city != "" {
		patched, perr := withDestination(rawArgs, city)
		if perr == nil {
			rawArgs = patched
		}
	}

	advice, err := domain.ParseAdvice(rawArgs)
	if err != nil {
		return domain.TravelAdvice{}, err
	}

	if !s.cfg.BypassCityCheck {
		if canonical, ok := s.resolver.Canonical(advice.Destination); ok {
			advice.Destination = canonical
		} else if city != "" {
			advice.Destination = city
		} else {
			advice.Destination = domain.GenericDestination
		}
	}
	return advice, nil
}

// withDestination re-encodes the raw arguments with the destination set.
func withDestination(raw []byte, city string) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	m["destination"] = city
	return json.Marshal(m)
}

// keepCityRows drops rows outside the resolved city. A global-fallback search
// may legitimately return such rows; the orchestrator enforces the scope.
func keepCityRows(rows []domain.Row, city string) []domain.Row {
	if city == "" {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if r.EqualCity(city) {
			out = append(out, r)
		}
	}
	return out
}

// fillFlightDefaults annotates flight rows missing origin or date with the
// defaulted call arguments, so the model sees a complete itinerary row.
// Catalogue rows are shared across requests, so annotated rows are cloned
// rather than written through.
func fillFlightDefaults(rows []domain.Row, args searchArgs) {
	for i, r := range rows {
		if r.String("from_airport") != "" && r.String("date") != "" {
			continue
		}
		c := r.Clone()
		if c.String("from_airport") == "" {
			c["from_airport"] = args.FromAirport
		}
		if c.String("date") == "" {
			c["date"] = args.Date
		}
		rows[i] = c
	}
}

func placeholderForArgs(kind domain.Kind, city string, args searchArgs) domain.Row {
	r := catalogue.Placeholder(kind, city)
	if kind == domain.KindFlights {
		r["from_airport"] = args.FromAirport
		r["date"] = args.Date
	}
	return r
}

func clampK(k int) int {
	switch {
	case k <= 0:
		return 3
	case k < minK:
		return minK
	case k > maxK:
		return maxK
	default:
		return k
	}
}

func mentionsUnserviceable(theme string) bool {
	lower := strings.ToLower(theme)
	for _, kw := range unserviceableKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func toolResult(callID, content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    content,
		ToolCallID: callID,
	}
}

func systemPrompt(city string) string {
	prompt := "You are Virgin Atlantic's AI Travel Assistant. " +
		"Use the search tools to ground every recommendation in catalogue data, " +
		"then finish by calling return_advice with the final recommendation. " +
		"Never invent hotels, flights or experiences."
	if city != "" {
		prompt += " Destination context: " + city + "."
	}
	return prompt
}
