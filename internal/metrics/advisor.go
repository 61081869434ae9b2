package metrics

import "github.com/prometheus/client_golang/prometheus"

// Orchestration Prometheus metrics.
var (
	ConversationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "conversations_total",
			Help:      "Completed advisory conversations by outcome",
		},
		// outcome: advice, fallback, unserviceable, moderated, retry_exhausted
		[]string{"outcome"},
	)

	ConversationTurns = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "travel_assistant",
			Name:      "conversation_turns",
			Help:      "Model turns consumed per conversation",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	ToolDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "tool_dispatch_total",
			Help:      "Tool invocations dispatched to the catalogue",
		},
		// status: ok, placeholder, invalid_args, unknown
		[]string{"tool", "status"},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "chat_requests_total",
			Help:      "Chat completion requests to the model provider",
		},
		[]string{"model", "status"},
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "travel_assistant",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"model"},
	)
)

var advisorMetricsRegistered bool

// RegisterAdvisorMetrics registers orchestration metrics. Must be called once from main.
func RegisterAdvisorMetrics() {
	if advisorMetricsRegistered {
		return
	}
	prometheus.MustRegister(ConversationsTotal)
	prometheus.MustRegister(ConversationTurns)
	prometheus.MustRegister(ToolDispatchTotal)
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(ChatRequestDuration)
	advisorMetricsRegistered = true
}
