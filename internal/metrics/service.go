package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "cityhealth"

// Search, suggestion and chat Prometheus metrics.
var (
	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search page cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_query_duration_seconds",
			Help:      "Provider store query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Providers returned per search page",
			Buckets:   []float64{0, 1, 2, 5, 10, 20},
		},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Failed searches by kind",
		},
		[]string{"kind"}, // "validation" / "query_failed"
	)

	SuggestionSourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_source_errors_total",
			Help:      "Suggestion signal sources that failed and contributed nothing",
		},
		[]string{"source"},
	)

	SuggestionCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_candidates",
			Help:      "Candidates returned per suggestion round",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 10},
		},
	)

	ChatIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_intents_total",
			Help:      "Classified chat messages by intent and language",
		},
		[]string{"intent", "language"},
	)

	ChatFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_fallback_total",
			Help:      "Model-generated replies for unknown intents",
		},
		[]string{"status"}, // "ok" / "error"
	)

	ChatModelDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_model_duration_seconds",
			Help:      "Chat model completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-device rate limiter",
		},
	)
)

var serviceMetricsRegistered bool

// RegisterServiceMetrics registers the service metrics. Must be called once from main.
func RegisterServiceMetrics() {
	if serviceMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchQueryDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(SearchErrorsTotal)
	prometheus.MustRegister(SuggestionSourceErrorsTotal)
	prometheus.MustRegister(SuggestionCandidates)
	prometheus.MustRegister(ChatIntentsTotal)
	prometheus.MustRegister(ChatFallbackTotal)
	prometheus.MustRegister(ChatModelDuration)
	prometheus.MustRegister(RateLimitedTotal)
	serviceMetricsRegistered = true
}
