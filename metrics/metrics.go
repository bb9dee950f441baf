package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	answerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proativo_answer_latency_ms",
		Help:    "Latency of answer requests in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"result"})

	cacheEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proativo_cache_event_total",
		Help: "Cache events (hit, similarity_hit, miss, eviction, expired)",
	}, []string{"event"})

	fallbackTriggers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proativo_fallback_trigger_total",
		Help: "Fallback activations by trigger",
	}, []string{"trigger"})

	answerTokens = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proativo_answer_tokens",
		Help:    "Token counts per answer request",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3200},
	}, []string{"kind"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(answerLatency, cacheEvents, fallbackTriggers, answerTokens)
	})
}

// ObserveAnswer records the latency of one answer request. result is one
// of: generated, cache, fallback, emergency.
func ObserveAnswer(result string, start time.Time) {
	ensureRegistered()
	answerLatency.WithLabelValues(result).Observe(float64(time.Since(start).Milliseconds()))
}

// IncCacheEvent increments a cache event counter.
func IncCacheEvent(event string) {
	ensureRegistered()
	cacheEvents.WithLabelValues(event).Inc()
}

// IncFallbackTrigger increments the counter for a fallback trigger.
func IncFallbackTrigger(trigger string) {
	ensureRegistered()
	fallbackTriggers.WithLabelValues(trigger).Inc()
}

// ObserveTokens records a token count. kind is "prompt" or "response".
func ObserveTokens(kind string, n int) {
	ensureRegistered()
	if n >= 0 {
		answerTokens.WithLabelValues(kind).Observe(float64(n))
	}
}

// Collectors exposes all collectors for registration with a custom
// registry; callers using the default registry need not call this.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{answerLatency, cacheEvents, fallbackTriggers, answerTokens}
}
