package tools

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// breakerState is the lifecycle of a per-category circuit breaker.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// failureThreshold trips the breaker after this many consecutive failures
// in the category.
const failureThreshold = 5

// successStreakToDecay shrinks the adaptive timeout ceiling back toward the
// category's static ceiling after this many consecutive successes.
const successStreakToDecay = 10

// categoryBreaker tracks resiliency state for one TimeoutCategory: circuit
// breaker open/closed/half-open, consecutive success/failure streaks, and
// the adaptive timeout ceiling that widens on repeated timeouts and decays
// back down on a long enough success streak.
type categoryBreaker struct {
	mu sync.Mutex

	state           breakerState
	consecutiveFail int
	successStreak   int
	openedAt        time.Time
	cooldown        time.Duration

	adaptiveCeiling time.Duration

	// limiter gates the pre-call backoff sleep a half-open breaker imposes:
	// one probe permitted per cooldown tick rather than a hard refusal.
	limiter *rate.Limiter
}

func newCategoryBreaker() *categoryBreaker {
	return &categoryBreaker{
		cooldown: 2 * time.Second,
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Breakers is a registry-wide set of per-category circuit breakers plus the
// Prometheus counters/gauges the spec's "outcome classification" step
// feeds. Metrics are collected in-process; no exporter is stood up here
// (out of scope), matching the observation-only use of client_golang.
type Breakers struct {
	mu       sync.Mutex
	byCat    map[TimeoutCategory]*categoryBreaker
	registry *prometheus.Registry

	invocations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	tripped     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewBreakers creates a fresh breaker set with its own Prometheus registry
// (kept unexported from any global default registry to avoid collisions
// across multiple engines in one process, e.g. in tests).
func NewBreakers() *Breakers {
	reg := prometheus.NewRegistry()
	b := &Breakers{
		byCat:    make(map[TimeoutCategory]*categoryBreaker),
		registry: reg,
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtgo_tool_invocations_total",
			Help: "Tool invocations by name and category.",
		}, []string{"tool", "category"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtgo_tool_failures_total",
			Help: "Tool failures by name and classified error code.",
		}, []string{"tool", "code"}),
		tripped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtgo_tool_circuit_tripped_total",
			Help: "Circuit breaker trips by category.",
		}, []string{"category"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vtgo_tool_latency_seconds",
			Help:    "Tool execution latency by category.",
			Buckets: prometheus.DefBuckets,
		}, []string{"category"}),
	}
	reg.MustRegister(b.invocations, b.failures, b.tripped, b.latency)
	return b
}

// Registry exposes the Prometheus registry for an optional local /metrics
// handler; wiring an HTTP exporter is left to the caller (out of scope
// here).
func (b *Breakers) Registry() *prometheus.Registry { return b.registry }

func (b *Breakers) forCategory(cat TimeoutCategory) *categoryBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	cb, ok := b.byCat[cat]
	if !ok {
		cb = newCategoryBreaker()
		b.byCat[cat] = cb
	}
	return cb
}

// Allow reports whether a call in this category may proceed, and returns
// the pre-call backoff a half-open breaker imposes before the probe (zero
// otherwise).
func (b *Breakers) Allow(cat TimeoutCategory) (ok bool, backoff time.Duration) {
	cb := b.forCategory(cat)
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		return true, 0
	case breakerOpen:
		if time.Since(cb.openedAt) >= cb.cooldown {
			cb.state = breakerHalfOpen
			return true, 0
		}
		return false, 0
	case breakerHalfOpen:
		// Only one probe call at a time; others impose a short backoff.
		r := cb.limiter.Reserve()
		if !r.OK() {
			return true, 0
		}
		d := r.Delay()
		r.Cancel()
		if d > 0 {
			return true, d
		}
		return true, 0
	}
	return true, 0
}

// AdaptiveCeiling returns the widened timeout ceiling for a category, or
// zero if no widening is in effect (caller then falls back to the static
// per-category ceiling from timeout.go).
func (b *Breakers) AdaptiveCeiling(cat TimeoutCategory) time.Duration {
	cb := b.forCategory(cat)
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.adaptiveCeiling
}

// RecordSuccess updates success streaks, decays the adaptive ceiling after a
// long enough streak, and closes a half-open breaker.
func (b *Breakers) RecordSuccess(toolName string, cat TimeoutCategory, latency time.Duration) {
	b.invocations.WithLabelValues(toolName, string(cat)).Inc()
	b.latency.WithLabelValues(string(cat)).Observe(latency.Seconds())

	cb := b.forCategory(cat)
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFail = 0
	cb.successStreak++
	cb.state = breakerClosed

	if cb.successStreak >= successStreakToDecay && cb.adaptiveCeiling > 0 {
		cb.adaptiveCeiling = cb.adaptiveCeiling / 2
		if cb.adaptiveCeiling < time.Second {
			cb.adaptiveCeiling = 0
		}
		cb.successStreak = 0
	}
}

// RecordFailure classifies the failure code, widens the adaptive ceiling on
// timeouts, and trips the breaker once the failure threshold is crossed.
func (b *Breakers) RecordFailure(toolName, code string, cat TimeoutCategory, staticCeiling time.Duration) (tripped bool) {
	b.invocations.WithLabelValues(toolName, string(cat)).Inc()
	b.failures.WithLabelValues(toolName, code).Inc()

	cb := b.forCategory(cat)
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successStreak = 0
	cb.consecutiveFail++

	if code == "timeout" {
		if cb.adaptiveCeiling == 0 {
			cb.adaptiveCeiling = staticCeiling
		}
		cb.adaptiveCeiling = cb.adaptiveCeiling + cb.adaptiveCeiling/2
		const maxCeiling = 5 * time.Minute
		if cb.adaptiveCeiling > maxCeiling {
			cb.adaptiveCeiling = maxCeiling
		}
	}

	if cb.consecutiveFail >= failureThreshold && cb.state != breakerOpen {
		cb.state = breakerOpen
		cb.openedAt = time.Now()
		b.tripped.WithLabelValues(string(cat)).Inc()
		return true
	}
	return false
}
