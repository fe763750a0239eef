package crew

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for agent invocations and workflow
// execution. All metrics are namespaced with "crewgraph".
//
// Exposed series:
//   - invocations_total (counter): agent invocations by agent and status
//     (ok, replayed, error).
//   - review_verdicts_total (counter): review outcomes delivered to a
//     reviewed member, by agent and verdict (pass, fail).
//   - tokens_total (counter): model token usage by agent and direction
//     (input, output).
//   - step_latency_ms (histogram): node turn duration by team and node.
//
// A nil *Metrics is valid and records nothing, so instrumentation call
// sites never need to guard against an unconfigured collector.
type Metrics struct {
	invocations *prometheus.CounterVec
	verdicts    *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	stepLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the collector set with registry.
// Pass prometheus.DefaultRegisterer for the global registry, or a private
// prometheus.NewRegistry() for isolation in tests.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewgraph",
			Name:      "invocations_total",
			Help:      "Agent invocations by outcome",
		}, []string{"agent", "status"}),
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewgraph",
			Name:      "review_verdicts_total",
			Help:      "Review verdicts delivered to reviewed members",
		}, []string{"agent", "verdict"}),
		tokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewgraph",
			Name:      "tokens_total",
			Help:      "Model token usage by direction",
		}, []string{"agent", "direction"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crewgraph",
			Name:      "step_latency_ms",
			Help:      "Duration of one workflow node turn in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"team", "node"}),
	}
}

// RecordInvocation counts one agent invocation outcome.
func (m *Metrics) RecordInvocation(agent, status string) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(agent, status).Inc()
}

// RecordVerdict counts one review verdict delivered to a reviewed member.
func (m *Metrics) RecordVerdict(agent string, pass bool) {
	if m == nil {
		return
	}
	verdict := "fail"
	if pass {
		verdict = "pass"
	}
	m.verdicts.WithLabelValues(agent, verdict).Inc()
}

// RecordTokens counts model token usage for one invocation.
func (m *Metrics) RecordTokens(agent string, input, output int) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(agent, "input").Add(float64(input))
	m.tokens.WithLabelValues(agent, "output").Add(float64(output))
}

// RecordStep observes the duration of one workflow node turn.
func (m *Metrics) RecordStep(team, node string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepLatency.WithLabelValues(team, node).Observe(float64(d.Milliseconds()))
}
