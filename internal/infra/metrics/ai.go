package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		completionCallsTotal,
		completionLatencyMs,
		agentCallsTotal,
		agentLatencyMs,
	)
}

var (
	completionCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_calls_total",
			Help: "Completion service calls per model and success.",
		},
		[]string{"model", "success"},
	)

	completionLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		},
		[]string{"model"},
	)

	agentCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_host_calls_total",
			Help: "Remote agent host calls per success.",
		},
		[]string{"success"},
	)

	agentLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_host_latency_ms",
			Help:    "Agent host call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
		},
	)
)

func ObserveCompletionCall(model string, latencyMs int, success bool) {
	completionCallsTotal.WithLabelValues(norm(model), strconv.FormatBool(success)).Inc()
	completionLatencyMs.WithLabelValues(norm(model)).Observe(float64(latencyMs))
}

func ObserveAgentCall(latencyMs int, success bool) {
	agentCallsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
	agentLatencyMs.Observe(float64(latencyMs))
}
