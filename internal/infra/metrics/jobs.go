package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(generationJobsTotal, generationSeconds) }

var generationJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_jobs_total",
		Help: "Total number of generation jobs finished, labeled by entity and status.",
	},
	[]string{"entity", "status"}, // entity: 'persona' | 'goal'; status: 'completed' | 'failed'
)

var generationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "generation_duration_seconds",
		Help:    "Wall time of generation jobs from start to terminal write.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	},
	[]string{"entity"},
)

func IncGenerationJob(entity, status string) {
	generationJobsTotal.WithLabelValues(norm(entity), norm(status)).Inc()
}

func ObserveGenerationSeconds(entity string, seconds float64) {
	generationSeconds.WithLabelValues(norm(entity)).Observe(seconds)
}
