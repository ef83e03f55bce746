package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(simulationRunsTotal, simulationTurns) }

var simulationRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "simulation_runs_total",
		Help: "Total number of simulation runs finished, labeled by outcome.",
	},
	[]string{"outcome"}, // 'goal_achieved' | 'stopped' | 'turn_limit' | 'cancelled' | 'failed'
)

var simulationTurns = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "simulation_turns",
		Help:    "Completed persona/agent exchanges per finished run.",
		Buckets: []float64{1, 2, 3, 5, 8, 10, 15, 25, 50},
	},
)

func IncSimulationRun(outcome string) {
	simulationRunsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveSimulationTurns(turns int) {
	simulationTurns.Observe(float64(turns))
}
