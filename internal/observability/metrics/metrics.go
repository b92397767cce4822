package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for conversation processing.
type ChatMetrics struct {
	turnsTotal   *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Processed conversation turns by outcome",
		}, []string{"result", "status"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "helpdesk",
			Subsystem: "chat",
			Name:      "model_latency_seconds",
			Help:      "Latency of generative model completions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.modelLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(result, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(result, status).Inc()
}

func (m *ChatMetrics) ObserveModelLatency(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(mode).Observe(seconds)
}
