package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters for the turn-processing engine.
type EngineMetrics struct {
	turnsTotal        *prometheus.CounterVec
	bookingsConfirmed prometheus.Counter
	llmFallbacks      prometheus.Counter
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "engine",
			Name:      "turns_total",
			Help:      "Turns processed, by conversation mode and outcome",
		}, []string{"mode", "outcome"}),
		bookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "engine",
			Name:      "bookings_confirmed_total",
			Help:      "Appointments appended to the store",
		}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "llm",
			Name:      "fallback_total",
			Help:      "Completions retried on the fallback provider",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsConfirmed, m.llmFallbacks)
	return m
}

func (m *EngineMetrics) ObserveTurn(mode, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *EngineMetrics) ObserveBookingConfirmed() {
	if m == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

func (m *EngineMetrics) ObserveLLMFallback() {
	if m == nil {
		return
	}
	m.llmFallbacks.Inc()
}
