package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

var knownFormats = map[string]bool{
	"pdf": true, "docx": true, "xlsx": true, "html": true, "htm": true, "txt": true,
}

// PipelineMetrics records extraction and report generation outcomes. It
// implements the usecase observers and the resilience state observer.
type PipelineMetrics struct {
	service string

	extractTotal       *prometheus.CounterVec
	extractExperiments *prometheus.HistogramVec
	generateTotal      *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	extractTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "total",
			Help:      "Total extraction requests by format and status.",
		},
		[]string{"service", "format", "status"},
	)
	extractExperiments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "experiments",
			Help:      "Experiments found per successful extraction.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service", "format"},
	)
	generateTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generate",
			Name:      "total",
			Help:      "Total report generations by status.",
		},
		[]string{"service", "status"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"service", "operation"},
	)

	registerer.MustRegister(extractTotal, extractExperiments, generateTotal, breakerState)

	return &PipelineMetrics{
		service:            service,
		extractTotal:       extractTotal,
		extractExperiments: extractExperiments,
		generateTotal:      generateTotal,
		breakerState:       breakerState,
	}
}

func (m *PipelineMetrics) ObserveExtraction(format string, experiments int, err error) {
	if !knownFormats[format] {
		format = "other"
	}
	m.extractTotal.WithLabelValues(m.service, format, status(err)).Inc()
	if err == nil {
		m.extractExperiments.WithLabelValues(m.service, format).Observe(float64(experiments))
	}
}

func (m *PipelineMetrics) ObserveGeneration(err error) {
	m.generateTotal.WithLabelValues(m.service, status(err)).Inc()
}

func (m *PipelineMetrics) ObserveBreakerState(operation string, _, to gobreaker.State) {
	m.breakerState.WithLabelValues(m.service, operation).Set(float64(to))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
