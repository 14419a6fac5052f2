package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	datasets        *prometheus.CounterVec
	keywords        prometheus.Histogram
	projections     prometheus.Counter
	metadataOptions prometheus.Counter
	requests        *prometheus.HistogramVec
}

// NewMetrics registers the analyzer collectors and the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		datasets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asolens_datasets_parsed_total",
			Help: "Uploaded datasets by schema and outcome.",
		}, []string{"schema", "outcome"}),
		keywords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asolens_dataset_keywords",
			Help:    "Keywords per successfully parsed dataset.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 6),
		}),
		projections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asolens_projections_total",
			Help: "Keyword projections computed.",
		}),
		metadataOptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asolens_metadata_options_total",
			Help: "Metadata options generated.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asolens_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.Registry.MustRegister(
		m.datasets,
		m.keywords,
		m.projections,
		m.metadataOptions,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request latency by matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.requests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) datasetParsed(schema string, keywords int) {
	m.datasets.WithLabelValues(schema, "ok").Inc()
	m.keywords.Observe(float64(keywords))
}

func (m *Metrics) datasetFailed(schema string) {
	m.datasets.WithLabelValues(schema, "error").Inc()
}
