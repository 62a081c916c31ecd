package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EndpointResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "endpoint_responses_total",
		Help: "The total number of endpoint responses",
	}, []string{"endpoint", "status_code"})

	EndpointDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "endpoint_request_duration_seconds",
		Help:    "Wall-clock time spent serving each endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Matrix addition metrics
	MatrixAddDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matrix_add_duration_ms",
		Help:    "Duration of the matrix addition compute step in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 18), // ~1us to ~131ms
	})

	MatrixAddElements = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matrix_add_elements",
		Help: "Element count of the last matrix addition",
	})

	MatrixAddBackend = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrix_add_backend_total",
		Help: "Total number of matrix additions by backend",
	}, []string{"backend"})

	// GPU metrics, labelled by device index
	GPUMemoryUsedMB = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gpu_memory_used_mb",
		Help: "GPU memory currently in use in MB",
	}, []string{"gpu"})

	GPUMemoryTotalMB = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gpu_memory_total_mb",
		Help: "Total GPU memory in MB",
	}, []string{"gpu"})
)
