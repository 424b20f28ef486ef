package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	storageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total storage operations by backend, operation and outcome",
		},
		[]string{"backend", "operation", "outcome"},
	)

	storageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	storageUploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_upload_bytes_total",
			Help: "Total bytes accepted by successful uploads",
		},
		[]string{"backend"},
	)

	batchFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sboms_batch_files_total",
			Help: "Files processed by batch store requests by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveStorageOperation records one storage call.
func ObserveStorageOperation(backend, operation, outcome string, elapsed time.Duration) {
	storageOperationsTotal.WithLabelValues(backend, operation, outcome).Inc()
	storageOperationDuration.WithLabelValues(backend, operation).Observe(elapsed.Seconds())
}

// AddUploadBytes adds n to the uploaded byte counter.
func AddUploadBytes(backend string, n int64) {
	if n <= 0 {
		return
	}
	storageUploadBytesTotal.WithLabelValues(backend).Add(float64(n))
}

// AddBatchFiles counts files handled by a batch store.
func AddBatchFiles(outcome string, n int) {
	if n <= 0 {
		return
	}
	batchFilesTotal.WithLabelValues(outcome).Add(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
