package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_browser_transfers_total",
			Help: "Transfers that reached a final or paused status",
		},
		[]string{"kind", "status"},
	)

	transferBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_browser_transfer_bytes_total",
			Help: "Bytes moved by transfers",
		},
		[]string{"kind"},
	)

	activeTransfers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_browser_active_transfers",
			Help: "Transfers currently admitted by the scheduler",
		},
		[]string{"kind"},
	)

	chunkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storage_browser_chunk_duration_seconds",
			Help:    "Time to PUT one upload chunk",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	proxyCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_browser_proxy_calls_total",
			Help: "Calls executed by the object proxy relay",
		},
		[]string{"method", "status"},
	)

	metadataRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_browser_metadata_requests_total",
			Help: "Requests served by the metadata API",
		},
		[]string{"route", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordTransfer(kind, status string) {
	transfersTotal.WithLabelValues(kind, status).Inc()
}

func RecordTransferBytes(kind string, n int64) {
	if n > 0 {
		transferBytesTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func SetActiveTransfers(kind string, n int) {
	activeTransfers.WithLabelValues(kind).Set(float64(n))
}

func RecordChunk(d time.Duration) {
	chunkDuration.Observe(d.Seconds())
}

func RecordProxyCall(method string, status int) {
	proxyCallsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func RecordMetadataRequest(route string, status int) {
	metadataRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
