package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	Insertions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "densify_insertions_total",
			Help: "Total number of insertions by strategy",
		},
		[]string{"strategy"},
	)

	InsertLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "densify_insert_latency_seconds",
			Help:    "Time spent finding and setting the bit of one insertion",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		},
		[]string{"strategy"},
	)

	NoopInsertions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "densify_noop_insertions_total",
		Help: "Insertions into sequences that were already all ones",
	})

	VerifyMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "densify_verify_mismatches_total",
		Help: "Insertions whose index differed from the bit-by-bit reference",
	})

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "densify_store_errors_total",
			Help: "Failed sequence store operations",
		},
		[]string{"op"},
	)

	SequenceOnes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "densify_sequence_ones",
			Help: "Number of one-bits per sequence",
		},
		[]string{"sequence"},
	)

	SequenceSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "densify_sequence_size",
			Help: "Number of bits per sequence",
		},
		[]string{"sequence"},
	)
)

// Forget drops the per-sequence series of name.
func Forget(name string) {
	SequenceOnes.DeleteLabelValues(name)
	SequenceSize.DeleteLabelValues(name)
}

func StartMetricsServer(listenAddr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server error: %v", err)
		}
	}()
	return server
}
