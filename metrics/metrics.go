// Package metrics provides Prometheus metrics for the swap engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SwapsSettled counts settled swaps by direction.
	SwapsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_settled_total",
		Help: "Settled swaps by side",
	}, []string{"side"})

	// SwapsRejected counts rejected swaps by direction and lifecycle stage.
	SwapsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_rejected_total",
		Help: "Rejected swaps by side and stage",
	}, []string{"side", "stage"})

	// AmountIn observes realized input amounts in native units.
	AmountIn = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swap_amount_in",
		Help:    "Realized input amount per settled swap",
		Buckets: prometheus.ExponentialBuckets(1, 10, 12),
	}, []string{"side"})

	// AmountOut observes realized output amounts in native units.
	AmountOut = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swap_amount_out",
		Help:    "Realized output amount per settled swap",
		Buckets: prometheus.ExponentialBuckets(1, 10, 12),
	}, []string{"side"})
)

// Recorder adapts the package metrics to the swap engine's Recorder hook.
type Recorder struct{}

func (Recorder) SwapSettled(side string, amountIn, amountOut uint64) {
	SwapsSettled.WithLabelValues(side).Inc()
	AmountIn.WithLabelValues(side).Observe(float64(amountIn))
	AmountOut.WithLabelValues(side).Observe(float64(amountOut))
}

func (Recorder) SwapRejected(side string, stage string) {
	SwapsRejected.WithLabelValues(side, stage).Inc()
}

// StartMetricsServer serves /metrics on addr in the background.
func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()
}
