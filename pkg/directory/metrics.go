package directory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adconsole_directory_operations_total",
			Help: "Directory protocol operations by type and result.",
		},
		[]string{"op", "result"},
	)

	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adconsole_directory_operation_seconds",
			Help:    "Latency of directory protocol operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// RegisterMetrics attaches the directory metrics to reg, typically
// debug.Registry().
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{opsTotal, opDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func observeOp(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	opsTotal.WithLabelValues(op, result).Inc()
	opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
