package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the gateway.
	Registry = prometheus.NewRegistry()

	// PaymentOperations counts adapter operations by name and outcome.
	PaymentOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "payment_operations_total", Help: "Payment adapter operations by outcome."},
		[]string{"operation", "outcome"},
	)

	// PaymentOperationDuration records operation durations in seconds.
	PaymentOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "payment_operation_duration_seconds", Help: "Payment adapter operation duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on the gateway registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PaymentOperations)
		Registry.MustRegister(PaymentOperationDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
