package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blogeditor"

var (
	LifecycleOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "lifecycle_operations_total", Help: "Lifecycle operations by operation and result."},
		[]string{"operation", "result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed write requests by route group."},
		[]string{"group"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected write requests by route group."},
		[]string{"group"},
	)
)

// Result label values for LifecycleOperations.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(LifecycleOperations)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
