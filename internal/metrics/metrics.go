package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "care_scheduling",
			Name:      "slots_created_total",
			Help:      "Count of slots created by owner kind.",
		},
		[]string{"owner_kind"},
	)

	slotsDeactivated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "care_scheduling",
			Name:      "slots_deactivated_total",
			Help:      "Count of slots soft-deleted by owner kind.",
		},
		[]string{"owner_kind"},
	)

	quotaRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "care_scheduling",
			Name:      "quota_rejected_total",
			Help:      "Count of care slot writes rejected by the weekly quota.",
		},
	)

	matchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "care_scheduling",
			Name:      "match_results",
			Help:      "Number of candidates returned by the eligibility matcher.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"side"},
	)

	visitsBooked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "care_scheduling",
			Name:      "visits_booked_total",
			Help:      "Count of booking attempts by result.",
		},
		[]string{"result"},
	)

	visitTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "care_scheduling",
			Name:      "visit_transitions_total",
			Help:      "Count of visit status transitions by target status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotsCreated, slotsDeactivated, quotaRejected, matchResults, visitsBooked, visitTransitions)
	})
}

func AddSlotsCreated(ownerKind string, n int) {
	slotsCreated.WithLabelValues(ownerKind).Add(float64(n))
}

func AddSlotsDeactivated(ownerKind string, n int64) {
	slotsDeactivated.WithLabelValues(ownerKind).Add(float64(n))
}

func IncQuotaRejected() {
	quotaRejected.Inc()
}

func ObserveMatchResults(side string, n int) {
	matchResults.WithLabelValues(side).Observe(float64(n))
}

func IncVisitBooked(result string) {
	visitsBooked.WithLabelValues(result).Inc()
}

func IncVisitTransition(status string) {
	visitTransitions.WithLabelValues(status).Inc()
}
