package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rollcall_checkins_total",
	Help: "Check-in attempts by outcome.",
}, []string{"outcome"})

// Outcome labels for checkinsTotal.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeWeekend       = "weekend"
	OutcomeOutsideWindow = "outside_window"
	OutcomeUnknownCode   = "unknown_code"
	OutcomeAlreadyMarked = "already_marked"
	OutcomeStorageFault  = "storage_fault"
)

// ObserveCheckin counts one check-in attempt.
func ObserveCheckin(outcome string) {
	checkinsTotal.WithLabelValues(outcome).Inc()
}
