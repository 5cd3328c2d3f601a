package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the sessions counter.
const (
	outcomeCompleted = "completed"
	outcomeCommand   = "command"
	outcomeDeclined  = "declined"
	outcomeElicited  = "elicited"
	outcomeFailed    = "failed"
)

//nolint:gochecknoglobals // prometheus collectors are registered once
var sessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "copysmith_sessions_total",
		Help: "Session invocations by terminal outcome.",
	},
	[]string{"outcome"},
)
