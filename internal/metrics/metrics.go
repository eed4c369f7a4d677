package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "account_auth_events_total",
		Help: "Account and authentication operations by event and outcome.",
	},
	[]string{"event", "outcome"},
)

// RecordAuthEvent counts one finished operation. Outcome is "success" when
// err is nil and "failure" otherwise.
func RecordAuthEvent(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}
