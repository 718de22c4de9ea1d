// Package metrics holds the Prometheus instruments for the directorate
// backend. Everything registers on the default registry and is served by
// promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Approvals = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "directorate",
	Name:      "ticket_approvals_total",
	Help:      "Ticket approval evaluations by outcome (finalized or escalated).",
}, []string{"outcome"})

var Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "directorate",
	Name:      "ledger_transactions_total",
	Help:      "Ledger transactions recorded, by type.",
}, []string{"type"})

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "directorate",
	Name:      "events_published_total",
	Help:      "Events accepted onto the broadcast queue, by event name.",
}, []string{"event"})

var EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "directorate",
	Name:      "events_dropped_total",
	Help:      "Events dropped because the broadcast queue was full.",
})

var Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "directorate",
	Name:      "websocket_subscribers",
	Help:      "Currently connected websocket subscribers.",
})
