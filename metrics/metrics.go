// Package metrics exposes the relay's Prometheus collectors. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespaceRelay = "bridge_relay"

const (
	LabelChain   = "chain"
	LabelAction  = "action"
	LabelOutcome = "outcome"
)

type Collector struct {
	submitted      *prometheus.CounterVec
	dispatchFailed *prometheus.CounterVec
	reverted       *prometheus.CounterVec
	nextNonce      *prometheus.GaugeVec
	votes          *prometheus.CounterVec
	unavailable    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. When reg is also a Gatherer (as
// *prometheus.Registry is), Handler serves it.
func New(reg prometheus.Registerer) *Collector {
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: "tx",
		Name:      "submitted_total",
		Help:      "transactions dispatched by the sequencer",
	}, []string{LabelChain})
	dispatchFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: "tx",
		Name:      "dispatch_failed_total",
		Help:      "dispatch attempts that failed after a nonce was consumed",
	}, []string{LabelChain})
	reverted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: "tx",
		Name:      "reverted_total",
		Help:      "awaited transactions whose receipt reported failure",
	}, []string{LabelChain})
	nextNonce := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespaceRelay,
		Subsystem: "tx",
		Name:      "next_nonce",
		Help:      "the nonce the sequencer will assign next",
	}, []string{LabelChain})
	votes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: "governance",
		Name:      "votes_total",
		Help:      "governance votes relayed, by action and outcome",
	}, []string{LabelAction, LabelOutcome})
	unavailable := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: "shareddb",
		Name:      "unavailable_total",
		Help:      "get requests answered with not-yet-available",
	})
	reg.MustRegister(submitted, dispatchFailed, reverted, nextNonce, votes, unavailable)

	c := &Collector{
		submitted:      submitted,
		dispatchFailed: dispatchFailed,
		reverted:       reverted,
		nextNonce:      nextNonce,
		votes:          votes,
		unavailable:    unavailable,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

func (c *Collector) TxSubmitted(chain string, nextNonce uint64) {
	if c == nil {
		return
	}
	c.submitted.WithLabelValues(chain).Inc()
	c.nextNonce.WithLabelValues(chain).Set(float64(nextNonce))
}

func (c *Collector) TxDispatchFailed(chain string, nextNonce uint64) {
	if c == nil {
		return
	}
	c.dispatchFailed.WithLabelValues(chain).Inc()
	c.nextNonce.WithLabelValues(chain).Set(float64(nextNonce))
}

func (c *Collector) TxReverted(chain string) {
	if c == nil {
		return
	}
	c.reverted.WithLabelValues(chain).Inc()
}

func (c *Collector) Vote(action, outcome string) {
	if c == nil {
		return
	}
	c.votes.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) Unavailable() {
	if c == nil {
		return
	}
	c.unavailable.Inc()
}

// Handler serves the registry the collector was created with, falling
// back to the default gatherer.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
