package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	c := New(reg)

	c.TxSubmitted("home", 5)
	c.TxSubmitted("home", 6)
	c.TxDispatchFailed("side", 3)
	c.TxReverted("home")
	c.Vote("startVoting", "voted")
	c.Unavailable()

	require.Equal(2.0, testutil.ToFloat64(c.submitted.WithLabelValues("home")))
	require.Equal(6.0, testutil.ToFloat64(c.nextNonce.WithLabelValues("home")))
	require.Equal(3.0, testutil.ToFloat64(c.nextNonce.WithLabelValues("side")))
	require.Equal(1.0, testutil.ToFloat64(c.dispatchFailed.WithLabelValues("side")))
	require.Equal(1.0, testutil.ToFloat64(c.reverted.WithLabelValues("home")))
	require.Equal(1.0, testutil.ToFloat64(c.votes.WithLabelValues("startVoting", "voted")))
	require.Equal(1.0, testutil.ToFloat64(c.unavailable))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(200, rec.Code)
	require.Contains(rec.Body.String(), "bridge_relay_tx_submitted_total")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.TxSubmitted("home", 1)
		c.TxDispatchFailed("home", 1)
		c.TxReverted("home")
		c.Vote("a", "b")
		c.Unavailable()
		require.NotNil(t, c.Handler())
	})
}
