package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("login", "ok", 120*time.Millisecond)
	m.ObserveRequest("login", "ok", 80*time.Millisecond)
	m.ObserveRequest("login", "http_error", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("login", "http_error")))
}

func TestObserveRequest_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("login", "ok", time.Second)
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.CacheHits.WithLabelValues("memos").Add(3)
	m.CacheEvictions.Inc()
	m.ObserveRequest("memos", "ok", time.Second)

	samples, err := m.Snapshot()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, s := range samples {
		got[s.Name] = s.Value
	}
	assert.Equal(t, 3.0, got["lawdesk_cache_hits_total{query=memos}"])
	assert.Equal(t, 1.0, got["lawdesk_cache_evictions_total"])
	assert.Equal(t, 1.0, got["lawdesk_api_request_duration_seconds{op=memos}"])
}
