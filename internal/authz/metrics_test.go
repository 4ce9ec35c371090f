package authz

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m := NewMetrics("")
	m.Init()

	assert.NotNil(t, m.Registry())
	assert.Equal(t, 3, testutil.CollectAndCount(m.requestsTotal, "gateway_authz_requests_total"))
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.RecordRequest(decisionAllow, 10*time.Millisecond)
	m.RecordRequest(decisionAllow, 20*time.Millisecond)
	m.RecordRequest(decisionDeny, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(decisionAllow)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(decisionDeny)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_MustRegister(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	registry := prometheus.NewRegistry()

	require.NotPanics(t, func() { m.MustRegister(registry) })
	require.NotPanics(t, func() { m.MustRegister(registry) })

	m.RecordRequest(decisionError, time.Millisecond)
	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)
}
