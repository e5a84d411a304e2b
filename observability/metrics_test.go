package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.IncrementOutcome("created")
	metrics.IncrementOutcome("eligible")
	metrics.IncrementOutcome("eligible")
	metrics.IncrementError("store")
	metrics.ObserveStore("swap", time.Now())

	req.Equal(1.0, testutil.ToFloat64(metrics.Outcomes.WithLabelValues("created")))
	req.Equal(2.0, testutil.ToFloat64(metrics.Outcomes.WithLabelValues("eligible")))
	req.Equal(1.0, testutil.ToFloat64(metrics.Errors.WithLabelValues("store")))
	req.Equal(1, testutil.CollectAndCount(metrics.StoreLatency))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var metrics *Metrics
	require.NotPanics(t, func() {
		metrics.IncrementOutcome("created")
		metrics.IncrementError("validation")
		metrics.ObserveStore("find", time.Now())
		metrics.SetProcessStats(ProcessStats{RSSBytes: 1})
	})
}

func TestReadProcessStats(t *testing.T) {
	req := require.New(t)
	p, err := SelfProcess()
	req.NoError(err)

	stats, err := ReadProcessStats(p)
	req.NoError(err)
	req.Positive(stats.RSSBytes)
	req.Equal(p.Pid, stats.PID)
}

func TestStatusName(t *testing.T) {
	req := require.New(t)
	req.Equal("RUNNING", StatusName("R"))
	req.Equal("SLEEP", StatusName("S"))
	req.Equal("UNKNOWN", StatusName("?"))
}
