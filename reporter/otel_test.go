package reporter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/logger"
)

func collectNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOTelReporter(t *testing.T) {
	cfg := config.Default()
	reg, _ := newPopulatedRegistry(t, cfg)

	reader := sdkmetric.NewManualReader()
	sched := &scheduler.Manual{}
	r := &OTel{
		Config:     cfg,
		Logger:     &logger.MockLogger{},
		Registry:   reg,
		Scheduler:  sched,
		testReader: reader,
	}
	require.NoError(t, r.Start())
	defer r.Stop()
	require.Equal(t, 1, sched.TaskCount())

	sched.Fire()
	got := collectNames(t, reader)

	require.Contains(t, got, "requests.count")
	sum, ok := got["requests.count"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.EqualValues(t, 42, sum.DataPoints[0].Value)

	require.Contains(t, got, "queue.depth")
	gauge, ok := got["queue.depth"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 7.0, gauge.DataPoints[0].Value)

	// snapshot statistics fan out by attribute on a single gauge
	require.Contains(t, got, "sizes")
	stats, ok := got["sizes"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	assert.Len(t, stats.DataPoints, 9)

	require.Contains(t, got, "events.rate")
	rates, ok := got["events.rate"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	assert.Len(t, rates.DataPoints, 3)
}

func TestOTelReporterCountDeltas(t *testing.T) {
	cfg := config.Default()
	reg, _ := newPopulatedRegistry(t, cfg)

	reader := sdkmetric.NewManualReader()
	sched := &scheduler.Manual{}
	r := &OTel{
		Config:     cfg,
		Logger:     &logger.MockLogger{},
		Registry:   reg,
		Scheduler:  sched,
		testReader: reader,
	}
	require.NoError(t, r.Start())
	defer r.Stop()

	sched.Fire()
	reg.Counter("requests").Inc(8)
	sched.Fire()

	// the manual reader is cumulative, so two reports add up to the total
	got := collectNames(t, reader)
	sum := got["requests.count"].Data.(metricdata.Sum[int64])
	assert.EqualValues(t, 50, sum.DataPoints[0].Value)
}

func TestOTelReporterDisabled(t *testing.T) {
	cfg := config.Default()
	reg, _ := newPopulatedRegistry(t, cfg)

	sched := &scheduler.Manual{}
	r := &OTel{
		Config:    cfg,
		Registry:  reg,
		Scheduler: sched,
	}
	require.NoError(t, r.Start())
	require.NoError(t, r.Stop())
	assert.Equal(t, 0, sched.TaskCount())
}
