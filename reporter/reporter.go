// Package reporter ships registry contents somewhere a human or another
// system can see them. Every reporter is a startstop component; recording
// code never learns whether reporting is working, failures are logged and
// the next interval tries again.
package reporter

import (
	"github.com/opsarena/meterage/metrics"
)

// quantiles reported for every histogram-backed instrument.
var quantiles = []float64{0.5, 0.75, 0.95, 0.99, 0.999}

var quantileNames = []string{"p50", "p75", "p95", "p99", "p999"}

// columns flattens an instrument into parallel stat names and values. The
// order is stable per instrument type so CSV headers stay aligned across
// intervals. Unknown instrument types report nothing.
func columns(inst any) ([]string, []float64) {
	switch m := inst.(type) {
	case metrics.Timer:
		names := []string{"count", "min", "max", "mean", "stddev"}
		snap := m.Snapshot()
		vals := []float64{
			float64(m.Count()),
			float64(snap.Min()),
			float64(snap.Max()),
			snap.Mean(),
			snap.StdDev(),
		}
		for i, q := range snap.Percentiles(quantiles) {
			names = append(names, quantileNames[i])
			vals = append(vals, q)
		}
		names = append(names, "rate_1m", "rate_5m", "rate_15m", "rate_mean")
		vals = append(vals, m.Rate1(), m.Rate5(), m.Rate15(), m.RateMean())
		return names, vals
	case metrics.Histogram:
		names := []string{"count", "min", "max", "mean", "stddev"}
		snap := m.Snapshot()
		vals := []float64{
			float64(m.Count()),
			float64(snap.Min()),
			float64(snap.Max()),
			snap.Mean(),
			snap.StdDev(),
		}
		for i, q := range snap.Percentiles(quantiles) {
			names = append(names, quantileNames[i])
			vals = append(vals, q)
		}
		return names, vals
	case metrics.Meter:
		return []string{"count", "rate_1m", "rate_5m", "rate_15m", "rate_mean"},
			[]float64{float64(m.Count()), m.Rate1(), m.Rate5(), m.Rate15(), m.RateMean()}
	case metrics.Counter:
		return []string{"count"}, []float64{float64(m.Count())}
	case metrics.GaugeFloat64:
		return []string{"value"}, []float64{m.Value()}
	case metrics.Gauge:
		return []string{"value"}, []float64{float64(m.Value())}
	}
	return nil, nil
}
