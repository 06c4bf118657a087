// Package metrics provides the instruments applications record into:
// counters, gauges, histograms, meters, and timers, grouped in a Registry.
// Histograms and meters are thin consumers of the statistical core in the
// reservoir and ewma packages.
package metrics

import (
	"time"

	"github.com/opsarena/meterage/reservoir"
)

// Counter counts events up and down.
type Counter interface {
	Inc(n int64)
	Dec(n int64)
	Count() int64
	Clear()
}

// Gauge holds an instantaneous int64 value.
type Gauge interface {
	Update(v int64)
	Value() int64
}

// GaugeFloat64 holds an instantaneous float64 value.
type GaugeFloat64 interface {
	Update(v float64)
	Value() float64
}

// Histogram approximates the distribution of the recent stream of values.
type Histogram interface {
	Update(v int64)
	Count() int64
	Snapshot() *reservoir.Snapshot
	Clear()
}

// Meter tracks the rate of events, smoothed over 1-, 5- and 15-minute
// windows, plus the lifetime mean.
type Meter interface {
	Mark(n int64)
	Count() int64
	Rate1() float64
	Rate5() float64
	Rate15() float64
	RateMean() float64
}

// Timer combines a histogram of durations with a meter of the call rate.
type Timer interface {
	Update(d time.Duration)
	Time(fn func())
	Count() int64
	Snapshot() *reservoir.Snapshot
	Rate1() float64
	Rate5() float64
	Rate15() float64
	RateMean() float64
}
