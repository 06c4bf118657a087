package metrics

import (
	"time"

	"github.com/opsarena/meterage/reservoir"
)

// The null instruments are what a disabled registry hands out: recording is
// a no-op and every reading is zero. Instrumented code never needs to check
// whether metrics are enabled.

type NullCounter struct{}

var _ Counter = NullCounter{}

func (NullCounter) Inc(int64)    {}
func (NullCounter) Dec(int64)    {}
func (NullCounter) Count() int64 { return 0 }
func (NullCounter) Clear()       {}

type NullGauge struct{}

var _ Gauge = NullGauge{}

func (NullGauge) Update(int64) {}
func (NullGauge) Value() int64 { return 0 }

type NullGaugeFloat64 struct{}

var _ GaugeFloat64 = NullGaugeFloat64{}

func (NullGaugeFloat64) Update(float64) {}
func (NullGaugeFloat64) Value() float64 { return 0 }

type NullHistogram struct{}

var _ Histogram = NullHistogram{}

func (NullHistogram) Update(int64)                  {}
func (NullHistogram) Count() int64                  { return 0 }
func (NullHistogram) Snapshot() *reservoir.Snapshot { return reservoir.NewSnapshot(nil) }
func (NullHistogram) Clear()                        {}

type NullMeter struct{}

var _ Meter = NullMeter{}

func (NullMeter) Mark(int64)        {}
func (NullMeter) Count() int64      { return 0 }
func (NullMeter) Rate1() float64    { return 0 }
func (NullMeter) Rate5() float64    { return 0 }
func (NullMeter) Rate15() float64   { return 0 }
func (NullMeter) RateMean() float64 { return 0 }

type NullTimer struct{}

var _ Timer = NullTimer{}

func (NullTimer) Update(time.Duration)          {}
func (NullTimer) Time(fn func())                { fn() }
func (NullTimer) Count() int64                  { return 0 }
func (NullTimer) Snapshot() *reservoir.Snapshot { return reservoir.NewSnapshot(nil) }
func (NullTimer) Rate1() float64                { return 0 }
func (NullTimer) Rate5() float64                { return 0 }
func (NullTimer) Rate15() float64               { return 0 }
func (NullTimer) RateMean() float64             { return 0 }
