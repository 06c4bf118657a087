package metrics

import (
	"math"
	"sync/atomic"
)

// StandardGauge is a lock-free int64 Gauge.
type StandardGauge struct {
	value atomic.Int64
}

var _ Gauge = (*StandardGauge)(nil)

func NewGauge() *StandardGauge {
	return &StandardGauge{}
}

func (g *StandardGauge) Update(v int64) {
	g.value.Store(v)
}

func (g *StandardGauge) Value() int64 {
	return g.value.Load()
}

// FunctionalGauge computes its value on every read.
type FunctionalGauge struct {
	f func() int64
}

var _ Gauge = (*FunctionalGauge)(nil)

func NewFunctionalGauge(f func() int64) *FunctionalGauge {
	return &FunctionalGauge{f: f}
}

// Update is a no-op; the value comes from the function.
func (g *FunctionalGauge) Update(int64) {}

func (g *FunctionalGauge) Value() int64 {
	return g.f()
}

// StandardGaugeFloat64 is a lock-free float64 Gauge.
type StandardGaugeFloat64 struct {
	bits atomic.Uint64
}

var _ GaugeFloat64 = (*StandardGaugeFloat64)(nil)

func NewGaugeFloat64() *StandardGaugeFloat64 {
	return &StandardGaugeFloat64{}
}

func (g *StandardGaugeFloat64) Update(v float64) {
	g.bits.Store(math.Float64bits(v))
}

func (g *StandardGaugeFloat64) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}
