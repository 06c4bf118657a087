package metrics

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/opsarena/meterage/reservoir"
)

// StandardTimer is a histogram of durations (in nanoseconds) plus a meter of
// the call rate.
type StandardTimer struct {
	histogram *StandardHistogram
	meter     *StandardMeter
	clock     clockwork.Clock
}

var _ Timer = (*StandardTimer)(nil)

func NewTimer(histogram *StandardHistogram, meter *StandardMeter, clock clockwork.Clock) *StandardTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StandardTimer{
		histogram: histogram,
		meter:     meter,
		clock:     clock,
	}
}

// Update records one call of the given duration.
func (t *StandardTimer) Update(d time.Duration) {
	t.histogram.Update(d.Nanoseconds())
	t.meter.Mark(1)
}

// Time runs fn and records how long it took.
func (t *StandardTimer) Time(fn func()) {
	start := t.clock.Now()
	fn()
	t.Update(t.clock.Now().Sub(start))
}

func (t *StandardTimer) Count() int64 {
	return t.histogram.Count()
}

func (t *StandardTimer) Snapshot() *reservoir.Snapshot {
	return t.histogram.Snapshot()
}

func (t *StandardTimer) Rate1() float64 {
	return t.meter.Rate1()
}

func (t *StandardTimer) Rate5() float64 {
	return t.meter.Rate5()
}

func (t *StandardTimer) Rate15() float64 {
	return t.meter.Rate15()
}

func (t *StandardTimer) RateMean() float64 {
	return t.meter.RateMean()
}

func (t *StandardTimer) Stop() {
	t.histogram.Stop()
	t.meter.Stop()
}
