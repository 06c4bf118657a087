package metrics

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/opsarena/meterage/ewma"
	"github.com/opsarena/meterage/internal/scheduler"
)

// StandardMeter marks events and reports 1-, 5- and 15-minute moving rates.
// It owns the periodic task that ticks its three EWMAs; the task is the only
// tick driver, which is what makes the lock-free EWMA tick safe.
type StandardMeter struct {
	count     atomic.Int64
	m1        *ewma.EWMA
	m5        *ewma.EWMA
	m15       *ewma.EWMA
	clock     clockwork.Clock
	startTime time.Time
	tickTask  scheduler.Canceler
}

var _ Meter = (*StandardMeter)(nil)

// NewMeter constructs a meter ticking at the given cadence on the given
// scheduler. The canonical cadence is ewma.DefaultTickInterval; a different
// cadence shifts the effective smoothing windows.
func NewMeter(clock clockwork.Clock, sched scheduler.Scheduler, tickInterval time.Duration) *StandardMeter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if sched == nil {
		sched = scheduler.New(clock)
	}
	m := &StandardMeter{
		m1:        ewma.NewOneMinute(),
		m5:        ewma.NewFiveMinute(),
		m15:       ewma.NewFifteenMinute(),
		clock:     clock,
		startTime: clock.Now(),
	}
	m.tickTask = sched.Every(tickInterval, m.tick)
	return m
}

func (m *StandardMeter) tick() {
	m.m1.Tick()
	m.m5.Tick()
	m.m15.Tick()
}

// Mark records n events.
func (m *StandardMeter) Mark(n int64) {
	m.count.Add(n)
	m.m1.Update(n)
	m.m5.Update(n)
	m.m15.Update(n)
}

func (m *StandardMeter) Count() int64 {
	return m.count.Load()
}

func (m *StandardMeter) Rate1() float64 {
	return m.m1.Rate(time.Second)
}

func (m *StandardMeter) Rate5() float64 {
	return m.m5.Rate(time.Second)
}

func (m *StandardMeter) Rate15() float64 {
	return m.m15.Rate(time.Second)
}

// RateMean is the lifetime mean rate in events per second.
func (m *StandardMeter) RateMean() float64 {
	elapsed := m.clock.Now().Sub(m.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.count.Load()) / elapsed
}

// Stop halts the owned tick task. Marks remain valid afterward; the rates
// just stop decaying.
func (m *StandardMeter) Stop() {
	m.tickTask.Stop()
}
