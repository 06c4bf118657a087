// Package ewma implements an exponentially-weighted moving average of an
// event rate, in the style of the Unix load average: arbitrary threads
// record events at arbitrary frequency, and a single periodic driver folds
// them into a smoothed rate at a fixed cadence.
package ewma

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// DefaultTickInterval is the canonical load-average tick period used by the
// named constructors.
const DefaultTickInterval = 5 * time.Second

// EWMA smooths a counted event stream into a rate. Update is a lock-free
// atomic add and may be called from any number of goroutines; Tick must be
// invoked by exactly one periodic driver. Overlapping Tick calls race on the
// drain-and-smooth sequence and are not supported -- the caller is
// responsible for serializing ticks, which the scheduler does by
// construction.
type EWMA struct {
	intervalNanos float64
	alpha         float64

	uncounted   atomic.Int64
	rateBits    atomic.Uint64 // math.Float64bits of events per nanosecond
	initialized atomic.Bool
}

// New returns an EWMA with the given smoothing constant and tick interval.
// It fails fast on a non-positive interval so a meter can never be half
// constructed.
func New(alpha float64, interval time.Duration) (*EWMA, error) {
	if interval <= 0 {
		return nil, errors.Errorf("ewma tick interval must be positive, got %s", interval)
	}
	return &EWMA{
		intervalNanos: float64(interval.Nanoseconds()),
		alpha:         alpha,
	}, nil
}

func mustNew(alpha float64) *EWMA {
	e, err := New(alpha, DefaultTickInterval)
	if err != nil {
		panic(err)
	}
	return e
}

// NewOneMinute returns an EWMA equivalent to the one-minute load average:
// alpha = 1 - exp(-5/60), ticked every five seconds.
func NewOneMinute() *EWMA {
	return mustNew(1 - math.Exp(-5.0/60.0))
}

// NewFiveMinute returns the five-minute load average equivalent.
func NewFiveMinute() *EWMA {
	return mustNew(1 - math.Exp(-5.0/60.0/5))
}

// NewFifteenMinute returns the fifteen-minute load average equivalent.
func NewFifteenMinute() *EWMA {
	return mustNew(1 - math.Exp(-5.0/60.0/15))
}

// Update records n events. It never affects the rate directly; events are
// folded in at the next tick.
func (e *EWMA) Update(n int64) {
	e.uncounted.Add(n)
}

// Tick applies one smoothing step against the events accumulated since the
// last tick.
func (e *EWMA) Tick() {
	e.TickCounted(0)
}

// TickCounted is Tick with additional externally-counted events that did not
// pass through Update.
func (e *EWMA) TickCounted(external int64) {
	count := e.uncounted.Swap(0) + external
	instantRate := float64(count) / e.intervalNanos
	if e.initialized.Load() {
		rate := e.rate()
		e.setRate(rate + e.alpha*(instantRate-rate))
	} else {
		e.setRate(instantRate)
		e.initialized.Store(true)
	}
}

// Rate returns the smoothed rate in events per unit, e.g. Rate(time.Second)
// for events per second. Readable concurrently with Update and Tick; before
// the first tick it is exactly zero.
func (e *EWMA) Rate(unit time.Duration) float64 {
	return e.rate() * float64(unit.Nanoseconds())
}

// Reset clears the accumulator and the rate, returning the EWMA to its
// cold-start state.
func (e *EWMA) Reset() {
	e.uncounted.Store(0)
	e.setRate(0)
	e.initialized.Store(false)
}

func (e *EWMA) rate() float64 {
	return math.Float64frombits(e.rateBits.Load())
}

func (e *EWMA) setRate(r float64) {
	e.rateBits.Store(math.Float64bits(r))
}
