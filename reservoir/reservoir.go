// Package reservoir implements a forward-decay priority reservoir: a
// bounded-size random sample of an unbounded value stream, exponentially
// biased toward recent values, after Cormode et al., "Forward Decay: A
// Practical Time Decay Model for Streaming Systems" (ICDE '09).
package reservoir

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/opsarena/meterage/internal/scheduler"
)

// DefaultRescaleInterval bounds how long stored priorities can grow against
// a fixed landmark before they are renormalized.
const DefaultRescaleInterval = time.Hour

// WeightedSample is an immutable (value, weight) pair as retained by the
// reservoir.
type WeightedSample struct {
	Value  int64
	Weight float64
}

// ExpDecayReservoir keeps at most size samples of a stream, each retained
// with probability proportional to exp(alpha*(t-landmark))/u for a uniform
// draw u. A larger alpha biases the sample more strongly toward recency;
// alpha of zero degrades to plain uniform reservoir sampling.
//
// All operations are safe for concurrent use; mutation and reads are
// serialized by a single short-hold mutex, so a Snapshot never observes a
// partially applied update.
type ExpDecayReservoir struct {
	size  int
	alpha float64

	clock  clockwork.Clock
	random RandomSource

	mut      sync.Mutex
	landmark int64
	count    int64
	// priorities is kept sorted ascending and always mirrors the key set of
	// samples. Two updates that draw the same priority overwrite in samples
	// without a second priorities entry; the earlier value silently loses
	// its slot.
	priorities []float64
	samples    map[float64]WeightedSample

	rescaleTask scheduler.Canceler
}

// Option configures a reservoir at construction time.
type Option func(*options)

type options struct {
	clock           clockwork.Clock
	random          RandomSource
	scheduler       scheduler.Scheduler
	rescaleInterval time.Duration
}

// WithClock supplies the time source; tests use clockwork.NewFakeClock().
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithRandomSource supplies the priority draw source; tests use a scripted
// stub.
func WithRandomSource(r RandomSource) Option {
	return func(o *options) { o.random = r }
}

// WithScheduler supplies the driver for the periodic rescale task.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithRescaleInterval overrides DefaultRescaleInterval.
func WithRescaleInterval(d time.Duration) Option {
	return func(o *options) { o.rescaleInterval = d }
}

// New constructs a reservoir of the given capacity and decay constant and
// starts its owned periodic rescale task. Stop releases the task.
func New(size int, alpha float64, opts ...Option) *ExpDecayReservoir {
	o := &options{rescaleInterval: DefaultRescaleInterval}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.random == nil {
		o.random = NewRandomSource(o.clock.Now().UnixNano())
	}
	if o.scheduler == nil {
		o.scheduler = scheduler.New(o.clock)
	}

	r := &ExpDecayReservoir{
		size:       size,
		alpha:      alpha,
		clock:      o.clock,
		random:     o.random,
		landmark:   o.clock.Now().Unix(),
		priorities: make([]float64, 0, size),
		samples:    make(map[float64]WeightedSample, size),
	}
	r.rescaleTask = o.scheduler.Every(o.rescaleInterval, r.Rescale)
	return r
}

// Update records a value as of the current clock reading. It always
// succeeds.
func (r *ExpDecayReservoir) Update(value int64) {
	r.UpdateAt(value, r.clock.Now().Unix())
}

// UpdateAt records a value observed at the given timestamp (whole seconds).
func (r *ExpDecayReservoir) UpdateAt(value int64, timestamp int64) {
	r.mut.Lock()
	defer r.mut.Unlock()

	weight := math.Exp(r.alpha * float64(timestamp-r.landmark))
	priority := weight / r.random.Float64()

	r.count++
	if r.count <= int64(r.size) {
		r.insert(priority, WeightedSample{Value: value, Weight: weight})
		return
	}
	// the new sample competes with the lowest-priority survivor
	if lowest := r.priorities[0]; priority > lowest {
		r.remove(lowest)
		r.insert(priority, WeightedSample{Value: value, Weight: weight})
	}
}

func (r *ExpDecayReservoir) insert(priority float64, s WeightedSample) {
	if _, collision := r.samples[priority]; !collision {
		at, _ := slices.BinarySearch(r.priorities, priority)
		r.priorities = slices.Insert(r.priorities, at, priority)
	}
	r.samples[priority] = s
}

func (r *ExpDecayReservoir) remove(priority float64) {
	delete(r.samples, priority)
	at, found := slices.BinarySearch(r.priorities, priority)
	if found {
		r.priorities = slices.Delete(r.priorities, at, at+1)
	}
}

// Snapshot returns an immutable copy of the currently retained values.
func (r *ExpDecayReservoir) Snapshot() *Snapshot {
	r.mut.Lock()
	defer r.mut.Unlock()
	values := make([]int64, 0, len(r.priorities))
	for _, p := range r.priorities {
		values = append(values, r.samples[p].Value)
	}
	return NewSnapshot(values)
}

// Size reports how many samples are retained: the total updates seen, capped
// at capacity.
func (r *ExpDecayReservoir) Size() int {
	r.mut.Lock()
	defer r.mut.Unlock()
	if r.count < int64(r.size) {
		return int(r.count)
	}
	return r.size
}

// Reset discards all samples and starts a fresh sampling window at the
// current time.
func (r *ExpDecayReservoir) Reset() {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.count = 0
	r.landmark = r.clock.Now().Unix()
	r.priorities = r.priorities[:0]
	clear(r.samples)
}

// Rescale advances the decay landmark to now and multiplies every stored
// priority and weight by exp(-alpha*(now-oldLandmark)). Ratios between
// priorities are unchanged, so sampling behavior is preserved exactly; what
// changes is that stored magnitudes stay bounded instead of growing without
// limit as the landmark ages, which would eventually overflow the weight
// computation in UpdateAt. Driven by the owned periodic task.
func (r *ExpDecayReservoir) Rescale() {
	r.mut.Lock()
	defer r.mut.Unlock()

	oldLandmark := r.landmark
	r.landmark = r.clock.Now().Unix()
	factor := math.Exp(-r.alpha * float64(r.landmark-oldLandmark))

	rescaled := make([]float64, 0, len(r.priorities))
	samples := make(map[float64]WeightedSample, len(r.samples))
	for _, p := range r.priorities {
		s := r.samples[p]
		np := p * factor
		if _, collision := samples[np]; !collision {
			// multiplying by a positive constant preserves sort order
			rescaled = append(rescaled, np)
		}
		samples[np] = WeightedSample{Value: s.Value, Weight: s.Weight * factor}
	}
	r.priorities = rescaled
	r.samples = samples
	r.count = int64(len(r.priorities))
}

// Stop halts the owned rescale task. The reservoir itself remains usable;
// only the background maintenance stops.
func (r *ExpDecayReservoir) Stop() {
	if r.rescaleTask != nil {
		r.rescaleTask.Stop()
	}
}
