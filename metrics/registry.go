package metrics

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/reservoir"
)

// Registry is a named collection of instruments. Each Get-or-register method
// returns the existing instrument under that name, or constructs one using
// the registry's configuration. A registry built from a config with
// Metrics.Enabled false hands out null instruments, which is the explicit
// replacement for the old process-wide disablement switch: tests can run
// enabled and disabled registries side by side.
type Registry struct {
	Config    *config.Config      `inject:""`
	Logger    logger.Logger       `inject:""`
	Clock     clockwork.Clock     `inject:""`
	Scheduler scheduler.Scheduler `inject:""`

	mut         sync.RWMutex
	instruments map[string]any
}

// NewRegistry builds a registry. Any nil collaborator gets a production
// default.
func NewRegistry(cfg *config.Config, opts ...RegistryOption) *Registry {
	r := &Registry{Config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	r.Start()
	return r
}

type RegistryOption func(*Registry)

func WithClock(clock clockwork.Clock) RegistryOption {
	return func(r *Registry) { r.Clock = clock }
}

func WithScheduler(s scheduler.Scheduler) RegistryOption {
	return func(r *Registry) { r.Scheduler = s }
}

func WithLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) { r.Logger = l }
}

// Start fills in defaults for any collaborator not set by options or
// injection. It is safe to call more than once.
func (r *Registry) Start() error {
	r.mut.Lock()
	defer r.mut.Unlock()
	if r.Config == nil {
		r.Config = config.Default()
	}
	if r.Logger == nil {
		r.Logger = &logger.NullLogger{}
	}
	if r.Clock == nil {
		r.Clock = clockwork.NewRealClock()
	}
	if r.Scheduler == nil {
		r.Scheduler = scheduler.New(r.Clock)
	}
	if r.instruments == nil {
		r.instruments = make(map[string]any)
	}
	return nil
}

func (r *Registry) enabled() bool {
	return r.Config == nil || r.Config.Metrics.Enabled
}

// getOrRegister returns the instrument under name, building it on first use.
// The builder runs under the lock; instrument construction is cheap.
func (r *Registry) getOrRegister(name string, build func() any) any {
	r.mut.RLock()
	inst, ok := r.instruments[name]
	r.mut.RUnlock()
	if ok {
		return inst
	}

	r.mut.Lock()
	defer r.mut.Unlock()
	if inst, ok := r.instruments[name]; ok {
		return inst
	}
	inst = build()
	r.instruments[name] = inst
	r.Logger.Debug().WithString("name", name).Logf("registered instrument")
	return inst
}

func (r *Registry) Counter(name string) Counter {
	if !r.enabled() {
		return NullCounter{}
	}
	return r.getOrRegister(name, func() any { return NewCounter() }).(Counter)
}

func (r *Registry) Gauge(name string) Gauge {
	if !r.enabled() {
		return NullGauge{}
	}
	return r.getOrRegister(name, func() any { return NewGauge() }).(Gauge)
}

func (r *Registry) GaugeFloat64(name string) GaugeFloat64 {
	if !r.enabled() {
		return NullGaugeFloat64{}
	}
	return r.getOrRegister(name, func() any { return NewGaugeFloat64() }).(GaugeFloat64)
}

// FunctionalGauge registers a gauge computed on read. If an instrument
// already exists under name it is returned unchanged.
func (r *Registry) FunctionalGauge(name string, f func() int64) Gauge {
	if !r.enabled() {
		return NullGauge{}
	}
	return r.getOrRegister(name, func() any { return NewFunctionalGauge(f) }).(Gauge)
}

func (r *Registry) Histogram(name string) Histogram {
	if !r.enabled() {
		return NullHistogram{}
	}
	return r.getOrRegister(name, func() any { return r.newHistogram() }).(Histogram)
}

func (r *Registry) Meter(name string) Meter {
	if !r.enabled() {
		return NullMeter{}
	}
	return r.getOrRegister(name, func() any { return r.newMeter() }).(Meter)
}

func (r *Registry) Timer(name string) Timer {
	if !r.enabled() {
		return NullTimer{}
	}
	return r.getOrRegister(name, func() any {
		return NewTimer(r.newHistogram(), r.newMeter(), r.Clock)
	}).(Timer)
}

func (r *Registry) newHistogram() *StandardHistogram {
	mc := r.Config.Metrics
	return NewHistogram(reservoir.New(mc.ReservoirSize, mc.DecayAlpha,
		reservoir.WithClock(r.Clock),
		reservoir.WithScheduler(r.Scheduler),
		reservoir.WithRescaleInterval(mc.RescaleInterval.Duration()),
	))
}

func (r *Registry) newMeter() *StandardMeter {
	return NewMeter(r.Clock, r.Scheduler, r.Config.Metrics.TickInterval.Duration())
}

// Each calls fn for every registered instrument, in no particular order.
// Reporters use this to walk the registry.
func (r *Registry) Each(fn func(name string, instrument any)) {
	r.mut.RLock()
	names := make([]string, 0, len(r.instruments))
	for name := range r.instruments {
		names = append(names, name)
	}
	r.mut.RUnlock()
	for _, name := range names {
		r.mut.RLock()
		inst, ok := r.instruments[name]
		r.mut.RUnlock()
		if ok {
			fn(name, inst)
		}
	}
}

// Get returns the instrument under name, or nil.
func (r *Registry) Get(name string) any {
	r.mut.RLock()
	defer r.mut.RUnlock()
	return r.instruments[name]
}

// Unregister removes the named instrument and stops its background task if
// it has one.
func (r *Registry) Unregister(name string) {
	r.mut.Lock()
	inst, ok := r.instruments[name]
	delete(r.instruments, name)
	r.mut.Unlock()
	if ok {
		stopInstrument(inst)
	}
}

// Stop unregisters everything, stopping all owned background tasks. The
// registry remains usable; instruments are simply rebuilt on next use.
func (r *Registry) Stop() error {
	r.mut.Lock()
	old := r.instruments
	r.instruments = make(map[string]any)
	r.mut.Unlock()
	for _, inst := range old {
		stopInstrument(inst)
	}
	return nil
}

func stopInstrument(inst any) {
	if s, ok := inst.(interface{ Stop() }); ok {
		s.Stop()
	}
}
