package health

import (
	"sync"
	"time"

	"github.com/facebookgo/startstop"
	"github.com/jonboulle/clockwork"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/metrics"
)

// Instrumented subsystems register here with the maximum interval at which
// they expect to report in. A subsystem that misses its interval is marked
// dead, which takes the whole process's liveness with it. A subsystem can
// also report alive-but-not-ready, which is the normal state during startup
// and shutdown.
//
// Two styles of participation are supported. Push: the subsystem calls
// Ready() itself from its own loop. Pull: the subsystem registers a Checker
// and the survey ticker runs it, translating a nil error into a ready report.

// Checker is a health probe run by the survey ticker. Returning a non-nil
// error marks the source as not ready; it stays alive as long as the checker
// keeps running.
type Checker func() error

// Recorder is the write side used by subsystems to record their own status.
type Recorder interface {
	Register(source string, timeout time.Duration)
	RegisterChecker(source string, timeout time.Duration, check Checker)
	Unregister(source string)
	Ready(source string, ready bool)
}

// Reporter is the read side used to answer liveness and readiness probes.
type Reporter interface {
	IsAlive() bool
	IsReady() bool
}

// Health tracks the liveness and readiness of every registered source. The
// survey ticker ages each source's remaining time and runs pull checkers;
// registration alone does not start the aging, only the first Ready report
// (or checker run) does.
type Health struct {
	Config  *config.Config    `inject:""`
	Clock   clockwork.Clock   `inject:""`
	Logger  logger.Logger     `inject:""`
	Metrics *metrics.Registry `inject:""`

	interval time.Duration
	timeouts map[string]time.Duration
	timeLeft map[string]time.Duration
	checks   map[string]Checker
	readies  map[string]bool
	alives   map[string]bool
	mut      sync.RWMutex
	done     chan struct{}

	startstop.Starter
	startstop.Stopper
	Recorder
	Reporter
}

func (h *Health) Start() error {
	if h.Logger == nil {
		h.Logger = &logger.NullLogger{}
	}
	if h.Clock == nil {
		h.Clock = clockwork.NewRealClock()
	}
	h.interval = 500 * time.Millisecond
	if h.Config != nil {
		h.interval = h.Config.Health.Interval.Duration()
	}
	h.timeouts = make(map[string]time.Duration)
	h.timeLeft = make(map[string]time.Duration)
	h.checks = make(map[string]Checker)
	h.readies = make(map[string]bool)
	h.alives = make(map[string]bool)
	h.done = make(chan struct{})
	go h.survey()
	return nil
}

func (h *Health) Stop() error {
	close(h.done)
	return nil
}

func (h *Health) survey() {
	tick := h.Clock.NewTicker(h.interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.Chan():
			h.runCheckers()
			h.age()
		case <-h.done:
			return
		}
	}
}

// age decrements the remaining time of every source that has reported at
// least once. A counter at 0 means dead; negative means never reported.
func (h *Health) age() {
	h.mut.Lock()
	defer h.mut.Unlock()
	for source, left := range h.timeLeft {
		if left > 0 {
			h.timeLeft[source] -= h.interval
			if h.timeLeft[source] < 0 {
				h.timeLeft[source] = 0
			}
		}
	}
}

func (h *Health) runCheckers() {
	h.mut.RLock()
	checks := make(map[string]Checker, len(h.checks))
	for source, check := range h.checks {
		checks[source] = check
	}
	h.mut.RUnlock()

	// run outside the lock so a slow checker can't block reports
	for source, check := range checks {
		err := check()
		if err != nil {
			h.Logger.Warn().WithField("source", source).WithField("error", err.Error()).
				Logf("health check failed")
		}
		h.Ready(source, err == nil)
	}
}

// Register a source. The timeout is the maximum expected interval between
// its Ready reports, counted from the first report.
func (h *Health) Register(source string, timeout time.Duration) {
	h.mut.Lock()
	defer h.mut.Unlock()
	h.register(source, timeout)
}

// RegisterChecker registers a source whose status is pulled by running check
// on every survey tick. The timeout still applies, so a checker that stops
// being run (or a stopped Health) eventually reads as dead.
func (h *Health) RegisterChecker(source string, timeout time.Duration, check Checker) {
	h.mut.Lock()
	defer h.mut.Unlock()
	h.register(source, timeout)
	h.checks[source] = check
}

// register expects the write lock to be held.
func (h *Health) register(source string, timeout time.Duration) {
	h.timeouts[source] = timeout
	h.readies[source] = false
	// negative means no report yet, so a slow-starting source isn't dead
	h.timeLeft[source] = -1
	fields := map[string]any{
		"source":  source,
		"timeout": timeout,
	}
	h.Logger.Debug().WithFields(fields).Logf("registered health source")
	if timeout < h.interval {
		h.Logger.Error().WithFields(fields).Logf("health timeout is shorter than the survey interval")
	}
}

// Unregister a source. It is marked not ready and dropped from liveness
// tracking; late reports from it are ignored.
func (h *Health) Unregister(source string) {
	h.mut.Lock()
	defer h.mut.Unlock()
	delete(h.timeouts, source)
	delete(h.timeLeft, source)
	delete(h.alives, source)
	delete(h.checks, source)

	// keep the readies entry so a late Ready from this source isn't
	// reported as a bug, but an unregistered source can never be ready
	h.readies[source] = false
}

// Ready records a source's readiness and refreshes its liveness counter.
// An unready source still counts as alive as long as it keeps reporting.
func (h *Health) Ready(source string, ready bool) {
	h.mut.Lock()
	defer h.mut.Unlock()
	if _, ok := h.timeouts[source]; !ok {
		if _, ok := h.readies[source]; !ok {
			h.Logger.Error().WithField("source", source).Logf("Ready called for unregistered source")
		}
		return
	}
	if h.readies[source] != ready {
		h.Logger.Info().WithFields(map[string]any{
			"source": source,
			"ready":  ready,
		}).Logf("health source changed readiness")
	}
	h.readies[source] = ready
	h.timeLeft[source] = h.timeouts[source]
	if !h.alives[source] {
		h.alives[source] = true
		h.Logger.Info().WithField("source", source).Logf("health source reporting alive")
	}
	if h.Metrics != nil {
		h.Metrics.Gauge("health_is_ready").Update(boolToGauge(h.checkReady()))
		h.Metrics.Gauge("health_is_alive").Update(boolToGauge(h.checkAlive()))
	}
}

// IsAlive returns true if every registered source is alive. It takes the
// write lock because a newly dead source is recorded on discovery.
func (h *Health) IsAlive() bool {
	h.mut.Lock()
	defer h.mut.Unlock()
	return h.checkAlive()
}

// checkAlive expects the write lock to be held.
func (h *Health) checkAlive() bool {
	for source, left := range h.timeLeft {
		if left == 0 {
			if h.alives[source] {
				h.Logger.Error().WithField("source", source).Logf("health source dead after missing its timeout")
				h.alives[source] = false
			}
			return false
		}
	}
	return true
}

// IsReady returns true if every registered source is ready. Before anything
// has registered the system is not ready.
func (h *Health) IsReady() bool {
	h.mut.RLock()
	defer h.mut.RUnlock()
	return h.checkReady()
}

// checkReady expects the lock to be held.
func (h *Health) checkReady() bool {
	if len(h.readies) == 0 {
		return false
	}
	// a source that never reported or missed its timeout isn't ready either
	for _, left := range h.timeLeft {
		if left <= 0 {
			return false
		}
	}
	for _, ready := range h.readies {
		if !ready {
			return false
		}
	}
	return true
}

func boolToGauge(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
