package reporter

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/metrics"
)

// newPopulatedRegistry builds a registry carrying one instrument of each
// kind with known values.
func newPopulatedRegistry(t *testing.T, cfg *config.Config) (*metrics.Registry, *scheduler.Manual) {
	t.Helper()
	cl := clockwork.NewFakeClock()
	sched := &scheduler.Manual{}
	reg := metrics.NewRegistry(cfg, metrics.WithClock(cl), metrics.WithScheduler(sched))
	t.Cleanup(func() { reg.Stop() })

	reg.Counter("requests").Inc(42)
	reg.Gauge("queue.depth").Update(7)
	reg.GaugeFloat64("load").Update(1.5)
	h := reg.Histogram("sizes")
	for i := 1; i <= 10; i++ {
		h.Update(int64(i))
	}
	reg.Meter("events").Mark(15)
	reg.Timer("handler").Update(250)
	return reg, sched
}

func TestColumnsPerInstrument(t *testing.T) {
	reg, _ := newPopulatedRegistry(t, config.Default())

	want := map[string]int{
		"requests":    1,  // count
		"queue.depth": 1,  // value
		"load":        1,  // value
		"sizes":       10, // count..stddev + 5 quantiles
		"events":      5,  // count + 4 rates
		"handler":     14, // histogram cols + 4 rates
	}
	reg.Each(func(name string, inst any) {
		names, vals := columns(inst)
		assert.Len(t, names, want[name], name)
		assert.Len(t, vals, len(names), name)
	})
}
