package metrics

import (
	"sync/atomic"

	"github.com/opsarena/meterage/reservoir"
)

// StandardHistogram records values into a decaying reservoir and so
// approximates the distribution of the recent stream, not the full history.
type StandardHistogram struct {
	sample *reservoir.ExpDecayReservoir
	count  atomic.Int64
}

var _ Histogram = (*StandardHistogram)(nil)

// NewHistogram wraps the given reservoir. The histogram takes ownership:
// stopping the histogram stops the reservoir's maintenance task.
func NewHistogram(sample *reservoir.ExpDecayReservoir) *StandardHistogram {
	return &StandardHistogram{sample: sample}
}

func (h *StandardHistogram) Update(v int64) {
	h.count.Add(1)
	h.sample.Update(v)
}

// Count is the total number of values ever recorded, not the number
// currently retained.
func (h *StandardHistogram) Count() int64 {
	return h.count.Load()
}

func (h *StandardHistogram) Snapshot() *reservoir.Snapshot {
	return h.sample.Snapshot()
}

func (h *StandardHistogram) Clear() {
	h.count.Store(0)
	h.sample.Reset()
}

func (h *StandardHistogram) Stop() {
	h.sample.Stop()
}
