package metrics

import "sync/atomic"

// StandardCounter is a lock-free Counter.
type StandardCounter struct {
	count atomic.Int64
}

var _ Counter = (*StandardCounter)(nil)

func NewCounter() *StandardCounter {
	return &StandardCounter{}
}

func (c *StandardCounter) Inc(n int64) {
	c.count.Add(n)
}

func (c *StandardCounter) Dec(n int64) {
	c.count.Add(-n)
}

func (c *StandardCounter) Count() int64 {
	return c.count.Load()
}

func (c *StandardCounter) Clear() {
	c.count.Store(0)
}
