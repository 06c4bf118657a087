// Package scheduler provides the periodic-task driver used by meters,
// reservoirs, health, and reporters. It owns no data of its own; it just
// invokes a callback on a fixed cadence until stopped.
package scheduler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler starts periodic tasks. The production implementation runs one
// goroutine per task off a clockwork ticker; tests inject a Manual scheduler
// and drive callbacks synchronously.
type Scheduler interface {
	// Every invokes fn once per interval until the returned task is stopped.
	Every(interval time.Duration, fn func()) Canceler
}

// Canceler stops a periodic task. After Stop returns, fn will not be invoked
// again; at most one in-flight invocation is allowed to finish first.
type Canceler interface {
	Stop()
}

// Periodic is the clock-driven Scheduler.
type Periodic struct {
	Clock clockwork.Clock `inject:""`
}

var _ Scheduler = (*Periodic)(nil)

// New returns a Periodic scheduler on the given clock; a nil clock means the
// real one.
func New(clock clockwork.Clock) *Periodic {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Periodic{Clock: clock}
}

func (p *Periodic) Every(interval time.Duration, fn func()) Canceler {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := &task{done: make(chan struct{})}
	ticker := clock.NewTicker(interval)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.Chan():
				fn()
			}
		}
	}()
	return t
}

type task struct {
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// Stop is idempotent. It joins the task goroutine, so once it returns there
// is no further invocation of the callback.
func (t *task) Stop() {
	t.once.Do(func() { close(t.done) })
	t.wg.Wait()
}
