package scheduler

import (
	"sync"
	"time"
)

// Manual is a Scheduler for tests: nothing runs until Fire is called, and
// then every live callback runs synchronously on the caller's goroutine.
type Manual struct {
	mut   sync.Mutex
	tasks []*manualTask
}

var _ Scheduler = (*Manual)(nil)

type manualTask struct {
	owner   *Manual
	fn      func()
	stopped bool
}

func (m *Manual) Every(interval time.Duration, fn func()) Canceler {
	m.mut.Lock()
	defer m.mut.Unlock()
	t := &manualTask{owner: m, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Fire runs every registered, unstopped callback once.
func (m *Manual) Fire() {
	m.mut.Lock()
	live := make([]func(), 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t.fn)
		}
	}
	m.mut.Unlock()
	for _, fn := range live {
		fn()
	}
}

// TaskCount returns the number of registered, unstopped tasks.
func (m *Manual) TaskCount() int {
	m.mut.Lock()
	defer m.mut.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *manualTask) Stop() {
	t.owner.mut.Lock()
	defer t.owner.mut.Unlock()
	t.stopped = true
}
