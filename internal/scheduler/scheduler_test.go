package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestPeriodicFiresOnInterval(t *testing.T) {
	cl := clockwork.NewFakeClock()
	s := New(cl)

	var calls atomic.Int64
	task := s.Every(time.Second, func() { calls.Add(1) })
	defer task.Stop()

	for i := 0; i < 5; i++ {
		cl.Advance(time.Second)
		time.Sleep(1 * time.Millisecond) // give the task goroutine time to run
	}
	assert.EqualValues(t, 5, calls.Load())
}

func TestPeriodicStopPreventsFurtherCalls(t *testing.T) {
	cl := clockwork.NewFakeClock()
	s := New(cl)

	var calls atomic.Int64
	task := s.Every(time.Second, func() { calls.Add(1) })

	cl.Advance(time.Second)
	time.Sleep(1 * time.Millisecond)
	task.Stop()
	after := calls.Load()

	for i := 0; i < 3; i++ {
		cl.Advance(time.Second)
		time.Sleep(1 * time.Millisecond)
	}
	assert.Equal(t, after, calls.Load())
}

func TestPeriodicStopIsIdempotent(t *testing.T) {
	cl := clockwork.NewFakeClock()
	s := New(cl)
	task := s.Every(time.Second, func() {})
	task.Stop()
	task.Stop()
}

func TestNewNilClockUsesRealClock(t *testing.T) {
	s := New(nil)
	assert.NotNil(t, s.Clock)
}

func TestManualFiresSynchronously(t *testing.T) {
	m := &Manual{}
	count := 0
	task := m.Every(time.Hour, func() { count++ })

	m.Fire()
	m.Fire()
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, m.TaskCount())

	task.Stop()
	m.Fire()
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, m.TaskCount())
}
