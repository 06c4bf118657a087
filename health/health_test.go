package health

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/logger"
)

func newTestHealth() (*Health, *clockwork.FakeClock) {
	cl := clockwork.NewFakeClock()
	h := &Health{
		Clock: cl,
	}
	h.Start()
	// wait for the survey goroutine to create its ticker so the first
	// Advance isn't lost
	cl.BlockUntil(1)
	return h, cl
}

// advance moves the fake clock through n survey ticks, yielding between
// ticks so the survey goroutine gets to run.
func advance(cl *clockwork.FakeClock, n int) {
	for i := 0; i < n; i++ {
		cl.Advance(500 * time.Millisecond)
		time.Sleep(1 * time.Millisecond)
	}
}

func TestStartup(t *testing.T) {
	h, _ := newTestHealth()
	defer h.Stop()

	// nothing registered: alive but not ready
	assert.True(t, h.IsAlive())
	assert.False(t, h.IsReady())
}

func TestRegisteredButNeverReported(t *testing.T) {
	h, cl := newTestHealth()
	defer h.Stop()

	h.Register("foo", 1500*time.Millisecond)
	assert.True(t, h.IsAlive())
	assert.False(t, h.IsReady())

	// a source that never reports doesn't go dead, just stays unready
	advance(cl, 10)
	assert.True(t, h.IsAlive())
	assert.False(t, h.IsReady())
}

func TestReadyThenTimeout(t *testing.T) {
	h, cl := newTestHealth()
	defer h.Stop()

	h.Register("foo", 1500*time.Millisecond)
	h.Ready("foo", true)
	assert.True(t, h.IsAlive())
	assert.True(t, h.IsReady())

	// keeps reporting: stays alive and ready
	for i := 0; i < 10; i++ {
		h.Ready("foo", true)
		advance(cl, 1)
		assert.True(t, h.IsAlive())
		assert.True(t, h.IsReady())
	}

	// stops reporting: dead once the timeout elapses
	advance(cl, 10)
	assert.False(t, h.IsAlive())
	assert.False(t, h.IsReady())
}

func TestReadyFalseKeepsAlive(t *testing.T) {
	h, cl := newTestHealth()
	defer h.Stop()

	h.Register("foo", 1500*time.Millisecond)
	h.Ready("foo", true)
	advance(cl, 1)
	assert.True(t, h.IsReady())

	h.Ready("foo", false)
	advance(cl, 1)
	assert.True(t, h.IsAlive())
	assert.False(t, h.IsReady())
}

func TestOneUnreadySourceBlocksReadiness(t *testing.T) {
	h, _ := newTestHealth()
	defer h.Stop()

	h.Register("foo", 1500*time.Millisecond)
	h.Register("bar", 1500*time.Millisecond)
	h.Ready("foo", true)
	assert.False(t, h.IsReady())

	h.Ready("bar", true)
	assert.True(t, h.IsReady())
}

func TestUnregister(t *testing.T) {
	h, cl := newTestHealth()
	defer h.Stop()

	h.Register("foo", 1500*time.Millisecond)
	h.Ready("foo", true)
	assert.True(t, h.IsReady())

	h.Unregister("foo")
	assert.False(t, h.IsReady())
	// no longer tracked for liveness, so silence doesn't kill the process
	advance(cl, 10)
	assert.True(t, h.IsAlive())

	// a late report from an unregistered source is ignored, not an error
	h.Ready("foo", true)
	assert.False(t, h.IsReady())
}

func TestReadyForUnknownSourceLogsError(t *testing.T) {
	cl := clockwork.NewFakeClock()
	mock := &logger.MockLogger{}
	h := &Health{
		Clock:  cl,
		Logger: mock,
	}
	h.Start()
	defer h.Stop()

	h.Ready("nope", true)
	assert.Len(t, mock.EventsAt(config.ErrorLevel), 1)
	assert.False(t, h.IsReady())
}

func TestCheckerDrivesReadiness(t *testing.T) {
	h, cl := newTestHealth()
	defer h.Stop()

	var failing atomic.Bool
	h.RegisterChecker("db", 1500*time.Millisecond, func() error {
		if failing.Load() {
			return errors.New("connection refused")
		}
		return nil
	})
	assert.False(t, h.IsReady())

	// a passing check makes the source ready on the next survey
	advance(cl, 1)
	assert.True(t, h.IsAlive())
	assert.True(t, h.IsReady())

	// a failing check flips it to unready but keeps it alive
	failing.Store(true)
	advance(cl, 1)
	assert.True(t, h.IsAlive())
	assert.False(t, h.IsReady())

	// and a recovery brings it back
	failing.Store(false)
	advance(cl, 1)
	assert.True(t, h.IsReady())
}
