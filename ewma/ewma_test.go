package ewma

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadInterval(t *testing.T) {
	_, err := New(0.5, 0)
	assert.Error(t, err)
	_, err = New(0.5, -time.Second)
	assert.Error(t, err)
	_, err = New(0.5, time.Second)
	assert.NoError(t, err)
}

func TestCanonicalAlphas(t *testing.T) {
	tests := []struct {
		name  string
		e     *EWMA
		alpha float64
	}{
		{"one minute", NewOneMinute(), 1 - math.Exp(-5.0/60.0)},
		{"five minute", NewFiveMinute(), 1 - math.Exp(-5.0/60.0/5)},
		{"fifteen minute", NewFifteenMinute(), 1 - math.Exp(-5.0/60.0/15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.alpha, tt.e.alpha, 1e-15)
		})
	}
}

func TestColdStartRateIsZero(t *testing.T) {
	e := NewOneMinute()
	e.Update(1000)
	assert.Equal(t, 0.0, e.Rate(time.Second))
}

func TestFirstTickSetsInstantRate(t *testing.T) {
	e := NewOneMinute()
	e.Update(15)
	e.Tick()
	// 15 events over a 5s interval is 3/s
	assert.InDelta(t, 3.0, e.Rate(time.Second), 1e-9)
}

// This is the classic one-minute load average table: 10 marks, then ticks
// with no further traffic decay the rate by (1-alpha) each step.
func TestOneMinuteDecay(t *testing.T) {
	e := NewOneMinute()
	e.Update(10)
	e.Tick()
	require.InDelta(t, 2.0, e.Rate(time.Second), 1e-9)

	expected := 2.0
	for i := 0; i < 10; i++ {
		e.Tick()
		expected *= 1 - e.alpha
		assert.InDelta(t, expected, e.Rate(time.Second), 1e-9)
	}
}

func TestDecayTowardZero(t *testing.T) {
	e := NewFiveMinute()
	e.Update(1000)
	e.Tick()
	for i := 0; i < 5000; i++ {
		e.Tick()
	}
	assert.InDelta(t, 0.0, e.Rate(time.Second), 1e-9)
}

func TestTickCounted(t *testing.T) {
	e := NewOneMinute()
	e.Update(5)
	e.TickCounted(10)
	// 15 total events over 5s
	assert.InDelta(t, 3.0, e.Rate(time.Second), 1e-9)
}

func TestRateUnits(t *testing.T) {
	e := NewOneMinute()
	e.Update(5)
	e.Tick()
	perSecond := e.Rate(time.Second)
	assert.InDelta(t, 1.0, perSecond, 1e-9)
	assert.InDelta(t, 60*perSecond, e.Rate(time.Minute), 1e-9)
	assert.InDelta(t, perSecond/1e9, e.Rate(time.Nanosecond), 1e-18)
}

func TestReset(t *testing.T) {
	e := NewOneMinute()
	e.Update(100)
	e.Tick()
	require.NotZero(t, e.Rate(time.Second))

	e.Reset()
	assert.Equal(t, 0.0, e.Rate(time.Second))

	// back to cold-start semantics: the next tick sets the instant rate
	e.Update(15)
	e.Tick()
	assert.InDelta(t, 3.0, e.Rate(time.Second), 1e-9)
}

func TestConcurrentUpdates(t *testing.T) {
	e := NewOneMinute()
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				e.Update(1)
			}
		}()
	}
	wg.Wait()
	e.Tick()
	// 16000 events over 5s
	assert.InDelta(t, 3200.0, e.Rate(time.Second), 1e-6)
}
