package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	if !t.stopped {
		t.fn()
	}
}

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	timer := &fakeTimer{fn: fn}
	c.timers = append(c.timers, timer)
	c.delays = append(c.delays, d)
	return timer
}

const endpoint = "department.tickets.bulk_assign"

func TestHealthMonitorTripsAtThreshold(t *testing.T) {
	clock := &fakeClock{}
	monitor := NewHealthMonitor(10, 5*time.Minute, clock, zap.NewNop())

	for i := 0; i < 9; i++ {
		monitor.RecordError(endpoint)
	}
	assert.False(t, monitor.Disabled(endpoint))
	assert.Equal(t, 9, monitor.ErrorCount(endpoint))

	monitor.RecordError(endpoint)
	assert.True(t, monitor.Disabled(endpoint))
	require.Len(t, clock.delays, 1)
	assert.Equal(t, 5*time.Minute, clock.delays[0])
}

func TestHealthMonitorRecoversAfterWindow(t *testing.T) {
	clock := &fakeClock{}
	monitor := NewHealthMonitor(3, time.Minute, clock, zap.NewNop())

	for i := 0; i < 3; i++ {
		monitor.RecordError(endpoint)
	}
	require.True(t, monitor.Disabled(endpoint))

	// Errors while disabled must not extend the outage or the counter.
	monitor.RecordError(endpoint)
	assert.Equal(t, 3, monitor.ErrorCount(endpoint))
	require.Len(t, clock.timers, 1)

	clock.timers[0].fire()
	assert.False(t, monitor.Disabled(endpoint))
	assert.Equal(t, 0, monitor.ErrorCount(endpoint), "recovery resets the counter")

	// The breaker arms again from a clean slate.
	for i := 0; i < 3; i++ {
		monitor.RecordError(endpoint)
	}
	assert.True(t, monitor.Disabled(endpoint))
}

func TestHealthMonitorResetCancelsTimer(t *testing.T) {
	clock := &fakeClock{}
	monitor := NewHealthMonitor(2, time.Minute, clock, zap.NewNop())

	monitor.RecordError(endpoint)
	monitor.RecordError(endpoint)
	require.True(t, monitor.Disabled(endpoint))

	monitor.Reset(endpoint)
	assert.False(t, monitor.Disabled(endpoint))
	assert.Equal(t, 0, monitor.ErrorCount(endpoint))
	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)
}

func TestHealthMonitorTracksEndpointsIndependently(t *testing.T) {
	clock := &fakeClock{}
	monitor := NewHealthMonitor(2, time.Minute, clock, zap.NewNop())

	monitor.RecordError("a")
	monitor.RecordError("a")
	monitor.RecordError("b")

	assert.True(t, monitor.Disabled("a"))
	assert.False(t, monitor.Disabled("b"))
	assert.Equal(t, 1, monitor.ErrorCount("b"))
}
