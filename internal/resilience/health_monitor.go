package resilience

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer is a cancellable deferred task handle.
type Timer interface {
	Stop() bool
}

// Clock abstracts timer scheduling so tests can drive virtual time instead
// of sleeping through the recovery window.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

type endpointRecord struct {
	errorCount int
	disabled   bool
	timer      Timer
}

// HealthMonitor tracks per-endpoint error counts and circuit-breaks an
// endpoint once errors reach the threshold. Disabled endpoints re-enable
// unconditionally after the recovery window; the counter resets with them.
// State is process-local and lost on restart.
type HealthMonitor struct {
	mu        sync.Mutex
	threshold int
	recovery  time.Duration
	clock     Clock
	logger    *zap.Logger
	records   map[string]*endpointRecord
}

// NewHealthMonitor constructs a monitor. threshold <= 0 defaults to 10,
// recovery <= 0 to 5 minutes.
func NewHealthMonitor(threshold int, recovery time.Duration, clock Clock, logger *zap.Logger) *HealthMonitor {
	if threshold <= 0 {
		threshold = 10
	}
	if recovery <= 0 {
		recovery = 5 * time.Minute
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &HealthMonitor{
		threshold: threshold,
		recovery:  recovery,
		clock:     clock,
		logger:    logger,
		records:   make(map[string]*endpointRecord),
	}
}

// RecordError increments the endpoint's error counter and trips the breaker
// at the threshold.
func (m *HealthMonitor) RecordError(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.records[endpoint]
	if record == nil {
		record = &endpointRecord{}
		m.records[endpoint] = record
	}
	if record.disabled {
		return
	}
	record.errorCount++
	if record.errorCount < m.threshold {
		return
	}

	record.disabled = true
	record.timer = m.clock.AfterFunc(m.recovery, func() {
		m.enable(endpoint)
	})
	m.logger.Warn("endpoint disabled after repeated errors",
		zap.String("endpoint", endpoint),
		zap.Int("error_count", record.errorCount),
		zap.Duration("recovery_window", m.recovery),
	)
}

// Disabled reports whether the endpoint is currently circuit-broken.
func (m *HealthMonitor) Disabled(endpoint string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.records[endpoint]
	return record != nil && record.disabled
}

// ErrorCount returns the endpoint's current error counter.
func (m *HealthMonitor) ErrorCount(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.records[endpoint]
	if record == nil {
		return 0
	}
	return record.errorCount
}

// Reset re-enables the endpoint immediately and cancels any pending
// recovery timer.
func (m *HealthMonitor) Reset(endpoint string) {
	m.mu.Lock()
	record := m.records[endpoint]
	if record != nil && record.timer != nil {
		record.timer.Stop()
	}
	m.mu.Unlock()
	m.enable(endpoint)
}

func (m *HealthMonitor) enable(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.records[endpoint]
	if record == nil {
		return
	}
	record.disabled = false
	record.errorCount = 0
	record.timer = nil
	m.logger.Info("endpoint re-enabled", zap.String("endpoint", endpoint))
}
