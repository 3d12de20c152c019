package goGuard

import "sync/atomic"

// MetricID defines a public type used by goGuard APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the guard engine.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the guard engine.
	MetricLoginFailure
	// MetricSessionLogin is an exported constant or variable used by the guard engine.
	MetricSessionLogin
	// MetricSessionLogout is an exported constant or variable used by the guard engine.
	MetricSessionLogout
	// MetricUserCreated is an exported constant or variable used by the guard engine.
	MetricUserCreated
	// MetricPasswordChange is an exported constant or variable used by the guard engine.
	MetricPasswordChange
	// MetricResetTokenIssued is an exported constant or variable used by the guard engine.
	MetricResetTokenIssued
	// MetricResetTokenDenied is an exported constant or variable used by the guard engine.
	MetricResetTokenDenied
	// MetricResetConfirm is an exported constant or variable used by the guard engine.
	MetricResetConfirm
	// MetricGuardAllowed is an exported constant or variable used by the guard engine.
	MetricGuardAllowed
	// MetricGuardDenied is an exported constant or variable used by the guard engine.
	MetricGuardDenied
	// MetricCaptchaIssued is an exported constant or variable used by the guard engine.
	MetricCaptchaIssued
	// MetricCaptchaFailure is an exported constant or variable used by the guard engine.
	MetricCaptchaFailure

	metricIDCount
)

type paddedCounter struct {
	value uint64
	_     [7]uint64 // avoid false sharing between adjacent counters
}

// Metrics holds atomic counters for engine activity. When disabled, all
// operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments a counter. Safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return s
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
