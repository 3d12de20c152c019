package goGuard

import (
	"log/slog"
	"time"

	"github.com/MrEthical07/goGuard/password"
	"github.com/MrEthical07/goGuard/token"
)

// Engine defines a public type used by goGuard APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config     Config
	store      CredentialStore
	sessions   SessionBinding
	hasher     *password.Hasher
	tokens     *token.Service
	captchaGen CaptchaGenerator
	audit      *auditDispatcher
	metrics    *Metrics
	logger     *slog.Logger

	// sleep implements the forced authentication delay; swapped in tests.
	sleep func(time.Duration)
}

// Close flushes the audit dispatcher. The engine must not be used after
// Close returns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) log() *slog.Logger {
	if e == nil || e.logger == nil {
		return discardLogger
	}
	return e.logger
}

var discardLogger = slog.New(slog.DiscardHandler)
