package healthcheck

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/angeloszaimis/agent-gateway/internal/engine"
	"github.com/angeloszaimis/agent-gateway/internal/metrics"
)

const pingTimeout = 5 * time.Second

// Monitor tracks the availability of an engine set.
type Monitor struct {
	engines   engine.Set
	interval  time.Duration
	collector *metrics.Collector
	logger    *slog.Logger

	healthy atomic.Bool
}

// NewMonitor returns a monitor that starts out trusting the availability the
// engine set was loaded with.
func NewMonitor(engines engine.Set, interval time.Duration, collector *metrics.Collector, logger *slog.Logger) *Monitor {
	m := &Monitor{
		engines:   engines,
		interval:  interval,
		collector: collector,
		logger:    logger,
	}
	m.healthy.Store(engines.Available)

	collector.Emit(metrics.MetricEvent{
		Type:      metrics.EventHealthChanged,
		Timestamp: time.Now(),
		Healthy:   engines.Available,
	})

	return m
}

// Available reports whether the engines were loaded and answered the last ping.
func (m *Monitor) Available() bool {
	return m.engines.Available && m.healthy.Load()
}

// Check pings the engine set once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	if !m.engines.Available {
		m.set(false)
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := m.engines.Ping(pingCtx)
	if err != nil {
		m.logger.Debug("Engine ping failed", slog.Any("err", err))
	}

	healthy := err == nil
	m.set(healthy)
	return healthy
}

// Run checks the engines every interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Health check stopped")
			return

		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) set(healthy bool) {
	if m.healthy.Swap(healthy) == healthy {
		return
	}

	if healthy {
		m.logger.Info("Engines are back up")
	} else {
		m.logger.Warn("Engines are down")
	}

	m.collector.Emit(metrics.MetricEvent{
		Type:      metrics.EventHealthChanged,
		Timestamp: time.Now(),
		Healthy:   healthy,
	})
}
