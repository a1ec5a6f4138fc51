package health

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hectorgimenez/labbot/internal/utils"
)

// LatencyMonitor tracks sustained slow device responses.
// Every screen capture reports its duration; when captures stay above the
// threshold for longer than the sustained duration the callback fires once.
type LatencyMonitor struct {
	mu           sync.Mutex
	slowStart    time.Time
	triggered    bool
	Threshold    time.Duration
	Sustained    time.Duration
	Enabled      bool
	Logger       *slog.Logger
	OnSlowDevice func()
	now          utils.Clock
}

func NewLatencyMonitor(logger *slog.Logger, threshold, sustained time.Duration) *LatencyMonitor {
	return &LatencyMonitor{
		Threshold: threshold,
		Sustained: sustained,
		Enabled:   true,
		Logger:    logger,
		now:       time.Now,
	}
}

// Observe records one capture latency. It returns true when slow responses
// have been sustained long enough to act on.
func (m *LatencyMonitor) Observe(latency time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Enabled {
		return false
	}
	now := m.now()

	if latency <= m.Threshold {
		if !m.slowStart.IsZero() {
			m.Logger.Info("Device latency returned to normal",
				slog.Duration("latency", latency),
				slog.Duration("slowFor", now.Sub(m.slowStart)))
		}
		m.slowStart = time.Time{}
		m.triggered = false
		return false
	}

	if m.slowStart.IsZero() {
		m.slowStart = now
		m.Logger.Warn("Slow device detected, starting monitor",
			slog.Duration("latency", latency),
			slog.Duration("threshold", m.Threshold),
			slog.Duration("sustained", m.Sustained))
		return false
	}

	elapsed := now.Sub(m.slowStart)
	if elapsed < m.Sustained {
		m.Logger.Debug("Device still slow",
			slog.Duration("latency", latency),
			slog.Duration("remaining", m.Sustained-elapsed))
		return false
	}

	if !m.triggered {
		m.triggered = true
		m.Logger.Error("Sustained slow device detected, triggering action",
			slog.Duration("latency", latency),
			slog.Duration("duration", elapsed))
		if m.OnSlowDevice != nil {
			m.OnSlowDevice()
		}
	}
	return true
}

// Reset clears the slow response tracking state
func (m *LatencyMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slowStart = time.Time{}
	m.triggered = false
}

func (m *LatencyMonitor) SetCallback(callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OnSlowDevice = callback
}
