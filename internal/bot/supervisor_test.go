package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/research"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeHandler struct {
	calls   chan struct{}
	handled bool
	err     error
	panics  bool
}

func (h *fakeHandler) HandleResearchReward(context.Context, research.Navigator) (bool, error) {
	h.calls <- struct{}{}
	if h.panics {
		panic("frame out of bounds")
	}
	return h.handled, h.err
}

type noopNavigator struct{}

func (noopNavigator) GotoResearch(context.Context) error { return nil }

func newTestSupervisor(h *fakeHandler, clock *testClock, cfg config.ResearchCfg) *Supervisor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSupervisor("lab-1", h, noopNavigator{}, logger, cfg, WithClock(clock.now), WithTick(time.Millisecond))
}

func newClock(hour int) *testClock {
	return &testClock{t: time.Date(2024, 5, 1, hour, 0, 0, 0, time.Local)}
}

// run starts s in the background and returns a function stopping it.
func run(t *testing.T, s *Supervisor) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("supervisor did not stop")
		}
	}
}

func waitCall(t *testing.T, h *fakeHandler) {
	t.Helper()
	select {
	case <-h.calls:
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}
}

func assertNoCall(t *testing.T, h *fakeHandler) {
	t.Helper()
	select {
	case <-h.calls:
		t.Fatal("unexpected handler call")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSupervisorChecksOnStartAndInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := newClock(12)
	h := &fakeHandler{calls: make(chan struct{}, 10), handled: true}
	s := newTestSupervisor(h, clock, config.ResearchCfg{CheckIntervalMinutes: 30})
	stop := run(t, s)

	waitCall(t, h)
	assertNoCall(t, h)

	clock.advance(2 * time.Hour)
	waitCall(t, h)
	stop()

	stats := s.Stats()
	assert.Equal(t, 2, stats.Checks)
	assert.Equal(t, 2, stats.Rewards)
	assert.Equal(t, NotStarted, stats.SupervisorStatus)
	assert.True(t, stats.NextCheck.After(stats.LastCheck))
}

func TestSupervisorPauseAndTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := newClock(12)
	h := &fakeHandler{calls: make(chan struct{}, 10)}
	s := newTestSupervisor(h, clock, config.ResearchCfg{})
	s.Pause()
	stop := run(t, s)
	defer stop()

	assertNoCall(t, h)

	s.TriggerNow()
	waitCall(t, h)
	assert.Eventually(t, func() bool { return s.Stats().Checks == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, Paused, s.Stats().SupervisorStatus)

	s.Resume()
	assert.Equal(t, Idle, s.Stats().SupervisorStatus)
}

func TestSupervisorOutsideSchedule(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := newClock(12)
	h := &fakeHandler{calls: make(chan struct{}, 10)}
	s := newTestSupervisor(h, clock, config.ResearchCfg{ActiveFrom: "22:00", ActiveTo: "06:00"})
	stop := run(t, s)
	defer stop()

	assertNoCall(t, h)
	assert.Equal(t, OutsideSchedule, s.Stats().SupervisorStatus)

	clock.advance(11 * time.Hour)
	waitCall(t, h)
}

func TestSupervisorRecordsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name    string
		handler *fakeHandler
		want    string
	}{
		{name: "error", handler: &fakeHandler{err: errors.New("adb: device offline")}, want: "adb: device offline"},
		{name: "panic", handler: &fakeHandler{panics: true}, want: "panic during research check"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.handler.calls = make(chan struct{}, 10)
			s := newTestSupervisor(tt.handler, newClock(12), config.ResearchCfg{})
			stop := run(t, s)

			waitCall(t, tt.handler)
			assert.Eventually(t, func() bool { return s.Stats().Checks == 1 }, time.Second, time.Millisecond)
			stop()

			assert.Contains(t, s.Stats().LastError, tt.want)
			assert.Zero(t, s.Stats().Rewards)
		})
	}
}

func TestSupervisorStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := &fakeHandler{calls: make(chan struct{}, 10)}
	s := newTestSupervisor(h, newClock(12), config.ResearchCfg{})
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	waitCall(t, h)

	s.Stop()
	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestActiveWindow(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2024, 5, 1, h, m, 0, 0, time.Local) }
	tests := []struct {
		name   string
		window activeWindow
		now    time.Time
		want   bool
	}{
		{"unset", activeWindow{}, at(3, 0), true},
		{"inside day window", activeWindow{"08:00", "20:00"}, at(12, 0), true},
		{"window end is exclusive", activeWindow{"08:00", "20:00"}, at(20, 0), false},
		{"overnight late", activeWindow{"22:00", "06:00"}, at(23, 30), true},
		{"overnight early", activeWindow{"22:00", "06:00"}, at(5, 59), true},
		{"overnight midday", activeWindow{"22:00", "06:00"}, at(12, 0), false},
		{"unparsable is always active", activeWindow{"x", "y"}, at(12, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.window.contains(tt.now))
		})
	}
}
