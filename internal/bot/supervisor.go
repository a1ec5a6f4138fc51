package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/hectorgimenez/labbot/internal/research"
	"github.com/hectorgimenez/labbot/internal/utils"
)

const (
	defaultTick      = 30 * time.Second
	intervalSpreadPc = 0.1
)

// RewardHandler runs one research reward check from the reward page.
type RewardHandler interface {
	HandleResearchReward(ctx context.Context, nav research.Navigator) (bool, error)
}

// Supervisor runs the research reward check every configured interval while
// inside the active hours. Checks can also be requested on demand.
type Supervisor struct {
	name    string
	handler RewardHandler
	nav     research.Navigator
	logger  *slog.Logger
	now     utils.Clock
	tick    time.Duration

	mu       sync.RWMutex
	interval time.Duration
	window   activeWindow
	paused   bool
	stats    Stats

	trigger  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

type SupervisorOption func(*Supervisor)

func WithClock(now utils.Clock) SupervisorOption {
	return func(s *Supervisor) {
		s.now = now
	}
}

// WithTick changes how often the supervisor wakes up to look at the schedule.
func WithTick(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.tick = d
	}
}

func NewSupervisor(name string, handler RewardHandler, nav research.Navigator, logger *slog.Logger, cfg config.ResearchCfg, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		name:    name,
		handler: handler,
		nav:     nav,
		logger:  logger,
		now:     time.Now,
		tick:    defaultTick,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stats:   Stats{SupervisorStatus: NotStarted},
	}
	s.ApplyConfig(cfg)
	for _, o := range opts {
		o(s)
	}

	return s
}

// ApplyConfig updates the check interval and active hours. The next check keeps
// its current schedule.
func (s *Supervisor) ApplyConfig(cfg config.ResearchCfg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute
	if s.interval <= 0 {
		s.interval = 30 * time.Minute
	}
	s.window = activeWindow{from: cfg.ActiveFrom, to: cfg.ActiveTo}
}

func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	s.stats.StartedAt = s.now()
	s.stats.NextCheck = s.stats.StartedAt
	s.stats.SupervisorStatus = Idle
	if s.paused {
		s.stats.SupervisorStatus = Paused
	}
	window := s.window
	s.mu.Unlock()

	s.logger.Info("Supervisor started", slog.String("supervisor", s.name), slog.String("window", window.String()))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer s.setStatus(NotStarted)

	// First check right away, the game may have been idle for hours.
	s.check(ctx, false)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Supervisor stopped", slog.String("supervisor", s.name))
			return nil
		case <-s.stop:
			s.logger.Info("Supervisor stopped", slog.String("supervisor", s.name))
			return nil
		case <-s.trigger:
			s.check(ctx, true)
		case <-ticker.C:
			s.check(ctx, false)
		}
	}
}

func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// TriggerNow asks for a check as soon as possible, ignoring pause, schedule
// and interval. Requests made while one is queued are merged.
func (s *Supervisor) TriggerNow() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Supervisor) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.logger.Info("Supervisor paused", slog.String("supervisor", s.name))
		event.Send(event.SupervisorPaused(event.Text(s.name, "Research checks paused"), true))
	}
	s.paused = true
	if s.stats.SupervisorStatus != NotStarted && s.stats.SupervisorStatus != Checking {
		s.stats.SupervisorStatus = Paused
	}
}

func (s *Supervisor) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.logger.Info("Supervisor resumed", slog.String("supervisor", s.name))
		event.Send(event.SupervisorPaused(event.Text(s.name, "Research checks resumed"), false))
	}
	s.paused = false
	if s.stats.SupervisorStatus == Paused {
		s.stats.SupervisorStatus = Idle
	}
}

func (s *Supervisor) Name() string {
	return s.name
}

func (s *Supervisor) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Supervisor) check(ctx context.Context, forced bool) {
	now := s.now()

	s.mu.Lock()
	switch {
	case forced:
	case s.paused:
		s.mu.Unlock()
		return
	case now.Before(s.stats.NextCheck):
		s.mu.Unlock()
		return
	case !s.window.contains(now):
		s.stats.SupervisorStatus = OutsideSchedule
		s.mu.Unlock()
		return
	}
	s.stats.SupervisorStatus = Checking
	interval := s.interval
	s.mu.Unlock()

	s.logger.Info("Checking research rewards", slog.String("supervisor", s.name), slog.Bool("manual", forced))
	handled, err := s.runCheck(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LastCheck = now
	s.stats.Checks++
	s.stats.NextCheck = now.Add(s.nextInterval(interval))
	s.stats.SupervisorStatus = Idle
	if s.paused {
		s.stats.SupervisorStatus = Paused
	}
	if handled {
		s.stats.Rewards++
	}

	switch {
	case err == nil:
		s.stats.LastError = ""
	case errors.Is(err, context.Canceled):
	default:
		s.stats.LastError = err.Error()
		s.logger.Error("Research reward check failed", slog.String("supervisor", s.name), slog.Any("error", err))
		event.Send(event.CheckFailed(event.Text(s.name, "Research reward check failed"), err))
	}
	s.logger.Info("Next research check", slog.String("supervisor", s.name), slog.Time("at", s.stats.NextCheck))
}

// runCheck calls the handler, turning a panic into an error so one bad frame
// does not take the supervisor down.
func (s *Supervisor) runCheck(ctx context.Context) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during research check: %v", r)
		}
	}()
	return s.handler.HandleResearchReward(ctx, s.nav)
}

// nextInterval spreads checks around the configured interval.
func (s *Supervisor) nextInterval(interval time.Duration) time.Duration {
	mean := float64(interval.Milliseconds())
	return time.Duration(utils.RandLogNormal(mean, mean*intervalSpreadPc)) * time.Millisecond
}

func (s *Supervisor) setStatus(status SupervisorStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.SupervisorStatus = status
}
