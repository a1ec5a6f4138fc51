package research

import (
	"context"
	"log/slog"
	"time"

	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/utils"
)

// StrategyResultPolicy decides what Select returns after expanding a symbolic
// strategy such as "shortest".
type StrategyResultPolicy int

const (
	// StrategyResultIgnore returns true whatever the expanded list did.
	StrategyResultIgnore StrategyResultPolicy = iota
	// StrategyResultPropagate returns the result of the expanded list.
	StrategyResultPropagate
)

const (
	defaultClickInterval     = 10 * time.Second
	getItemsInterval         = 5 * time.Second
	infoBarTimeout           = 3 * time.Second
	defaultMaxSelectAttempts = 2
)

var markerOffset = offset(20, 20)

type Options struct {
	Enabled           bool
	ClickInterval     time.Duration
	MaxSelectAttempts int
	SaveGetItems      bool
	StrategyResult    StrategyResultPolicy
}

func OptionsFromConfig(cfg config.ResearchCfg) Options {
	o := Options{
		Enabled:           cfg.Enabled,
		ClickInterval:     time.Duration(cfg.ClickIntervalSeconds) * time.Second,
		MaxSelectAttempts: cfg.MaxSelectAttempts,
		SaveGetItems:      cfg.SaveGetItems,
	}
	if cfg.PropagateStrategyResult {
		o.StrategyResult = StrategyResultPropagate
	}
	return o
}

type Controller struct {
	name     string
	screen   Screen
	selector Selector
	logger   *slog.Logger
	opts     Options
	now      utils.Clock
	sleep    func(ctx context.Context, d time.Duration) error
}

type Option func(*Controller)

// WithClock replaces the wall clock used by debounce timers.
func WithClock(now utils.Clock) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithSleep replaces the function used for fixed settle delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) {
		c.sleep = sleep
	}
}

func NewController(name string, screen Screen, selector Selector, logger *slog.Logger, opts Options, options ...Option) *Controller {
	if opts.ClickInterval <= 0 {
		opts.ClickInterval = defaultClickInterval
	}
	if opts.MaxSelectAttempts <= 0 {
		opts.MaxSelectAttempts = defaultMaxSelectAttempts
	}

	c := &Controller{
		name:     name,
		screen:   screen,
		selector: selector,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		sleep:    utils.SleepContext,
	}
	for _, o := range options {
		o(c)
	}

	return c
}

func (c *Controller) ensureResearchStable(ctx context.Context) error {
	return c.screen.WaitUntilStable(ctx, ui.StableChecker)
}

func (c *Controller) inResearch() bool {
	return c.screen.Appear(ui.ResearchCheck, markerOffset)
}
