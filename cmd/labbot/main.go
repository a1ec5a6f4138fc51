package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sloggger "github.com/hectorgimenez/labbot/cmd/labbot/log"
	"github.com/hectorgimenez/labbot/internal/bot"
	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/hectorgimenez/labbot/internal/game"
	"github.com/hectorgimenez/labbot/internal/health"
	"github.com/hectorgimenez/labbot/internal/remote/discord"
	"github.com/hectorgimenez/labbot/internal/remote/history"
	"github.com/hectorgimenez/labbot/internal/remote/telegram"
	"github.com/hectorgimenez/labbot/internal/research"
)

var (
	buildID   string
	buildTime string

	configDir string
)

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace)
				logger.Error(errMsg)
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "labbot",
		Short: "Collects research rewards and restarts research projects",
		Long: `labbot drives an Android emulator over ADB. It watches the reward page,
collects finished research projects and starts new ones following the
configured priority.`,
		SilenceUsage: true,
		Version:      fmt.Sprintf("%s (%s)", buildID, buildTime),
		RunE:         runBot,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "config", "Path to the configuration directory")

	rootCmd.AddCommand(
		&cobra.Command{Use: "run", Short: "Start the research supervisor (default)", RunE: runBot},
		rewardCmd(), scanCmd(), historyCmd(), initCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// labBot holds everything a research check needs.
type labBot struct {
	cfg        config.LabCfg
	screen     *game.Screen
	selector   *research.ProjectSelector
	controller *research.Controller
	monitor    *health.LatencyMonitor
}

func newLabBot(logger *slog.Logger, cfg config.LabCfg) (*labBot, error) {
	reader, err := research.NewCardReader(cfg.Research.Projects)
	if err != nil {
		return nil, err
	}
	priority, err := research.ParsePriority(cfg.Research.Priority)
	if err != nil {
		return nil, fmt.Errorf("invalid research priority: %w", err)
	}

	monitor := health.NewLatencyMonitor(logger,
		time.Duration(cfg.Device.SlowCaptureMs)*time.Millisecond,
		time.Duration(cfg.Device.SlowCaptureSeconds)*time.Second)
	device := game.NewDevice(cfg.Device)
	screen := game.NewScreen(device, logger, cfg, game.WithLatencyMonitor(monitor))
	selector := research.NewProjectSelector(reader, priority, logger)
	controller := research.NewController(cfg.Name, screen, selector, logger, research.OptionsFromConfig(cfg.Research))

	return &labBot{
		cfg:        cfg,
		screen:     screen,
		selector:   selector,
		controller: controller,
		monitor:    monitor,
	}, nil
}

// setup loads the config and starts the logger. The returned close function
// flushes the log file.
func setup(name string) (config.LabCfg, *slog.Logger, func(), error) {
	if err := config.Load(configDir); err != nil {
		return config.LabCfg{}, nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}
	cfg := config.Get()

	logger, err := sloggger.NewLogger(cfg.Debug.Log, cfg.LogSaveDirectory, name)
	if err != nil {
		return config.LabCfg{}, nil, nil, fmt.Errorf("error starting logger: %w", err)
	}

	return cfg, logger, sloggger.FlushAndClose, nil
}

func runBot(cmd *cobra.Command, _ []string) (err error) {
	cfg, logger, closeLog, err := setup("")
	if err != nil {
		return err
	}
	defer closeLog()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal error detected, labbot will close with the following error: %v\n Stacktrace: %s", r, debug.Stack())
			logger.Error(err.Error())
			sloggger.FlushAndClose()
		}
	}()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	lab, err := newLabBot(logger, cfg)
	if err != nil {
		return err
	}
	supervisor := bot.NewSupervisor(cfg.Name, lab.controller, lab.screen, logger, cfg.Research)
	lab.monitor.SetCallback(func() {
		logger.Warn("Emulator is too slow, pausing research checks")
		supervisor.Pause()
	})

	eventListener := event.NewListener(logger)

	if cfg.History.Enabled {
		recorder, err := history.NewRecorder(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("error opening research history: %w", err)
		}
		defer recorder.Close()
		eventListener.Register(recorder.Handle)
	}

	// Discord Bot initialization
	if cfg.Discord.Enabled {
		discordBot, err := discord.NewBot(cfg.Discord, supervisor)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
			return err
		}

		eventListener.Register(discordBot.Handle)
		if !cfg.Discord.UseWebhook {
			g.Go(wrapWithRecover(logger, func() error {
				return discordBot.Start(ctx)
			}))
		}
	}

	// Telegram Bot initialization
	if cfg.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(ctx, cfg.Telegram, supervisor, logger)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
			return err
		}

		eventListener.Register(telegramBot.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return telegramBot.Start(ctx)
		}))
	}

	g.Go(wrapWithRecover(logger, func() error {
		return config.Watch(ctx, logger, func(newCfg config.LabCfg) {
			priority, err := research.ParsePriority(newCfg.Research.Priority)
			if err != nil {
				logger.Warn("Ignoring invalid research priority", slog.Any("error", err))
			} else {
				lab.selector.SetFilter(priority)
			}
			supervisor.ApplyConfig(newCfg.Research)
		})
	}))

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return supervisor.Start(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return eventListener.Listen(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		<-ctx.Done()
		logger.Info("labbot shutting down...")
		supervisor.Stop()
		return nil
	}))

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Error running labbot", slog.Any("error", err))
		return err
	}

	return nil
}
