package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/remote/history"
	"github.com/hectorgimenez/labbot/internal/research"
	"github.com/hectorgimenez/labbot/internal/ui"
)

func rewardCmd() *cobra.Command {
	var fromRewardPage bool

	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Run one research reward cycle on the open research page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := setup("reward")
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			lab, err := newLabBot(logger, cfg)
			if err != nil {
				return err
			}
			if !fromRewardPage {
				if err = lab.screen.WaitUntilStable(ctx, ui.StableChecker); err != nil {
					return err
				}
				if err = lab.controller.Reward(ctx); err != nil {
					color.Red("Research cycle failed: %v", err)
					return err
				}
				color.Green("Research cycle finished")
				return nil
			}

			handled, err := lab.controller.HandleResearchReward(ctx, lab.screen)
			if err != nil {
				color.Red("Research check failed: %v", err)
				return err
			}
			if handled {
				color.Green("Research rewards handled")
			} else {
				color.Yellow("Nothing to do on the research page")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromRewardPage, "from-reward-page", false, "Start from the reward page and navigate to research when needed")

	return cmd
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Capture the research page and print slot lamps and card fingerprints",
		Long: `scan reads the current frame without touching the game. Run it with the
research page open and the carousel at its first position to collect the
fingerprints for the projects catalog.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := setup("scan")
			if err != nil {
				return err
			}
			defer closeLog()

			lab, err := newLabBot(logger, cfg)
			if err != nil {
				return err
			}
			if err = lab.screen.Capture(cmd.Context()); err != nil {
				return fmt.Errorf("error capturing the screen: %w", err)
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			titleColor.Println("Status lamps")
			lamps := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Slot", "Color", "Status"}),
			)
			for _, r := range research.ReadStatuses(lab.screen) {
				_ = lamps.Append([]string{
					fmt.Sprint(r.Slot),
					fmt.Sprintf("(%d,%d,%d)", r.Color.R, r.Color.G, r.Color.B),
					r.Status.String(),
				})
			}
			_ = lamps.Render()

			reader, err := research.NewCardReader(cfg.Research.Projects)
			if err != nil {
				return err
			}
			fmt.Println()
			titleColor.Println("Carousel cards")
			cards := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Slot", "Available", "Fingerprint", "Name", "Duration", "Cost"}),
			)
			for _, p := range reader.ReadProjects(lab.screen.Image()) {
				name, duration, cost := "-", "-", "-"
				if p.Known {
					name = p.Name
					duration = p.Duration.String()
					cost = fmt.Sprint(p.Cost)
				}
				_ = cards.Append([]string{
					fmt.Sprint(p.Slot),
					fmt.Sprint(p.Available),
					research.FormatFingerprint(p.Fingerprint),
					name,
					duration,
					cost,
				})
			}
			_ = cards.Render()

			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent research events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(configDir); err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			cfg := config.Get()
			if !cfg.History.Enabled {
				return fmt.Errorf("research history is disabled in %s", config.FileName)
			}

			recorder, err := history.NewRecorder(cfg.History.Path)
			if err != nil {
				return err
			}
			defer recorder.Close()

			entries, err := recorder.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Time", "Supervisor", "Event", "Slot", "Attempts", "Message"}),
			)
			for _, e := range entries {
				_ = table.Append([]string{
					e.OccurredAt.Format("2006-01-02 15:04:05"),
					e.Supervisor,
					e.Kind,
					optional(e.Slot),
					optional(e.Attempts),
					e.Message,
				})
			}
			_ = table.Render()

			counts, err := recorder.CountSince(cmd.Context(), time.Now().Add(-since))
			if err != nil {
				return err
			}
			infoColor := color.New(color.FgYellow)
			infoColor.Printf("Last %s: %d received, %d started, %d failed checks\n",
				since, counts[history.KindReceived], counts[history.KindStarted], counts[history.KindCheckFailed])

			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to list")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Window for the summary counts")

	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <name>",
		Short: "Create a new configuration folder from the template",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			target, err := config.CreateFromTemplate(configDir, args[0])
			if err != nil {
				return err
			}
			color.Green("Configuration created in %s", target)
			fmt.Printf("Edit %s and start the bot with: labbot --config %s\n", config.FileName, target)
			return nil
		},
	}
}

func optional(v int) string {
	if v < 0 {
		return "-"
	}
	return fmt.Sprint(v)
}
