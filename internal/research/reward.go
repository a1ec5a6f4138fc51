package research

import (
	"context"
	"image"
	"log/slog"

	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/hectorgimenez/labbot/internal/ui"
)

// Reward claims a finished project, if any, then starts a new one. The
// research page must be open and stable.
func (c *Controller) Reward(ctx context.Context) error {
	cycle := NewCycle()
	c.logger.Info("Research start", slog.String("cycle", cycle.ID.String()))

	finished := -1
	if c.hasFinished(cycle) {
		if err := c.Receive(ctx, cycle); err != nil {
			return err
		}
		finished = cycle.FinishedIndex
	} else {
		c.logger.Info("No research has finished")
	}

	attempts := 0
	for attempts < c.opts.MaxSelectAttempts {
		attempts++
		// Detection assumes an unscrolled carousel.
		cycle.Carousel.Reset()
		c.selector.Detect(c.screen.Image())
		priority := c.selector.SortFilter()
		c.logger.Info("Research priority", slog.Int("attempt", attempts), slog.String("priority", priority.String()))

		done, err := c.Select(ctx, cycle, priority)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	event.Send(event.ResearchCycleFinished(event.Text(c.name, "Research cycle finished"), cycle.ID, attempts, finished))
	return nil
}

// HandleResearchReward is the entry point from the reward page. It returns
// false when research rewards are disabled or nothing is finished or pending.
func (c *Controller) HandleResearchReward(ctx context.Context, nav Navigator) (bool, error) {
	if !c.opts.Enabled {
		return false, nil
	}
	if err := c.screen.Capture(ctx); err != nil {
		return false, err
	}
	if !c.screen.Appear(ui.ResearchFinished, image.Point{}) && !c.screen.Appear(ui.ResearchPending, image.Point{}) {
		c.logger.Info("No research finished or pending")
		return false, nil
	}

	if err := nav.GotoResearch(ctx); err != nil {
		return false, err
	}
	if err := c.ensureResearchStable(ctx); err != nil {
		return false, err
	}

	return true, c.Reward(ctx)
}
