package research

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/hectorgimenez/labbot/internal/ui"
)

var itemsSwipeVector = image.Pt(0, 250)

// Receive claims the reward of the project at cycle.FinishedIndex and returns
// once the research page is back and stable. The finished project is assumed
// to sit at its unscrolled position, so the offset is not applied.
func (c *Controller) Receive(ctx context.Context, cycle *Cycle) error {
	c.logger.Info("Research receive", slog.Int("slot", cycle.FinishedIndex))

	p := c.newPoll(true)
	executed := false
	for {
		if err := p.capture(ctx); err != nil {
			return err
		}

		// End
		if executed && c.inResearch() {
			if err := c.ensureResearchStable(ctx); err != nil {
				return err
			}
			break
		}

		if p.appear(ui.ResearchCheck, image.Point{}, c.opts.ClickInterval) {
			if c.opts.SaveGetItems {
				c.saveScreenshot(bucketProject)
			}
			if err := c.screen.Click(ctx, ui.ResearchEntrance[cycle.FinishedIndex]); err != nil {
				return err
			}
			continue
		}

		claimed, err := c.claimItems(ctx, p)
		if err != nil {
			return err
		}
		if claimed {
			executed = true
			continue
		}
	}

	event.Send(event.ResearchReceived(event.WithScreenshot(c.name, "Research reward received", c.screen.Image()), cycle.ID, cycle.FinishedIndex))
	return nil
}

// claimItems taps away whichever reward popup is on screen.
func (c *Controller) claimItems(ctx context.Context, p *poll) (bool, error) {
	for i, btn := range getItems {
		if !p.appear(btn, image.Point{}, getItemsInterval) {
			continue
		}
		if c.opts.SaveGetItems {
			if err := c.saveItems(ctx, i); err != nil {
				return false, err
			}
		}
		return true, c.screen.Click(ctx, ui.GetItemsResearchSave)
	}
	return false, nil
}

// saveItems records the reward popup. The third popup shape has a scrolling
// item list, its lower half is saved after a swipe.
func (c *Controller) saveItems(ctx context.Context, shape int) error {
	if err := c.settle(ctx, getItemsSettle[shape]); err != nil {
		return err
	}
	c.saveScreenshot(bucketItems)

	if shape != 2 {
		return nil
	}
	if err := c.screen.Swipe(ctx, ui.Items3Swipe.Area, itemsSwipeVector); err != nil {
		return err
	}
	if err := c.settle(ctx, 2*time.Second); err != nil {
		return err
	}
	c.saveScreenshot(bucketItems)
	return nil
}

// settle sleeps then refreshes the frame.
func (c *Controller) settle(ctx context.Context, d time.Duration) error {
	if err := c.sleep(ctx, d); err != nil {
		return err
	}
	return c.screen.Capture(ctx)
}
