package research

import (
	"context"
	"image"
	"log/slog"

	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/hectorgimenez/labbot/internal/ui"
)

// AttemptReset refreshes the project list if the reset button is on the
// current frame. It returns true only when a reset was carried out, in which
// case the caller must detect projects again.
func (c *Controller) AttemptReset(ctx context.Context, cycle *Cycle) (bool, error) {
	if !c.screen.Appear(ui.ResetAvailable, image.Point{}) {
		c.logger.Info("Research reset unavailable")
		return false, nil
	}

	c.logger.Info("Research reset")
	if c.opts.SaveGetItems {
		c.saveScreenshot(bucketProject)
	}

	p := c.newPoll(true)
	executed := false
	for {
		if err := p.capture(ctx); err != nil {
			return false, err
		}

		clicked, err := p.appearThenClick(ctx, ui.ResetAvailable, c.opts.ClickInterval)
		if err != nil {
			return false, err
		}
		if clicked {
			continue
		}
		confirmed, err := c.screen.ConfirmPopup(ctx, popupResearchReset)
		if err != nil {
			return false, err
		}
		if confirmed {
			executed = true
			continue
		}

		// End
		if executed && c.inResearch() {
			if err = c.screen.EnsureNoInfoBar(ctx, infoBarTimeout); err != nil {
				return false, err
			}
			if err = c.ensureResearchStable(ctx); err != nil {
				return false, err
			}
			break
		}
	}

	event.Send(event.ResearchReset(event.Text(c.name, "Research projects reset"), cycle.ID))
	return true, nil
}

func (c *Controller) saveScreenshot(bucket string) {
	if err := c.screen.SaveScreenshot(bucket); err != nil {
		c.logger.Warn("Failed to save screenshot", slog.String("bucket", bucket), slog.Any("error", err))
	}
}
