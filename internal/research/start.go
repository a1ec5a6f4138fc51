package research

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/hectorgimenez/labbot/internal/ui"
)

// StartProject selects the project at logical slot index and starts it. It
// returns false when the game reports there are not enough resources.
func (c *Controller) StartProject(ctx context.Context, cycle *Cycle, index int) (bool, error) {
	c.logger.Info("Research project", slog.Int("index", index))

	p := c.newPoll(true)
	clickTimer := p.timer(c.opts.ClickInterval)
	for {
		if err := p.capture(ctx); err != nil {
			return false, err
		}

		// The timer keeps us from tapping again while the carousel is still scrolling.
		if clickTimer.Reached() && c.screen.Appear(ui.ResearchCheck, markerOffset) {
			pos := cycle.Carousel.ScreenPosition(index)
			c.logger.Info("Project offset",
				slog.Int("offset", cycle.Carousel.Offset()),
				slog.Int("index", index),
				slog.Int("position", pos))
			if err := c.screen.Click(ctx, ui.ResearchEntrance[pos]); err != nil {
				return false, err
			}
			cycle.Carousel.RecordSelection(index)
			if err := c.ensureResearchStable(ctx); err != nil {
				return false, err
			}
			clickTimer.Reset()
			continue
		}
		clicked, err := p.appearThenClick(ctx, ui.ResearchStart, c.opts.ClickInterval)
		if err != nil {
			return false, err
		}
		if clicked {
			continue
		}
		confirmed, err := c.screen.ConfirmPopup(ctx, popupResearchStart)
		if err != nil {
			return false, err
		}
		if confirmed {
			continue
		}

		// End
		if c.screen.Appear(ui.ResearchStop, image.Point{}) {
			if err = c.quitSelect(ctx); err != nil {
				return false, err
			}
			if err = c.screen.EnsureNoInfoBar(ctx, infoBarTimeout); err != nil {
				return false, err
			}
			event.Send(event.ResearchStarted(event.Text(c.name, fmt.Sprintf("Research project %d started", index)), cycle.ID, index))
			return true, nil
		}
		if c.screen.Appear(ui.ResearchUnavailable, image.Point{}) {
			c.logger.Info("Not enough resources to start this project", slog.Int("index", index))
			if err = c.quitSelect(ctx); err != nil {
				return false, err
			}
			return false, nil
		}
	}
}

// quitSelect leaves the project detail view and waits for the carousel to
// settle on the centred project.
func (c *Controller) quitSelect(ctx context.Context) error {
	c.logger.Info("Research select quit")

	p := c.newPoll(true)
	clickTimer := p.timer(c.opts.ClickInterval)
	for {
		if err := p.capture(ctx); err != nil {
			return err
		}

		if c.screen.Appear(ui.ResearchUnavailable, markerOffset) ||
			c.screen.Appear(ui.ResearchStart, markerOffset) ||
			c.screen.Appear(ui.ResearchStop, markerOffset) {
			if clickTimer.Reached() {
				if err := c.screen.Click(ctx, ui.ResearchSelectQuit); err != nil {
					return err
				}
			} else {
				clickTimer.Reset()
			}
			continue
		}

		return c.screen.WaitUntilStable(ctx, ui.StableCheckerCenter)
	}
}
