package game

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/utils"
)

const (
	navigationTimeout       = 30 * time.Second
	navigationClickInterval = 3 * time.Second
	navigationPoll          = 500 * time.Millisecond
)

var ErrNavigationTimeout = errors.New("research page not reached")

// GotoResearch opens the research page from the reward page.
func (s *Screen) GotoResearch(ctx context.Context) error {
	timeout := utils.NewTimer(navigationTimeout, s.now)
	timeout.Reset()
	click := utils.NewTimer(navigationClickInterval, s.now)

	for {
		if err := s.Capture(ctx); err != nil {
			return err
		}
		if s.Appear(ui.ResearchCheck, image.Point{}) {
			return nil
		}
		if click.Reached() && s.Appear(ui.RewardGotoResearch, image.Point{}) {
			if err := s.Click(ctx, ui.RewardGotoResearch); err != nil {
				return err
			}
			click.Reset()
			continue
		}
		if timeout.Reached() {
			return ErrNavigationTimeout
		}
		if err := s.sleep(ctx, navigationPoll); err != nil {
			return err
		}
	}
}
