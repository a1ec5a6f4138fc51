package research

import (
	"context"
	"image"
	"time"

	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/utils"
)

// poll is the state of one polling loop. Every controller call creates its own.
type poll struct {
	screen    Screen
	now       utils.Clock
	skipFirst bool
	intervals map[string]*utils.Timer
}

func (c *Controller) newPoll(skipFirst bool) *poll {
	return &poll{
		screen:    c.screen,
		now:       c.now,
		skipFirst: skipFirst,
		intervals: make(map[string]*utils.Timer),
	}
}

// capture refreshes the frame, except on the first call of a loop that reuses
// the caller's frame.
func (p *poll) capture(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.skipFirst {
		p.skipFirst = false
		return nil
	}
	return p.screen.Capture(ctx)
}

// appear checks btn at most once per interval. A successful match restarts the
// interval; a miss leaves it reached so the next frame is checked again.
func (p *poll) appear(btn ui.Button, offset image.Point, interval time.Duration) bool {
	if interval <= 0 {
		return p.screen.Appear(btn, offset)
	}

	t, ok := p.intervals[btn.Name]
	if !ok {
		t = utils.NewTimer(interval, p.now)
		p.intervals[btn.Name] = t
	}
	if !t.Reached() {
		return false
	}
	if !p.screen.Appear(btn, offset) {
		return false
	}
	t.Reset()
	return true
}

func (p *poll) appearThenClick(ctx context.Context, btn ui.Button, interval time.Duration) (bool, error) {
	if !p.appear(btn, image.Point{}, interval) {
		return false, nil
	}
	return true, p.screen.Click(ctx, btn)
}

func (p *poll) timer(limit time.Duration) *utils.Timer {
	return utils.NewTimer(limit, p.now)
}

func offset(x, y int) image.Point {
	return image.Pt(x, y)
}
