package research

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/hectorgimenez/labbot/internal/ui"
)

// Screen is the view of the game the research controllers poll. Appear,
// SampleColor and Image read the last captured frame; only Capture refreshes it.
type Screen interface {
	Capture(ctx context.Context) error
	Image() image.Image
	Appear(btn ui.Button, offset image.Point) bool
	SampleColor(area image.Rectangle) color.RGBA
	Click(ctx context.Context, btn ui.Button) error
	Swipe(ctx context.Context, area image.Rectangle, vector image.Point) error
	// ConfirmPopup accepts the confirmation popup if one is on screen.
	ConfirmPopup(ctx context.Context, kind string) (bool, error)
	// WaitUntilStable blocks until the area of btn stops changing.
	WaitUntilStable(ctx context.Context, btn ui.Button) error
	// EnsureNoInfoBar waits up to timeout for the info banner to go away.
	EnsureNoInfoBar(ctx context.Context, timeout time.Duration) error
	SaveScreenshot(bucket string) error
}

// Navigator moves between game pages.
type Navigator interface {
	GotoResearch(ctx context.Context) error
}

// Selector knows which projects the carousel holds and orders them.
type Selector interface {
	Detect(img image.Image)
	SortFilter() Priority
	SortShortest() Priority
	SortCheapest() Priority
}
