package research

import "github.com/hectorgimenez/labbot/internal/ui"

// Carousel maps logical project indexes to the visual slot they currently
// occupy. Selecting a project scrolls it to the centre slot, shifting every
// other project with it.
type Carousel struct {
	offset int
}

// ScreenPosition returns the visual slot showing the project at index.
func (c *Carousel) ScreenPosition(index int) int {
	return mod(index-c.offset, ui.SlotCount)
}

// RecordSelection updates the offset after the project at index was tapped and
// scrolled to the centre.
func (c *Carousel) RecordSelection(index int) {
	c.offset = mod(index-ui.CenterSlot, ui.SlotCount)
}

// Reset assumes an unscrolled carousel, as after a fresh detection pass.
func (c *Carousel) Reset() {
	c.offset = 0
}

func (c *Carousel) Offset() int {
	return c.offset
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
