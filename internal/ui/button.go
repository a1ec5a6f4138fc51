package ui

import (
	"image"
	"image/color"
)

// Button is a fixed screen element. Area is the region sampled to detect it and
// Color the average colour Area shows when the element is on screen. Taps land
// inside Click, or inside Area when Click is empty.
type Button struct {
	Name  string
	Area  image.Rectangle
	Color color.RGBA
	Click image.Rectangle
}

func (b Button) String() string {
	return b.Name
}

func (b Button) ClickArea() image.Rectangle {
	if b.Click.Empty() {
		return b.Area
	}
	return b.Click
}

func rect(x1, y1, x2, y2 int) image.Rectangle {
	return image.Rect(x1, y1, x2, y2)
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
