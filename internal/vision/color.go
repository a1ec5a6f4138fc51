package vision

import (
	"image"
	"image/color"
)

// AverageColor returns the mean colour of area in img. Pixels outside the
// image bounds are ignored; an area that misses the image entirely yields
// black.
func AverageColor(img image.Image, area image.Rectangle) color.RGBA {
	area = area.Intersect(img.Bounds())
	if area.Empty() {
		return color.RGBA{A: 255}
	}

	var r, g, b, n uint64
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			r += uint64(pr >> 8)
			g += uint64(pg >> 8)
			b += uint64(pb >> 8)
			n++
		}
	}

	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 255}
}

// ColorSimilar reports whether every channel of a and b differs by at most
// threshold.
func ColorSimilar(a, b color.RGBA, threshold int) bool {
	return absDiff(a.R, b.R) <= threshold &&
		absDiff(a.G, b.G) <= threshold &&
		absDiff(a.B, b.B) <= threshold
}

// Spread is the difference between the strongest and weakest channel. Grey
// readings have a small spread.
func Spread(c color.RGBA) int {
	hi, lo := c.R, c.R
	for _, v := range []uint8{c.G, c.B} {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	return int(hi) - int(lo)
}

// Dominant returns the index (0 red, 1 green, 2 blue) of the strongest
// channel. Ties go to the lower index.
func Dominant(c color.RGBA) int {
	idx := 0
	best := c.R
	if c.G > best {
		idx, best = 1, c.G
	}
	if c.B > best {
		idx = 2
	}
	return idx
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
