package vision

import (
	"encoding/binary"
	"image"

	"github.com/cespare/xxhash/v2"
	"github.com/hectorgimenez/labbot/internal/ui"
)

const (
	// DefaultThreshold is the per-channel tolerance used by Appear.
	DefaultThreshold = 20
	offsetStep       = 5
)

// Appear reports whether btn is on screen: the average colour of its area is
// within threshold of btn.Color. With a non-zero offset the area is also tried
// shifted by up to offset pixels in each direction.
func Appear(img image.Image, btn ui.Button, offset image.Point, threshold int) bool {
	_, ok := Locate(img, btn, offset, threshold)
	return ok
}

// Locate is Appear returning the matched area.
func Locate(img image.Image, btn ui.Button, offset image.Point, threshold int) (image.Rectangle, bool) {
	if img == nil || btn.Area.Empty() {
		return image.Rectangle{}, false
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	if ColorSimilar(AverageColor(img, btn.Area), btn.Color, threshold) {
		return btn.Area, true
	}
	if offset.X == 0 && offset.Y == 0 {
		return image.Rectangle{}, false
	}

	for dy := -offset.Y; dy <= offset.Y; dy += offsetStep {
		for dx := -offset.X; dx <= offset.X; dx += offsetStep {
			if dx == 0 && dy == 0 {
				continue
			}
			area := btn.Area.Add(image.Pt(dx, dy))
			if !area.In(img.Bounds()) {
				continue
			}
			if ColorSimilar(AverageColor(img, area), btn.Color, threshold) {
				return area, true
			}
		}
	}

	return image.Rectangle{}, false
}

// Fingerprint hashes the pixels of area with their low bits dropped, so
// compression noise between two captures of a still screen does not change the
// result.
func Fingerprint(img image.Image, area image.Rectangle) uint64 {
	area = area.Intersect(img.Bounds())
	d := xxhash.New()
	var buf [4]byte
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			buf[0] = uint8(r>>8) &^ 0x07
			buf[1] = uint8(g>>8) &^ 0x07
			buf[2] = uint8(b>>8) &^ 0x07
			buf[3] = 0
			_, _ = d.Write(buf[:])
		}
	}
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(area.Dx())<<32|uint64(area.Dy()))
	_, _ = d.Write(size[:])
	return d.Sum64()
}
