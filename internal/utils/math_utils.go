package utils

import (
	"image"
	"math"
	"math/rand"
)

// Center returns the middle point of r.
func Center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// RandomPointIn returns a point inside r, biased towards its centre so taps do
// not land on the exact same pixel every time.
func RandomPointIn(r image.Rectangle) image.Point {
	c := Center(r)
	if r.Dx() < 4 || r.Dy() < 4 {
		return c
	}
	rx := float64(r.Dx()) / 4
	ry := float64(r.Dy()) / 4
	p := image.Pt(
		c.X+int(math.Round(rand.NormFloat64()*rx/2)),
		c.Y+int(math.Round(rand.NormFloat64()*ry/2)),
	)
	return Clamp(p, r)
}

// Clamp keeps p inside r (Max is exclusive).
func Clamp(p image.Point, r image.Rectangle) image.Point {
	if p.X < r.Min.X {
		p.X = r.Min.X
	} else if p.X >= r.Max.X {
		p.X = r.Max.X - 1
	}
	if p.Y < r.Min.Y {
		p.Y = r.Min.Y
	} else if p.Y >= r.Max.Y {
		p.Y = r.Max.Y - 1
	}
	return p
}
