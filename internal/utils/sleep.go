package utils

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// sampleGamma returns a sample from the Gamma(shape, scale) distribution using
// the Marsaglia-Tsang squeeze method. shape must be >= 1.
func sampleGamma(shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rand.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := rand.Float64()
		// Fast accept path
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		// Slow accept path
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Jitter scales d by a Gamma(4, 0.25) multiplier (mean 1.0) clamped to
// [0.4, 2.5], giving the right-skewed spread of human reaction times.
func Jitter(d time.Duration) time.Duration {
	const shape = 4.0
	const scale = 0.25
	multiplier := sampleGamma(shape, scale)
	if multiplier < 0.4 {
		multiplier = 0.4
	}
	if multiplier > 2.5 {
		multiplier = 2.5
	}
	return time.Duration(float64(d) * multiplier)
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RandLogNormal returns a duration in milliseconds sampled from a log-normal
// distribution parameterised by the given mean and standard deviation (both in
// ms). Log-normal is right-skewed, matching empirical human idle-time data.
func RandLogNormal(meanMs, stdMs float64) int {
	variance := stdMs * stdMs
	mu := math.Log(meanMs * meanMs / math.Sqrt(variance+meanMs*meanMs))
	sigma := math.Sqrt(math.Log(1.0 + variance/(meanMs*meanMs)))
	sample := math.Exp(mu + rand.NormFloat64()*sigma)
	if sample < 1 {
		sample = 1
	}
	return int(sample)
}
