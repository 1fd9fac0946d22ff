// Package glow computes the display color for a point in time.
//
// The hue drifts around the full color wheel over a multi-hour period with
// a small pseudo-random jitter, and the brightness ramps down during a
// configurable night window so the board stays readable in a dark room
// without lighting it up.
package glow

import (
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Config controls the color signal. The zero value is unusable; start from
// DefaultConfig.
type Config struct {
	// HuePeriod is how long one full trip around the color wheel takes.
	HuePeriod time.Duration
	// JitterInterval is how often the jitter reseeds. Colors are stable
	// within one interval, so it should not be shorter than the render
	// cadence.
	JitterInterval time.Duration
	// JitterDegrees bounds the hue jitter on either side.
	JitterDegrees float64
	// Saturation of the produced color.
	Saturation float64
	// NightStart and NightEnd bound the dimming window as minutes from
	// midnight, local time. The window may wrap past midnight.
	NightStart, NightEnd int
	// MinBrightness is the value floor reached at the end of the night
	// window. Must stay above zero so the display never goes fully dark.
	MinBrightness float64
}

// DefaultConfig returns the production defaults: a six-hour hue cycle,
// ten-second jitter reseed, and dimming between 22:00 and 06:00.
func DefaultConfig() Config {
	return Config{
		HuePeriod:      6 * time.Hour,
		JitterInterval: 10 * time.Second,
		JitterDegrees:  12,
		Saturation:     0.85,
		NightStart:     22 * 60,
		NightEnd:       6 * 60,
		MinBrightness:  0.15,
	}
}

// ColorAt returns the display color for the given instant as 8-bit RGB.
// The result is deterministic for instants within the same jitter interval.
func ColorAt(t time.Time, cfg Config) (r, g, b uint8) {
	hue := baseHue(t, cfg) + jitter(t, cfg)
	for hue < 0 {
		hue += 360
	}
	for hue >= 360 {
		hue -= 360
	}

	return colorful.Hsv(hue, cfg.Saturation, brightness(t, cfg)).Clamped().RGB255()
}

func baseHue(t time.Time, cfg Config) float64 {
	period := cfg.HuePeriod
	if period <= 0 {
		period = 6 * time.Hour
	}
	phase := t.UnixNano() % int64(period)
	return 360 * float64(phase) / float64(period)
}

// jitter derives a bounded hue offset from a generator seeded once per
// jitter interval, so repeated renders within the interval agree.
func jitter(t time.Time, cfg Config) float64 {
	if cfg.JitterDegrees == 0 || cfg.JitterInterval <= 0 {
		return 0
	}
	seed := t.UnixNano() / int64(cfg.JitterInterval)
	rng := rand.New(rand.NewSource(seed))
	return (rng.Float64()*2 - 1) * cfg.JitterDegrees
}

// brightness returns full value during the day and ramps down linearly
// across the night window toward the configured floor.
func brightness(t time.Time, cfg Config) float64 {
	minute := t.Hour()*60 + t.Minute()

	length := nightLength(cfg)
	if length == 0 {
		return 1
	}

	elapsed := minute - cfg.NightStart
	if elapsed < 0 {
		elapsed += 24 * 60
	}
	if elapsed >= length {
		return 1 // daytime
	}

	floor := cfg.MinBrightness
	if floor <= 0 {
		floor = 0.05
	}
	return 1 - (1-floor)*float64(elapsed+1)/float64(length)
}

func nightLength(cfg Config) int {
	length := cfg.NightEnd - cfg.NightStart
	if length < 0 {
		length += 24 * 60
	}
	return length
}
