package glow

import (
	"testing"
	"time"
)

func TestColorAt_Deterministic(t *testing.T) {
	cfg := DefaultConfig()

	at := time.Date(2024, time.March, 8, 12, 0, 0, 0, time.UTC)
	r1, g1, b1 := ColorAt(at, cfg)
	r2, g2, b2 := ColorAt(at, cfg)

	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Errorf("same instant produced different colors: (%d,%d,%d) vs (%d,%d,%d)",
			r1, g1, b1, r2, g2, b2)
	}
}

func TestJitter_SeededPerInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JitterInterval = time.Minute

	// Aligned to a minute boundary, so both samples fall in one interval.
	base := time.Date(2024, time.March, 8, 12, 0, 0, 0, time.UTC)
	j1 := jitter(base.Add(1*time.Second), cfg)
	j2 := jitter(base.Add(40*time.Second), cfg)
	if j1 != j2 {
		t.Errorf("jitter changed within one interval: %v vs %v", j1, j2)
	}
	if j1 < -cfg.JitterDegrees || j1 > cfg.JitterDegrees {
		t.Errorf("jitter %v outside ±%v", j1, cfg.JitterDegrees)
	}
}

func TestColorAt_HueDriftsAcrossPeriod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JitterDegrees = 0 // isolate the base hue

	base := time.Date(2024, time.March, 8, 12, 0, 0, 0, time.UTC)
	r1, g1, b1 := ColorAt(base, cfg)
	r2, g2, b2 := ColorAt(base.Add(cfg.HuePeriod/3), cfg)

	if r1 == r2 && g1 == g2 && b1 == b2 {
		t.Errorf("hue did not move across a third of the period: (%d,%d,%d)", r1, g1, b1)
	}
}

func TestBrightness_NightRamp(t *testing.T) {
	cfg := DefaultConfig() // night 22:00 -> 06:00, floor 0.15

	day := time.Date(2024, time.March, 8, 14, 0, 0, 0, time.UTC)
	if v := brightness(day, cfg); v != 1 {
		t.Errorf("daytime brightness = %v, want 1", v)
	}

	// Monotonically non-increasing across the night, never at or below zero.
	prev := 1.0
	for minutes := 0; minutes < 8*60; minutes += 30 {
		at := time.Date(2024, time.March, 8, 22, 0, 0, 0, time.UTC).
			Add(time.Duration(minutes) * time.Minute)
		v := brightness(at, cfg)
		if v > prev {
			t.Errorf("brightness rose during the night at +%dm: %v > %v", minutes, v, prev)
		}
		if v < cfg.MinBrightness {
			t.Errorf("brightness %v fell below the floor %v at +%dm", v, cfg.MinBrightness, minutes)
		}
		prev = v
	}

	deep := time.Date(2024, time.March, 9, 5, 59, 0, 0, time.UTC)
	if v := brightness(deep, cfg); v > 0.2 {
		t.Errorf("end-of-night brightness = %v, want close to the floor", v)
	}
}

func TestColorAt_NightNeverBlack(t *testing.T) {
	cfg := DefaultConfig()
	for hour := 0; hour < 24; hour++ {
		at := time.Date(2024, time.March, 8, hour, 30, 0, 0, time.UTC)
		r, g, b := ColorAt(at, cfg)
		if r == 0 && g == 0 && b == 0 {
			t.Errorf("display went fully black at %02d:30", hour)
		}
	}
}
