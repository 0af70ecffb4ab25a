// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import (
	"testing"
	"time"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0), step: step}
}

func TestAnimationDetector(t *testing.T) {
	tests := []struct {
		name   string
		step   time.Duration
		clears int
		want   bool
	}{
		{"fast", 10 * time.Millisecond, 10, true},
		// 2 clears 100ms apart: 2/0.1 = 20/s.
		{"two fast clears", 100 * time.Millisecond, 2, true},
		// 5 clears over 4 gaps of 50ms: 5/0.2 = 25/s.
		{"five clears", 50 * time.Millisecond, 5, true},
		{"single clear", 10 * time.Millisecond, 1, false},
		{"slow", time.Second, 20, false},
		// 10 clears over 9 gaps of 200ms: 10/1.8 = 5.56/s.
		{"just above threshold", 200 * time.Millisecond, 10, true},
		// 10 clears over 9 gaps of 250ms: 10/2.25 = 4.44/s.
		{"just below threshold", 250 * time.Millisecond, 10, false},
		// 5 clears over 1s: exactly the threshold.
		{"at threshold", 250 * time.Millisecond, 5, true},
		{"no elapsed time", 0, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAnimationDetector(5, newFakeClock(tt.step).Now)
			for range tt.clears {
				d.Count()
			}
			if got := d.IsAnimating(); got != tt.want {
				t.Errorf("IsAnimating() = %v (rate %.2f), want %v", got, d.Rate(), tt.want)
			}
		})
	}
}

func TestAnimationDetectorReset(t *testing.T) {
	d := NewAnimationDetector(0, newFakeClock(time.Millisecond).Now)
	for range 20 {
		d.Count()
	}
	if !d.IsAnimating() {
		t.Fatal("expected animating before reset")
	}
	d.Reset()
	if d.Samples() != 0 || d.Rate() != 0 || d.IsAnimating() {
		t.Errorf("after Reset: samples=%d rate=%v", d.Samples(), d.Rate())
	}
}
