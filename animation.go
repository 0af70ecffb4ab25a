// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import "time"

// DefaultAnimationThreshold is the full-clear rate, per second, above
// which a canvas is considered animating.
const DefaultAnimationThreshold = 5.0

// AnimationDetector measures how often a canvas is fully cleared. A canvas
// cleared at or above the threshold rate is considered animating.
type AnimationDetector struct {
	threshold float64
	clock     func() time.Time

	count       int
	first, last time.Time
}

// NewAnimationDetector returns a detector. A non-positive threshold takes
// the default; a nil clock means time.Now.
func NewAnimationDetector(threshold float64, clock func() time.Time) *AnimationDetector {
	if threshold <= 0 {
		threshold = DefaultAnimationThreshold
	}
	if clock == nil {
		clock = time.Now
	}
	return &AnimationDetector{threshold: threshold, clock: clock}
}

// Count records one full clear.
func (d *AnimationDetector) Count() {
	now := d.clock()
	if d.count == 0 {
		d.first = now
	}
	d.last = now
	d.count++
}

// Rate returns clears per second between the first and the latest clear,
// or 0 when no time has elapsed.
func (d *AnimationDetector) Rate() float64 {
	elapsed := d.last.Sub(d.first).Seconds()
	if d.count == 0 || elapsed <= 0 {
		return 0
	}
	return float64(d.count) / elapsed
}

// IsAnimating reports whether the clear rate reached the threshold. A
// single clear never does, since no time has elapsed.
func (d *AnimationDetector) IsAnimating() bool {
	return d.Rate() >= d.threshold
}

// Samples returns the number of clears recorded since the last Reset.
func (d *AnimationDetector) Samples() int { return d.count }

// Reset forgets all clears.
func (d *AnimationDetector) Reset() {
	d.count = 0
	d.first, d.last = time.Time{}, time.Time{}
}
