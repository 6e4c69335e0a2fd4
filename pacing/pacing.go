// Package pacing keeps a frame loop on a wall-clock cadence.
//
// Frame i is due at start + i*interval. After each frame has been sent and
// acknowledged the Controller compares the due time with the clock: when
// early it sleeps the difference, when late it can skip the number of whole
// intervals it fell behind. Skipped frames still advance the frame index so
// the schedule keeps tracking ideal progress.
package pacing

import (
	"math"
	"time"
)

// DefaultFPS is used when the source does not report a frame rate.
const DefaultFPS = 15

// Clock abstracts time for the Controller.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System is the real clock.
type System struct{}

// Now returns time.Now.
func (System) Now() time.Time { return time.Now() }

// Sleep calls time.Sleep.
func (System) Sleep(d time.Duration) { time.Sleep(d) }

// Interval returns the frame interval for fps, using DefaultFPS when fps is
// zero, negative or not a number.
func Interval(fps float64) time.Duration {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		fps = DefaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// Decision is the outcome of settling one sent frame.
type Decision struct {
	Frame     int           // index of the frame just settled
	Remaining time.Duration // due time minus now; negative when late
	Slept     bool          // the controller slept Remaining
	Skip      int           // frames scheduled to be skipped
}

// Late reports whether the frame finished after its due time.
func (d Decision) Late() bool {
	return d.Remaining < 0
}

// Stats summarizes a Controller's run.
type Stats struct {
	Sent     int
	Skipped  int
	Late     int           // frames settled after their due time
	WorstLag time.Duration // largest amount a frame was late by
}

// Controller holds the session counters. It is not safe for concurrent use.
type Controller struct {
	clock    Clock
	interval time.Duration
	skipping bool

	start time.Time
	index int // frame_index
	skip  int // frames left to skip

	stats Stats
}

// New returns a Controller for fps. When skipping is false a late frame only
// accumulates lag.
func New(clock Clock, fps float64, skipping bool) *Controller {
	if clock == nil {
		clock = System{}
	}
	return &Controller{
		clock:    clock,
		interval: Interval(fps),
		skipping: skipping,
	}
}

// Start anchors the schedule at the current time.
func (c *Controller) Start() {
	c.start = c.clock.Now()
	c.index = 0
	c.skip = 0
	c.stats = Stats{}
}

// Interval returns the frame interval.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Index returns the index of the next frame.
func (c *Controller) Index() int {
	return c.index
}

// Pending returns the number of frames still to be skipped.
func (c *Controller) Pending() int {
	return c.skip
}

// Target returns the due time of the next frame.
func (c *Controller) Target() time.Time {
	return c.start.Add(time.Duration(c.index) * c.interval)
}

// Skip reports whether the frame just read should be dropped. Each true
// result consumes one pending skip and advances the frame index.
func (c *Controller) Skip() bool {
	if !c.skipping || c.skip <= 0 {
		return false
	}
	c.skip--
	c.index++
	c.stats.Skipped++
	return true
}

// Settle is called once the current frame has been acknowledged. It sleeps
// until the frame's due time or, when late and skipping is enabled, schedules
// floor(lag/interval) frames to be skipped. It then advances the frame index.
//
// A frame finishing exactly on its due time is on schedule.
func (c *Controller) Settle() Decision {
	target := c.Target()
	remaining := target.Sub(c.clock.Now())
	d := Decision{Frame: c.index, Remaining: remaining}

	switch {
	case remaining > 0:
		c.clock.Sleep(remaining)
		d.Slept = true
	case remaining < 0:
		lag := -remaining
		c.stats.Late++
		c.stats.WorstLag = max(c.stats.WorstLag, lag)
		if c.skipping {
			c.skip = max(int(lag/c.interval), 0)
			d.Skip = c.skip
		}
	}

	c.stats.Sent++
	c.index++
	return d
}

// Stats returns the counters accumulated since Start.
func (c *Controller) Stats() Stats {
	return c.stats
}
