package system

import (
	"fmt"
	"time"

	coresys "github.com/emberline/survivor/internal/core/system"
)

// Clock is the pausable gameplay clock. Elapsed advances only by frame
// deltas delivered while running, so wall time spent paused never counts.
// Phase 0 (Clock).
type Clock struct {
	elapsed    time.Duration
	paused     bool
	thresholds []time.Duration
}

// NewClock builds a clock with ascending level thresholds in seconds.
func NewClock(thresholds []int) *Clock {
	c := &Clock{thresholds: make([]time.Duration, len(thresholds))}
	for i, s := range thresholds {
		c.thresholds[i] = time.Duration(s) * time.Second
	}
	return c
}

func (c *Clock) Phase() coresys.Phase { return coresys.PhaseClock }

func (c *Clock) Update(dt time.Duration) {
	if c.paused || dt <= 0 {
		return
	}
	c.elapsed += dt
}

func (c *Clock) Pause()                 { c.paused = true }
func (c *Clock) Resume()                { c.paused = false }
func (c *Clock) Paused() bool           { return c.paused }
func (c *Clock) Elapsed() time.Duration { return c.elapsed }

// Clear zeroes elapsed time and leaves the clock running.
func (c *Clock) Clear() {
	c.elapsed = 0
	c.paused = false
}

// Level is the highest index whose threshold elapsed time strictly exceeds,
// scanning in order and stopping at the first threshold not yet passed.
func (c *Clock) Level() int {
	level := 0
	for i, th := range c.thresholds {
		if c.elapsed <= th {
			break
		}
		level = i
	}
	return level
}

// Format renders elapsed time as mm:ss.
func (c *Clock) Format() string {
	total := int(c.elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
