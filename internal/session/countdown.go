package session

import (
	"sync"
	"time"
)

// Countdown is a cancelable per-turn timer. A callback armed by Reset runs
// at most once, and never after a later Reset or Stop.
type Countdown struct {
	mu         sync.Mutex
	duration   time.Duration
	timer      *time.Timer
	deadline   time.Time
	generation uint64
	now        func() time.Time
}

func NewCountdown(duration time.Duration) *Countdown {
	return &Countdown{duration: duration, now: time.Now}
}

// Reset restarts the countdown and arms onExpire for the new period.
func (c *Countdown) Reset(onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.generation++
	generation := c.generation
	c.deadline = c.now().Add(c.duration)
	c.timer = time.AfterFunc(c.duration, func() {
		c.mu.Lock()
		if c.generation != generation {
			c.mu.Unlock()
			return
		}
		c.timer = nil
		c.deadline = time.Time{}
		c.mu.Unlock()
		onExpire()
	})
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.deadline = time.Time{}
}

// Remaining is zero when the countdown is not running.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deadline.IsZero() {
		return 0
	}
	if left := c.deadline.Sub(c.now()); left > 0 {
		return left
	}
	return 0
}

func (c *Countdown) Duration() time.Duration {
	return c.duration
}
