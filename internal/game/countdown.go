package game

import "time"

// Countdown is a pausable per-question timer. Holds nest: the clock only runs while no hold is
// outstanding, and pausing keeps the remaining time instead of resetting it.
//
// Countdown is not safe for concurrent use; the owning Session serialises access and receives
// expiry through fire together with the epoch that scheduled it.
type Countdown struct {
	clock     Clock
	fire      func(epoch uint64)
	limit     time.Duration
	remaining time.Duration
	since     time.Time
	holds     int
	active    bool
	epoch     uint64
	timer     Timer
}

func NewCountdown(clock Clock, fire func(epoch uint64)) *Countdown {
	return &Countdown{clock: clock, fire: fire}
}

// Start resets the countdown to limit, clears all holds and begins ticking.
func (c *Countdown) Start(limit time.Duration) {
	c.cancel()
	c.limit = limit
	c.remaining = limit
	c.holds = 0
	c.active = true
	c.schedule()
}

// Hold pauses the countdown until a matching Release.
func (c *Countdown) Hold() {
	if !c.active {
		return
	}
	if c.holds == 0 {
		c.remaining = c.Remaining()
		c.cancel()
	}
	c.holds++
}

// Release undoes one Hold. The countdown resumes from where it paused once no hold remains.
func (c *Countdown) Release() {
	if !c.active || c.holds == 0 {
		return
	}
	c.holds--
	if c.holds == 0 {
		c.schedule()
	}
}

// Stop ends the countdown for good; pending expiry is discarded.
func (c *Countdown) Stop() {
	if !c.active {
		return
	}
	c.remaining = c.Remaining()
	c.cancel()
	c.active = false
}

// Remaining is the time left, never negative.
func (c *Countdown) Remaining() time.Duration {
	if !c.active || c.holds > 0 {
		return c.remaining
	}
	left := c.remaining - c.clock.Now().Sub(c.since)
	if left < 0 {
		return 0
	}
	return left
}

// Elapsed is the time consumed since the last Start.
func (c *Countdown) Elapsed() time.Duration {
	return c.limit - c.Remaining()
}

// Paused reports whether at least one hold is outstanding.
func (c *Countdown) Paused() bool {
	return c.active && c.holds > 0
}

// Current reports whether an expiry scheduled under epoch is still the live one.
func (c *Countdown) Current(epoch uint64) bool {
	return c.active && c.holds == 0 && c.epoch == epoch
}

func (c *Countdown) schedule() {
	c.since = c.clock.Now()
	c.epoch++
	epoch := c.epoch
	c.timer = c.clock.AfterFunc(c.remaining, func() { c.fire(epoch) })
}

func (c *Countdown) cancel() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.epoch++
}
