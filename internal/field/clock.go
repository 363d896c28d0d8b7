package field

import (
	"time"
)

// DefaultFPS is the frame rate of the ticker clock when none is configured.
const DefaultFPS = 60

// Clock delivers "draw the next frame now" signals to a session.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

type tickerClock struct {
	t *time.Ticker
}

// NewTickerClock returns a wall-clock frame source at fps frames per second.
func NewTickerClock(fps int) Clock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &tickerClock{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (c *tickerClock) C() <-chan time.Time { return c.t.C }
func (c *tickerClock) Stop() { c.t.Stop() }

// ManualClock only fires when Tick is called. It holds at most one pending
// frame, the same way a ticker drops frames for a slow receiver.
type ManualClock struct {
	ch chan time.Time
}

func NewManualClock() *ManualClock {
	return &ManualClock{ch: make(chan time.Time, 1)}
}

// Tick requests a frame. It reports false if a frame was already pending.
func (c *ManualClock) Tick() bool {
	select {
	case c.ch <- time.Now():
		return true
	default:
		return false
	}
}

func (c *ManualClock) C() <-chan time.Time { return c.ch }
func (c *ManualClock) Stop() {}
