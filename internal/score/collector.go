package score

import (
	"time"

	"github.com/brianng882/tunebits/internal/game"
)

// Collector keeps the taps of one listening window in the order they
// happened. It classifies each tap as it arrives and never drops one.
type Collector struct {
	scorer   Scorer
	pattern  game.Pattern
	interval time.Duration
	taps     []game.Tap
}

func NewCollector(s Scorer, pattern game.Pattern, interval time.Duration) *Collector {
	return &Collector{scorer: s, pattern: pattern, interval: interval}
}

func (c *Collector) Record(at time.Time, elapsed time.Duration) game.Tap {
	tap := c.scorer.RecordTap(at, c.pattern, c.interval, elapsed)
	c.taps = append(c.taps, tap)
	return tap
}

// Taps returns a copy of the taps so far
func (c *Collector) Taps() []game.Tap {
	taps := make([]game.Tap, len(c.taps))
	copy(taps, c.taps)
	return taps
}

func (c *Collector) Len() int {
	return len(c.taps)
}

func (c *Collector) Evaluate() game.Result {
	return c.scorer.Evaluate(c.pattern, c.taps)
}
