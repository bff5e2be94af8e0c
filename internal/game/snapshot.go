package game

// Snapshot is a copy of the round controller's observable state. Holders may
// keep it around; the controller never writes to one it has handed out.
type Snapshot struct {
	State     RoundState
	Paused    bool
	Round     int
	Level     Level
	Score     int
	Countdown int     // Remaining countdown ticks, 0 outside countdowns
	Pattern   Pattern // The full listening window, all cycles
	Beat      int     // The slot currently sounding, -1 when none
	Perfect   int     // Accurate taps on expected slots this session
	Taps      []Tap
	Result    *Result
}

func (s Snapshot) Clone() Snapshot {
	c := s
	c.Pattern = s.Pattern.Clone()
	if nil != s.Taps {
		c.Taps = make([]Tap, len(s.Taps))
		copy(c.Taps, s.Taps)
	}
	if nil != s.Result {
		r := s.Result.Clone()
		c.Result = &r
	}
	return c
}
