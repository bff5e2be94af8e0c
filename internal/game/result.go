package game

// Result summarizes one evaluated round. It is derived from the pattern and
// the taps alone.
type Result struct {
	Accuracy int // 0 to 100
	Expected int
	Correct  int
	Mistimed int
	Extra    int
	Missed   int
	Taps     int
	Passed   bool
	Message  string

	// Per slot marks, for feedback display
	Marks []Judgement
}

func (r Result) Clone() Result {
	c := r
	if nil != r.Marks {
		c.Marks = make([]Judgement, len(r.Marks))
		copy(c.Marks, r.Marks)
	}
	return c
}
