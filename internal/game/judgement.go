package game

// Judgement is how a beat slot is marked after evaluation.
type Judgement int

const (
	None Judgement = iota
	Accurate
	Mistimed
	Extra
	Missed
)

var judgementNames = [...]string{"none", "accurate", "mistimed", "extra", "missed"}

func (j Judgement) String() string {
	if j < 0 || int(j) >= len(judgementNames) {
		return "unknown"
	}
	return judgementNames[j]
}
