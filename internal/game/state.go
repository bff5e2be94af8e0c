package game

// RoundState is the phase a rhythm round is in.
type RoundState int

const (
	Idle RoundState = iota
	CountdownToDemo
	PlayingDemo
	CountdownToListen
	Listening
	Evaluating
	Feedback
	Complete
)

var stateNames = [...]string{
	"idle",
	"countdown-to-demo",
	"playing-demo",
	"countdown-to-listen",
	"listening",
	"evaluating",
	"feedback",
	"complete",
}

func (s RoundState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
