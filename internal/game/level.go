package game

type Level int

const (
	MinLevel Level = 1
	MaxLevel Level = 3
)

// Pool is the fixed set of patterns a level draws from.
type Pool struct {
	Level    Level
	Name     string
	Patterns []Pattern
}

var levelNames = map[Level]string{
	1: "beginner",
	2: "intermediate",
	3: "advanced",
}

// Name is how a level is shown to players.
func (l Level) Name() string {
	name, ok := levelNames[l]
	if !ok {
		return "expert"
	}
	return name
}
