package stimulus

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/sirupsen/logrus"
)

type State int

const (
	Idle State = iota
	Playing
	Feedback
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Feedback:
		return "feedback"
	case Complete:
		return "complete"
	}
	return "unknown"
}

type Config struct {
	MaxRounds       int
	LevelUpInterval int
	MaxLevel        game.Level
	Seed            int64 // Zero uses the clock
}

func DefaultConfig() Config {
	return Config{
		MaxRounds:       15,
		LevelUpInterval: 5,
		MaxLevel:        game.MaxLevel,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxRounds <= 0:
		return fmt.Errorf("%w: max rounds must be positive, got %v", game.ErrInvalidConfig, c.MaxRounds)
	case c.LevelUpInterval <= 0:
		return fmt.Errorf("%w: level up interval must be positive, got %v", game.ErrInvalidConfig, c.LevelUpInterval)
	case c.MaxLevel < game.MinLevel:
		return fmt.Errorf("%w: max level must be at least %v, got %v", game.ErrInvalidConfig, game.MinLevel, c.MaxLevel)
	}
	return nil
}

// Outcome is the verdict on one answer.
type Outcome struct {
	Round    int
	Level    game.Level
	Stimulus Stimulus
	Answer   string
	Correct  bool
	Message  string
}

type Snapshot struct {
	Variant string
	State   State
	Round   int
	Level   game.Level
	Score   int
	Prompt  string
	Options []Option
	Outcome *Outcome
}

// Game runs one variant: Idle, then Playing and Feedback in turn until the
// round budget is spent.
type Game struct {
	OnChange       func(Snapshot)
	OnScoreChanged func(score int)
	OnAnswered     func(Outcome)

	variant Variant
	player  Player
	cfg     Config
	rng     *rand.Rand
	log     logrus.FieldLogger

	state   State
	round   int
	level   game.Level
	score   int
	current Stimulus
	outcome *Outcome
}

func New(v Variant, player Player, cfg Config, logger logrus.FieldLogger) (*Game, error) {
	if err := cfg.Validate(); nil != err {
		return nil, err
	}
	if nil == v || nil == player {
		return nil, fmt.Errorf("%w: variant and player are required", game.ErrInvalidConfig)
	}
	if nil == logger {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Game{
		variant: v,
		player:  player,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		log:     logger.WithField("game", v.Name()),
		level:   game.MinLevel,
	}, nil
}

func (g *Game) Variant() Variant {
	return g.variant
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Variant: g.variant.Name(),
		State:   g.state,
		Round:   g.round,
		Level:   g.level,
		Score:   g.score,
		Options: g.variant.Options(g.level),
	}
	if g.state == Playing || g.state == Feedback {
		s.Prompt = g.current.Prompt
	}
	if nil != g.outcome {
		o := *g.outcome
		s.Outcome = &o
	}
	return s
}

func (g *Game) Start() error {
	if g.state != Idle {
		return fmt.Errorf("unable to start from %v: %w", g.state, ErrInvalidState)
	}
	g.reset()
	return nil
}

func (g *Game) PlayAgain() error {
	if g.state != Complete {
		return fmt.Errorf("unable to play again from %v: %w", g.state, ErrInvalidState)
	}
	g.reset()
	return nil
}

func (g *Game) reset() {
	g.score = 0
	g.level = game.MinLevel
	g.round = 0
	if nil != g.OnScoreChanged {
		g.OnScoreChanged(g.score)
	}
	g.next()
}

func (g *Game) next() {
	g.round++
	g.outcome = nil
	g.current = g.variant.Generate(g.level, g.rng)
	g.state = Playing
	g.log.WithFields(logrus.Fields{"round": g.round, "level": g.level}).Debug("question")
	g.play()
	g.emit()
}

func (g *Game) play() {
	g.player.Stop()
	g.player.PlayNotes(g.current.Notes, g.current.Harmonic)
}

// Replay sounds the current question again.
func (g *Game) Replay() error {
	if g.state != Playing && g.state != Feedback {
		return fmt.Errorf("unable to replay from %v: %w", g.state, ErrInvalidState)
	}
	g.play()
	return nil
}

// Answer checks an answer to the open question. An answer the variant
// cannot read leaves the question open.
func (g *Game) Answer(answer string) (Outcome, error) {
	if g.state != Playing {
		return Outcome{}, fmt.Errorf("unable to answer from %v: %w", g.state, ErrInvalidState)
	}
	correct, err := g.variant.Match(g.current, answer)
	if nil != err {
		return Outcome{}, err
	}

	o := Outcome{
		Round:    g.round,
		Level:    g.level,
		Stimulus: g.current,
		Answer:   answer,
		Correct:  correct,
	}
	if correct {
		o.Message = fmt.Sprintf("Correct! That's %v.", g.current.Label)
		if (g.score+1)%g.cfg.LevelUpInterval == 0 && g.level < g.cfg.MaxLevel {
			g.level++
			g.log.WithField("level", g.level).Info("level up")
		}
		g.score++
	} else {
		o.Message = fmt.Sprintf("Not quite. You answered %v, but it's %v.", g.variant.Describe(answer), g.current.Label)
	}
	g.outcome = &o
	g.state = Feedback
	g.log.WithFields(logrus.Fields{"round": g.round, "correct": correct}).Info("answered")

	if correct && nil != g.OnScoreChanged {
		g.OnScoreChanged(g.score)
	}
	if nil != g.OnAnswered {
		g.OnAnswered(o)
	}
	g.emit()
	return o, nil
}

func (g *Game) Continue() error {
	if g.state != Feedback {
		return fmt.Errorf("unable to continue from %v: %w", g.state, ErrInvalidState)
	}
	if g.round >= g.cfg.MaxRounds {
		g.player.Stop()
		g.state = Complete
		g.log.WithField("score", g.score).Info("game complete")
		g.emit()
		return nil
	}
	g.next()
	return nil
}

// Abandon stops any sound and returns to Idle.
func (g *Game) Abandon() {
	g.player.Stop()
	g.state = Idle
	g.outcome = nil
	g.emit()
}

func (g *Game) emit() {
	if nil != g.OnChange {
		g.OnChange(g.Snapshot())
	}
}
