// Package config reads the command line.
package config

import (
	"fmt"
	"time"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/stimulus"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

const (
	Rhythm  = "rhythm"
	History = "history"
)

type Settings struct {
	Command string

	Rhythm   game.Config
	Stimulus stimulus.Config

	Seed        int64
	Patterns    string // Pool file, built in pools when empty
	ClickSample string
	HitSample   string
	Mute        bool

	DB       string
	LogFile  string
	LogLevel logrus.Level

	HistoryGame  string
	HistoryLimit int
}

type stimulusFlags struct {
	rounds  *int
	levelUp *int
}

// Parse reads args, without the program name. Help and version requests
// exit the process the way kingpin does.
func Parse(args []string) (Settings, error) {
	return parse(kingpin.New("tunebits", "Ear training in the terminal."), args)
}

func parse(app *kingpin.Application, args []string) (Settings, error) {
	app.Version(Version)
	app.HelpFlag.Short('h')

	def := game.DefaultConfig()
	seed := app.Flag("seed", "Random seed, 0 for the clock").Default("0").Int64()
	maxLevel := app.Flag("max-level", "Highest level to reach").Default("3").Int()
	mute := app.Flag("mute", "Play no sound").Bool()
	db := app.Flag("db", "History database").Default("./tunebits.db").String()
	logFile := app.Flag("log-file", "Write logs here").Default("./tunebits.log").String()
	logLevel := app.Flag("log-level", "Log level").Default("info").Enum("debug", "info", "warn", "error")

	rhythm := app.Command(Rhythm, "Listen to a rhythm and tap it back").Default()
	bpm := rhythm.Flag("bpm", "Beats per minute").Default("100").Short('b').Float64()
	beats := rhythm.Flag("beats", "Beat slots per pattern").Default("8").Int()
	cycles := rhythm.Flag("cycles", "Pattern cycles per round").Default("2").Short('c').Int()
	pass := rhythm.Flag("pass", "Accuracy needed to pass a round, in percent").Default("75").Int()
	tolerance := rhythm.Flag("tolerance", "Largest timing error of an accurate tap").Default("150ms").Short('t').Duration()
	rounds := rhythm.Flag("rounds", "Rounds per session").Default("9").Int()
	target := rhythm.Flag("target", "Passed rounds that end a session").Default("9").Int()
	levelUp := rhythm.Flag("level-up", "Passed rounds per level").Default("3").Int()
	buffer := rhythm.Flag("buffer", "Extra listening time after the pattern").Default("500ms").Duration()
	countdown := rhythm.Flag("countdown", "Countdown ticks before demo and listening").Default("3").Int()
	poll := rhythm.Flag("poll", "Clock polling interval").Default("50ms").Duration()
	patterns := rhythm.Flag("patterns", "Pattern pool file").ExistingFile()
	click := rhythm.Flag("click-sample", "Metronome click sample (wav, mp3, ogg)").ExistingFile()
	hit := rhythm.Flag("hit-sample", "Pattern hit sample (wav, mp3, ogg)").ExistingFile()
	guide := rhythm.Flag("guide", "Play the pattern while listening").Default("true").Bool()

	stim := map[string]stimulusFlags{}
	for _, v := range stimulus.Variants() {
		cmd := app.Command(v.Name(), fmt.Sprintf("Name the %v you hear", v.Name()))
		stim[v.Name()] = stimulusFlags{
			rounds:  cmd.Flag("rounds", "Questions per game").Default("15").Int(),
			levelUp: cmd.Flag("level-up", "Right answers per level").Default("5").Int(),
		}
	}

	history := app.Command(History, "List the best sessions")
	historyGame := history.Flag("game", "Only this game").Default(Rhythm).String()
	historyLimit := history.Flag("limit", "Sessions to list").Default("10").Int()

	command, err := app.Parse(args)
	if nil != err {
		return Settings{}, err
	}

	level, err := logrus.ParseLevel(*logLevel)
	if nil != err {
		return Settings{}, err
	}

	s := Settings{
		Command:      command,
		Seed:         *seed,
		Mute:         *mute,
		DB:           *db,
		LogFile:      *logFile,
		LogLevel:     level,
		HistoryGame:  *historyGame,
		HistoryLimit: *historyLimit,
	}

	s.Rhythm = def
	s.Rhythm.BPM = *bpm
	s.Rhythm.Beats = *beats
	s.Rhythm.Cycles = *cycles
	s.Rhythm.PassThreshold = *pass
	s.Rhythm.Tolerance = *tolerance
	s.Rhythm.MaxRounds = *rounds
	s.Rhythm.TargetScore = *target
	s.Rhythm.LevelUpInterval = *levelUp
	s.Rhythm.MaxLevel = game.Level(*maxLevel)
	s.Rhythm.ListenBuffer = *buffer
	s.Rhythm.CountdownTicks = *countdown
	s.Rhythm.CountdownTick = time.Second
	s.Rhythm.PollInterval = *poll
	s.Rhythm.Guide = *guide
	s.Patterns = *patterns
	s.ClickSample = *click
	s.HitSample = *hit

	s.Stimulus = stimulus.DefaultConfig()
	s.Stimulus.MaxLevel = game.Level(*maxLevel)
	s.Stimulus.Seed = *seed
	if f, ok := stim[command]; ok {
		s.Stimulus.MaxRounds = *f.rounds
		s.Stimulus.LevelUpInterval = *f.levelUp
	}

	switch {
	case command == Rhythm:
		err = s.Rhythm.Validate()
	case command == History:
		if s.HistoryLimit <= 0 {
			err = fmt.Errorf("%w: history limit must be positive, got %v", game.ErrInvalidConfig, s.HistoryLimit)
		}
	default:
		err = s.Stimulus.Validate()
	}
	if nil != err {
		return Settings{}, err
	}
	return s, nil
}
