package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// MinBeatInterval is the shortest beat a session will run at.
const MinBeatInterval = time.Millisecond

// Config is everything a rhythm session needs to know up front.
type Config struct {
	BPM             float64
	Beats           int // Slots in one pattern cycle
	Cycles          int // Pattern cycles per listening window
	PassThreshold   int // Percent
	Tolerance       time.Duration
	MaxRounds       int
	TargetScore     int
	LevelUpInterval int
	MaxLevel        Level
	ListenBuffer    time.Duration
	CountdownTicks  int
	CountdownTick   time.Duration
	PollInterval    time.Duration
	Guide           bool // Play the pattern while listening
}

func DefaultConfig() Config {
	return Config{
		BPM:             100,
		Beats:           8,
		Cycles:          2,
		PassThreshold:   75,
		Tolerance:       150 * time.Millisecond,
		MaxRounds:       9,
		TargetScore:     9,
		LevelUpInterval: 3,
		MaxLevel:        MaxLevel,
		ListenBuffer:    500 * time.Millisecond,
		CountdownTicks:  3,
		CountdownTick:   time.Second,
		PollInterval:    50 * time.Millisecond,
		Guide:           true,
	}
}

// BeatInterval is the time between two beat slots.
func (c Config) BeatInterval() time.Duration {
	if c.BPM <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(time.Minute) / c.BPM))
}

// ListenWindow is how long taps are accepted for one round.
func (c Config) ListenWindow(p Pattern) time.Duration {
	return time.Duration(p.Len())*c.BeatInterval() + c.ListenBuffer
}

func (c Config) Validate() error {
	switch {
	case c.BPM <= 0 || math.IsNaN(c.BPM) || math.IsInf(c.BPM, 0):
		return fmt.Errorf("%w: beats per minute must be positive, got %v", ErrInvalidConfig, c.BPM)
	case c.BeatInterval() < MinBeatInterval:
		return fmt.Errorf("%w: beats per minute too high, got %v", ErrInvalidConfig, c.BPM)
	case c.Beats <= 0:
		return fmt.Errorf("%w: beat count must be positive, got %v", ErrInvalidConfig, c.Beats)
	case c.Cycles <= 0:
		return fmt.Errorf("%w: cycles per round must be positive, got %v", ErrInvalidConfig, c.Cycles)
	case c.PassThreshold < 0 || c.PassThreshold > 100:
		return fmt.Errorf("%w: pass threshold must be within 0-100%%, got %v", ErrInvalidConfig, c.PassThreshold)
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: accuracy tolerance must be positive, got %v", ErrInvalidConfig, c.Tolerance)
	case c.MaxRounds <= 0:
		return fmt.Errorf("%w: max rounds must be positive, got %v", ErrInvalidConfig, c.MaxRounds)
	case c.TargetScore <= 0:
		return fmt.Errorf("%w: target score must be positive, got %v", ErrInvalidConfig, c.TargetScore)
	case c.LevelUpInterval <= 0:
		return fmt.Errorf("%w: level up interval must be positive, got %v", ErrInvalidConfig, c.LevelUpInterval)
	case c.MaxLevel < MinLevel:
		return fmt.Errorf("%w: max level must be at least %v, got %v", ErrInvalidConfig, MinLevel, c.MaxLevel)
	case c.ListenBuffer < 0 || c.CountdownTicks < 0 || c.CountdownTick < 0:
		return fmt.Errorf("%w: negative timing", ErrInvalidConfig)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalidConfig, c.PollInterval)
	}
	return nil
}
