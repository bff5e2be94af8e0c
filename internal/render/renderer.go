package render

import (
	"time"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/stimulus"
)

type Renderer interface {
	Init() error
	Deinit() error
	Fill(row, column int, message string)
	Flush() error
	Rhythm(s game.Snapshot, played time.Duration)
	Stimulus(s stimulus.Snapshot, line string, played time.Duration)
	Notice(message string)
}
