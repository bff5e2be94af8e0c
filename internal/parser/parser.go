package parser

import "github.com/brianng882/tunebits/internal/game"

type Parser interface {
	Parse(file string) ([]game.Pool, error)
}
