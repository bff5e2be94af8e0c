package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brianng882/tunebits/internal/game"
)

var ErrMalformed = errors.New("malformed pattern file")

// DefaultParser reads pattern pools in this layout:
//
//	// comment
//	#POOL:1:Basic Quarter Notes;
//	x.x.x.x.
//	Half Notes: x...x...
//
// Each section header names a level and the pool's display name. The rows
// below it are the pool's patterns, optionally prefixed by their own name.
type DefaultParser struct{}

func (p *DefaultParser) Parse(file string) ([]game.Pool, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read pattern file: %w", err)
	}
	return p.ParseString(string(data))
}

func (p *DefaultParser) ParseString(data string) ([]game.Pool, error) {
	str := strings.ReplaceAll(data, "\r", "")
	sections := strings.Split(str, "#POOL:")

	// Anything before the first header may only be comments
	for _, line := range strings.Split(sections[0], "\n") {
		if l := stripComment(line); l != "" {
			return nil, fmt.Errorf("%w: %q outside of a #POOL section", ErrMalformed, l)
		}
	}

	pools := []game.Pool{}
	for _, section := range sections[1:] {
		lines := strings.Split(section, "\n")
		pool, err := p.parseHeader(lines[0])
		if nil != err {
			return nil, err
		}

		for _, line := range lines[1:] {
			line = stripComment(line)
			if line == "" {
				continue
			}
			name, row := pool.Name, line
			if i := strings.Index(line, ":"); i >= 0 {
				name, row = strings.TrimSpace(line[:i]), line[i+1:]
			}
			beats, err := game.ParseRow(row)
			if nil != err {
				return nil, fmt.Errorf("%w: pool %q: %v", ErrMalformed, pool.Name, err)
			}
			if len(beats) == 0 {
				continue
			}
			pool.Patterns = append(pool.Patterns, game.Pattern{
				Name:  name,
				Level: pool.Level,
				Beats: beats,
			})
		}

		if len(pool.Patterns) == 0 {
			return nil, fmt.Errorf("%w: pool %q has no patterns", ErrMalformed, pool.Name)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func (p *DefaultParser) parseHeader(header string) (game.Pool, error) {
	header = strings.TrimSpace(header)
	if !strings.HasSuffix(header, ";") {
		return game.Pool{}, fmt.Errorf("%w: header %q is missing ';'", ErrMalformed, header)
	}
	fields := strings.SplitN(strings.TrimSuffix(header, ";"), ":", 2)
	level, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if nil != err || level < int(game.MinLevel) {
		return game.Pool{}, fmt.Errorf("%w: bad level in header %q", ErrMalformed, header)
	}
	pool := game.Pool{Level: game.Level(level)}
	if len(fields) > 1 {
		pool.Name = strings.TrimSpace(fields[1])
	}
	return pool, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
