package pattern

import (
	"math/rand"
	"time"

	"github.com/brianng882/tunebits/internal/game"
)

type Generator interface {
	// Generate picks a pattern of exactly beats slots for level. It always
	// returns a pattern with at least one hit.
	Generate(level game.Level, beats int) game.Pattern
}

// Fallback is used whenever a level has no usable pool.
var Fallback = game.MustPattern("Basic Quarter Notes", game.MinLevel, "x.x.x.x.")

// Pools are the built in patterns. Every pattern repeats within a bar so it
// can be learnt from one listen.
var Pools = []game.Pool{
	{
		Level: 1,
		Name:  "Basic Quarter Notes",
		Patterns: []game.Pattern{
			game.MustPattern("Basic Quarter Notes", 1, "x.x.x.x."),
			game.MustPattern("Half Notes", 1, "x...x..."),
			game.MustPattern("Three And Rest", 1, "x.x.x..."),
			game.MustPattern("Pairs", 1, "xx..xx.."),
		},
	},
	{
		Level: 2,
		Name:  "Eighth Note Pattern",
		Patterns: []game.Pattern{
			game.MustPattern("Eighth Note Pattern", 2, "x..x.x.."),
			game.MustPattern("Tresillo Fill", 2, "x.xx.x.."),
			game.MustPattern("Push", 2, "x..xx.x."),
		},
	},
	{
		Level: 3,
		Name:  "Syncopated Rhythm",
		Patterns: []game.Pattern{
			game.MustPattern("Syncopated Rhythm", 3, "x..x.xx."),
			game.MustPattern("Offbeat Lift", 3, ".x.x.xx."),
			game.MustPattern("Triple Tail", 3, "x.x..xxx"),
		},
	},
}

type DefaultGenerator struct {
	pools map[game.Level][]game.Pattern
	rng   *rand.Rand
}

// NewGenerator draws from pools, seeded with seed. A zero seed uses the clock.
func NewGenerator(pools []game.Pool, seed int64) *DefaultGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &DefaultGenerator{
		pools: map[game.Level][]game.Pattern{},
		rng:   rand.New(rand.NewSource(seed)),
	}
	for _, pool := range pools {
		for _, p := range pool.Patterns {
			if p.Expected() == 0 {
				continue
			}
			p = p.Clone()
			p.Level = pool.Level
			if p.Name == "" {
				p.Name = pool.Name
			}
			g.pools[pool.Level] = append(g.pools[pool.Level], p)
		}
	}
	return g
}

func (g *DefaultGenerator) Generate(level game.Level, beats int) game.Pattern {
	if beats <= 0 {
		beats = Fallback.Len()
	}
	candidates := g.pools[level]
	if len(candidates) > 0 {
		// Some patterns lose all their hits when truncated, so try each once
		start := g.rng.Intn(len(candidates))
		for i := range candidates {
			p := candidates[(start+i)%len(candidates)].Fit(beats)
			if p.Expected() > 0 {
				return p
			}
		}
	}
	p := Fallback.Fit(beats)
	p.Level = level
	if p.Expected() == 0 {
		p.Beats[0] = true
	}
	return p
}
