package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pools = `// house patterns
#POOL:1:Basic Quarter Notes;
x.x.x.x.
Half Notes: x...x...   // slow

#POOL:3:Syncopated Rhythm;
x..x.xx.
`

func TestParseString(t *testing.T) {
	p := DefaultParser{}
	out, err := p.ParseString(pools)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, game.Level(1), out[0].Level)
	assert.Equal(t, "Basic Quarter Notes", out[0].Name)
	require.Len(t, out[0].Patterns, 2)
	assert.Equal(t, "Basic Quarter Notes", out[0].Patterns[0].Name)
	assert.Equal(t, "x.x.x.x.", out[0].Patterns[0].String())
	assert.Equal(t, "Half Notes", out[0].Patterns[1].Name)
	assert.Equal(t, "x...x...", out[0].Patterns[1].String())

	assert.Equal(t, game.Level(3), out[1].Level)
	assert.Equal(t, game.Level(3), out[1].Patterns[0].Level)
}

var malformed = map[string]string{
	"text before header": "x.x.\n#POOL:1:a;\nx.",
	"missing semicolon":  "#POOL:1:a\nx.",
	"bad level":          "#POOL:zero:a;\nx.",
	"level zero":         "#POOL:0:a;\nx.",
	"bad row":            "#POOL:1:a;\nxo",
	"empty pool":         "#POOL:1:a;\n// nothing\n",
}

func TestParseStringMalformed(t *testing.T) {
	p := DefaultParser{}
	for name, in := range malformed {
		_, err := p.ParseString(in)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestParseFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte(pools), 0o644))

	var p Parser = &DefaultParser{}
	out, err := p.Parse(file)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = p.Parse(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
