package theme

import (
	"fmt"
	"image/color"

	"github.com/brianng882/tunebits/internal/game"
)

type DefaultTheme struct {
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

func (t *DefaultTheme) RenderSlot(hit bool, mark game.Judgement, current bool) string {
	sym := restSym
	if hit {
		sym = hitSym
	}
	if current {
		sym = currentSym
	}
	if mark == game.None {
		if hit || current {
			return paint(judgementColors[game.None], sym)
		}
		return sym
	}
	return paint(getJudgementColor(mark), sym)
}

func (t *DefaultTheme) RenderJudgement(j game.Judgement) string {
	return paint(getJudgementColor(j), j.String())
}

func (t *DefaultTheme) RenderVerdict(passed bool, message string) string {
	if passed {
		return "\033[1;32m" + message + "\033[0m"
	}
	return "\033[1;31m" + message + "\033[0m"
}

const (
	hitSym     = "⬤"
	restSym    = "·"
	currentSym = "◉"
)

var judgementColors = map[game.Judgement]color.RGBA{
	game.None:     {255, 255, 255, 255}, // white
	game.Accurate: {0, 236, 128, 255},   // green
	game.Mistimed: {236, 195, 0, 255},   // yellow
	game.Extra:    {236, 128, 0, 255},   // orange
	game.Missed:   {236, 30, 0, 255},    // red
}

func getJudgementColor(j game.Judgement) color.RGBA {
	col, ok := judgementColors[j]
	if !ok {
		return judgementColors[game.None]
	}
	return col
}
