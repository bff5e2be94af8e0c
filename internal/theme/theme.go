package theme

import "github.com/brianng882/tunebits/internal/game"

type Theme interface {
	// RenderSlot draws one beat slot of a pattern. current marks the slot
	// that is sounding.
	RenderSlot(hit bool, mark game.Judgement, current bool) string
	RenderJudgement(j game.Judgement) string
	RenderVerdict(passed bool, message string) string
}
