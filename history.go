package main

import (
	"fmt"
	"io"
	"math"

	"github.com/brianng882/tunebits/internal/config"
	"github.com/brianng882/tunebits/internal/render"
	"github.com/brianng882/tunebits/internal/score"
	"github.com/dustin/go-humanize"
)

func listHistory(s config.Settings, w io.Writer) error {
	store, err := score.OpenHistory(s.DB)
	if nil != err {
		return err
	}
	defer store.Close()

	best, err := store.Best(s.HistoryGame, s.HistoryLimit)
	if nil != err {
		return err
	}
	if len(best) == 0 {
		fmt.Fprintf(w, "No %v sessions yet\n", s.HistoryGame)
		return nil
	}

	for i, sum := range best {
		fmt.Fprintf(w, "%2v) %3v/%-3v passed  %3.0f%% accuracy  %-8v  %v\n",
			i+1, sum.Score, sum.Rounds, math.Round(sum.Accuracy),
			render.Duration(sum.Duration()), humanize.Time(sum.Started))
		entries, err := store.Load(sum.Session)
		if nil != err {
			return err
		}
		for _, e := range entries {
			mark := " "
			if e.Result.Passed {
				mark = "+"
			}
			fmt.Fprintf(w, "      %v %-5v round  level %v  %3v%%  %v\n",
				mark, humanize.Ordinal(e.Round), e.Level, e.Result.Accuracy, e.Pattern)
		}
	}
	return nil
}
