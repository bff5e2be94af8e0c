package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/stimulus"
	"github.com/brianng882/tunebits/internal/theme"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"golang.org/x/term"
)

var shortUnits durafmt.Units

func init() {
	units, err := durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")
	if nil != err {
		panic(fmt.Errorf("unable to decode duration units: %w", err))
	}
	shortUnits = units
}

// Duration formats a play time for display, e.g. "2 m 13 s".
func Duration(d time.Duration) string {
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).Format(shortUnits)
}

// DefaultRenderer draws full screens of ANSI text. Out defaults to stdout.
type DefaultRenderer struct {
	Out   io.Writer
	Theme theme.Theme

	mu           sync.Mutex
	buffer       strings.Builder
	restoreState *term.State
	notice       string
}

func (r *DefaultRenderer) out() io.Writer {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) theme() theme.Theme {
	if nil == r.Theme {
		return &theme.DefaultTheme{}
	}
	return r.Theme
}

func (r *DefaultRenderer) Init() error {
	fd := int(os.Stdout.Fd())
	if nil == r.Out && term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if nil != err {
			return fmt.Errorf("unable to make terminal raw: %w", err)
		}
		r.restoreState = state
	}

	_, err := fmt.Fprintf(r.out(), "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return err
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.out(), "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(int(os.Stdout.Fd()), r.restoreState)
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H\033[K")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) Flush() error {
	_, err := io.WriteString(r.out(), r.buffer.String())
	r.buffer.Reset()
	return err
}

// Notice shows message under the next screen drawn.
func (r *DefaultRenderer) Notice(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notice = message
}

func (r *DefaultRenderer) clear() {
	r.buffer.WriteString("\033[H\033[J")
}

func header(name string, round int, level game.Level, score int) string {
	return fmt.Sprintf("tunebits %v   %v round   level %v (%v)   score %v",
		name, humanize.Ordinal(round), int(level), level.Name(), score)
}

func (r *DefaultRenderer) Rhythm(s game.Snapshot, played time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	th := r.theme()

	r.clear()
	if s.State == game.Idle {
		r.Fill(2, 3, "tunebits rhythm")
		r.Fill(4, 3, "Listen to the pattern, then tap it back.")
		r.Fill(6, 3, "enter start   space/j/k tap   p pause   r listen again   q quit")
		r.footer(8)
		r.Flush()
		return
	}

	r.Fill(2, 3, header("rhythm", s.Round, s.Level, s.Score))
	r.Fill(3, 3, fmt.Sprintf("%v perfect beats   %v played", s.Perfect, Duration(played)))
	r.Fill(5, 3, status(s))

	marks := Marks(s)
	var row strings.Builder
	for i, hit := range s.Pattern.Beats {
		row.WriteString(th.RenderSlot(hit, marks[i], i == s.Beat))
		row.WriteByte(' ')
	}
	r.Fill(7, 3, row.String())
	if s.Pattern.Name != "" {
		r.Fill(8, 3, s.Pattern.Name)
	}

	if nil != s.Result {
		res := s.Result
		r.Fill(10, 3, th.RenderVerdict(res.Passed, res.Message))
		r.Fill(11, 3, fmt.Sprintf("accuracy %v%%   %v/%v correct   %v mistimed   %v extra   %v missed",
			res.Accuracy, res.Correct, res.Expected, res.Mistimed, res.Extra, res.Missed))
	} else if s.State == game.Listening {
		r.Fill(10, 3, fmt.Sprintf("%v taps", len(s.Taps)))
	}

	switch {
	case s.Paused:
		r.Fill(13, 3, "p resume   q quit")
	case s.State == game.Feedback:
		r.Fill(13, 3, "enter continue   r listen again   q quit")
	case s.State == game.Complete:
		r.Fill(13, 3, "enter play again   q quit")
	}
	r.footer(15)
	r.Flush()
}

func status(s game.Snapshot) string {
	if s.Paused {
		return "Paused"
	}
	switch s.State {
	case game.CountdownToDemo:
		return fmt.Sprintf("Listen in %v", s.Countdown)
	case game.PlayingDemo:
		return "Listen..."
	case game.CountdownToListen:
		return fmt.Sprintf("Your turn in %v", s.Countdown)
	case game.Listening:
		return "Tap along!"
	case game.Evaluating:
		return "Checking..."
	case game.Feedback:
		return "How did you do?"
	case game.Complete:
		return fmt.Sprintf("Session complete: %v of %v rounds passed", s.Score, s.Round)
	}
	return ""
}

// Marks is the per slot judgement to show. Before evaluation it is worked
// out from the taps so far.
func Marks(s game.Snapshot) []game.Judgement {
	marks := make([]game.Judgement, s.Pattern.Len())
	if nil != s.Result && len(s.Result.Marks) == len(marks) {
		copy(marks, s.Result.Marks)
		return marks
	}
	for _, tap := range s.Taps {
		if tap.Index < 0 || tap.Index >= len(marks) {
			continue
		}
		switch {
		case !s.Pattern.Hit(tap.Index):
			marks[tap.Index] = game.Extra
		case tap.Accurate:
			marks[tap.Index] = game.Accurate
		case marks[tap.Index] != game.Accurate:
			marks[tap.Index] = game.Mistimed
		}
	}
	return marks
}

func (r *DefaultRenderer) Stimulus(s stimulus.Snapshot, line string, played time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	th := r.theme()

	r.clear()
	if s.State == stimulus.Idle {
		r.Fill(2, 3, "tunebits "+s.Variant)
		r.Fill(4, 3, "enter start   tab play again   q quit")
		r.footer(6)
		r.Flush()
		return
	}

	r.Fill(2, 3, header(s.Variant, s.Round, s.Level, s.Score))
	r.Fill(3, 3, Duration(played)+" played")

	switch s.State {
	case stimulus.Playing:
		r.Fill(5, 3, s.Prompt)
		r.Fill(6, 3, options(s.Options))
		r.Fill(8, 3, "> "+line)
		r.Fill(10, 3, "enter answer   tab play again   esc quit")
	case stimulus.Feedback:
		r.Fill(5, 3, s.Prompt)
		if nil != s.Outcome {
			r.Fill(7, 3, th.RenderVerdict(s.Outcome.Correct, s.Outcome.Message))
		}
		r.Fill(10, 3, "enter continue   tab play again   esc quit")
	case stimulus.Complete:
		r.Fill(5, 3, fmt.Sprintf("Game complete: %v of %v right", s.Score, s.Round))
		r.Fill(10, 3, "enter play again   esc quit")
	}
	r.footer(12)
	r.Flush()
}

func options(opts []stimulus.Option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		if o.ID == o.Name {
			parts[i] = o.ID
		} else {
			parts[i] = fmt.Sprintf("%v (%v)", o.ID, o.Name)
		}
	}
	return strings.Join(parts, "  ")
}

func (r *DefaultRenderer) footer(row int) {
	if r.notice != "" {
		r.Fill(row, 3, "\033[1;33m"+r.notice+"\033[0m")
	}
}
