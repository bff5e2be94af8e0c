package score

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/brianng882/tunebits/internal/game"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one played round as kept in the history database.
type Entry struct {
	Session   string
	Game      string
	Round     int
	Level     game.Level
	Pattern   string // Rhythm rounds only, in game.ParseRow form
	Interval  time.Duration
	Tolerance time.Duration
	Result    game.Result
	Taps      []game.Tap
	PlayedAt  time.Time
}

// Summary aggregates the rounds of one session.
type Summary struct {
	Session  string
	Game     string
	Rounds   int
	Score    int
	Accuracy float64
	Started  time.Time
	Finished time.Time
}

func (s Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// TapsCompact groups tap times by slot to keep the stored blob small.
type TapsCompact struct {
	Index int
	Times []time.Duration
}

func compactTaps(taps []game.Tap) []TapsCompact {
	slots := 0
	for _, t := range taps {
		if t.Index+1 > slots {
			slots = t.Index + 1
		}
	}
	ins := make([]TapsCompact, slots)
	for i := range ins {
		ins[i] = TapsCompact{Index: i, Times: []time.Duration{}}
	}
	for _, t := range taps {
		if t.Index < 0 {
			continue
		}
		ins[t.Index].Times = append(ins[t.Index].Times, t.Elapsed)
	}
	return ins
}

// uncompactTaps returns the tap times in the order they happened
func uncompactTaps(taps []TapsCompact) []time.Duration {
	times := []time.Duration{}
	for _, t := range taps {
		times = append(times, t.Times...)
	}
	sort.SliceStable(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens or creates the sqlite database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, fmt.Errorf("unable to open history: %w", err)
	}
	// A :memory: database only lives as long as its one connection
	db.SetMaxOpenConns(1)

	initStatement := `
	create table if not exists rounds
	  (
		  id integer not null primary key,
		  session text not null,
		  game text not null,
		  round integer,
		  level integer,
		  pattern text,
		  interval_ns integer,
		  tolerance_ns integer,
		  accuracy integer,
		  expected integer,
		  correct integer,
		  mistimed integer,
		  extra integer,
		  missed integer,
		  passed integer,
		  message text,
		  taps blob,
		  played_at integer
	  );
	create index if not exists rounds_session on rounds(session);
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to create history tables: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Close() error {
	if nil == s.db {
		return nil
	}
	return s.db.Close()
}

func (s *HistoryStore) Save(e Entry) error {
	data, err := json.Marshal(compactTaps(e.Taps))
	if nil != err {
		return fmt.Errorf("unable to marshal taps: %w", err)
	}
	if e.PlayedAt.IsZero() {
		e.PlayedAt = time.Now()
	}
	passed := 0
	if e.Result.Passed {
		passed = 1
	}
	_, err = s.db.Exec(`insert into rounds(
		session, game, round, level, pattern, interval_ns, tolerance_ns,
		accuracy, expected, correct, mistimed, extra, missed, passed, message,
		taps, played_at) values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Session, e.Game, e.Round, int(e.Level), e.Pattern, int64(e.Interval), int64(e.Tolerance),
		e.Result.Accuracy, e.Result.Expected, e.Result.Correct, e.Result.Mistimed,
		e.Result.Extra, e.Result.Missed, passed, e.Result.Message,
		data, e.PlayedAt.UnixNano(),
	)
	if nil != err {
		return fmt.Errorf("unable to save round: %w", err)
	}
	return nil
}

// Load returns the rounds of a session in play order. Rhythm taps are
// classified again from their stored times.
func (s *HistoryStore) Load(session string) ([]Entry, error) {
	rows, err := s.db.Query(`select session, game, round, level, pattern, interval_ns, tolerance_ns,
		accuracy, expected, correct, mistimed, extra, missed, passed, message, taps, played_at
		from rounds where session = ? order by round, id`, session)
	if nil != err {
		return nil, fmt.Errorf("unable to load session %v: %w", session, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var level, passed int
		var interval, tolerance, playedAt int64
		var data []byte
		if err := rows.Scan(&e.Session, &e.Game, &e.Round, &level, &e.Pattern, &interval, &tolerance,
			&e.Result.Accuracy, &e.Result.Expected, &e.Result.Correct, &e.Result.Mistimed,
			&e.Result.Extra, &e.Result.Missed, &passed, &e.Result.Message, &data, &playedAt); nil != err {
			return nil, fmt.Errorf("unable to read round: %w", err)
		}
		e.Level = game.Level(level)
		e.Interval = time.Duration(interval)
		e.Tolerance = time.Duration(tolerance)
		e.Result.Passed = passed == 1
		e.PlayedAt = time.Unix(0, playedAt)

		var compact []TapsCompact
		if err := json.Unmarshal(data, &compact); nil != err {
			return nil, fmt.Errorf("unable to unmarshal taps: %w", err)
		}
		e.Taps = replay(e, uncompactTaps(compact))
		e.Result.Taps = len(e.Taps)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func replay(e Entry, times []time.Duration) []game.Tap {
	beats, err := game.ParseRow(e.Pattern)
	if nil != err || e.Interval <= 0 {
		return []game.Tap{}
	}
	c := NewCollector(&DefaultScorer{Tolerance: e.Tolerance}, game.Pattern{Beats: beats}, e.Interval)
	start := e.PlayedAt
	for _, t := range times {
		c.Record(start.Add(t), t)
	}
	return c.Taps()
}

// Best lists the highest scoring sessions of a game, most accurate first
// among equal scores.
func (s *HistoryStore) Best(gameName string, limit int) ([]Summary, error) {
	rows, err := s.db.Query(`select session, game, count(*), sum(passed), avg(accuracy),
		min(played_at), max(played_at)
		from rounds where game = ? group by session
		order by sum(passed) desc, avg(accuracy) desc, min(played_at) limit ?`, gameName, limit)
	if nil != err {
		return nil, fmt.Errorf("unable to list best sessions: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		var started, finished int64
		if err := rows.Scan(&sum.Session, &sum.Game, &sum.Rounds, &sum.Score, &sum.Accuracy,
			&started, &finished); nil != err {
			return nil, fmt.Errorf("unable to read session summary: %w", err)
		}
		sum.Started = time.Unix(0, started)
		sum.Finished = time.Unix(0, finished)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
