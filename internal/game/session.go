// Package game implements the guess state machine for one puzzle.
package game

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// State is the session phase.
type State int

// Session phases.
const (
	NotStarted State = iota
	Playing
	GuessWindow
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Playing:
		return "playing"
	case GuessWindow:
		return "guessing"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome reports what an input did.
type Outcome int

// Input outcomes.
const (
	Ignored Outcome = iota
	Revealed
	Wrong
	Unrevealed
	Solved
	TimedOut
)

// Errors returned by Session operations.
var (
	ErrNotPlaying      = errors.New("game: not playing")
	ErrHardMode        = errors.New("game: hints are disabled in hard mode")
	ErrHintCooldown    = errors.New("game: hint is cooling down")
	ErrHintUnavailable = errors.New("game: no letter left to hint")
)

// Options configure a session.
type Options struct {
	Difficulty     model.Difficulty
	GuessTimeLimit time.Duration
	HintCooldown   time.Duration
	WrongFlash     time.Duration
	Animation      animator.Options
}

// DefaultOptions returns the standard timings.
func DefaultOptions() Options {
	return Options{
		Difficulty:     model.Easy,
		GuessTimeLimit: 20 * time.Second,
		HintCooldown:   5 * time.Second,
		WrongFlash:     800 * time.Millisecond,
		Animation:      animator.DefaultOptions(),
	}
}

// OptionsFromConfig builds session options from resolved play settings.
func OptionsFromConfig(cfg model.Config) Options {
	return Options{
		Difficulty:     cfg.Difficulty,
		GuessTimeLimit: cfg.GuessTimeLimit,
		HintCooldown:   cfg.HintCooldown,
		WrongFlash:     cfg.WrongFlash,
		Animation: animator.Options{
			PixelsPerSecond: cfg.PixelsPerSecond,
			MinLineTime:     cfg.MinLineTime,
		},
	}
}

// Session plays one puzzle from start to completion.
type Session struct {
	tp   clock.TimeProvider
	opts Options
	doc  puzzle.Document
	anim *animator.Animator

	word     []rune
	revealed int

	state     State
	watch     *clock.Stopwatch
	guess     *clock.Countdown
	cooldown  *clock.Countdown
	startedAt time.Time

	attempts    int
	hints       int
	windowStart int

	capturedElapsed  time.Duration
	capturedProgress float64
	wrongUntil       time.Time

	record *model.CompletionRecord
}

// NewSession prepares a session in the NotStarted state.
func NewSession(doc puzzle.Document, opts Options, tp clock.TimeProvider) *Session {
	if tp == nil {
		tp = clock.System{}
	}
	return &Session{
		tp:       tp,
		opts:     opts,
		doc:      doc,
		anim:     animator.New(doc, opts.Animation),
		word:     doc.Word(),
		watch:    clock.NewStopwatch(tp),
		guess:    clock.NewCountdown(tp, opts.GuessTimeLimit),
		cooldown: clock.NewCountdown(tp, opts.HintCooldown),
	}
}

// Begin starts the timer, the drawing and the first hint cooldown. It does
// nothing unless the session has not started yet.
func (s *Session) Begin() bool {
	if s.state != NotStarted {
		return false
	}
	now := s.tp.Now()
	s.state = Playing
	s.startedAt = now
	s.watch.Start()
	s.anim.Start(now)
	s.cooldown.Start()
	return true
}

// OpenGuess freezes play and opens a timed guess window.
func (s *Session) OpenGuess() error {
	if s.state != Playing {
		return ErrNotPlaying
	}
	now := s.tp.Now()
	s.watch.Pause()
	s.capturedElapsed = s.watch.Elapsed()
	s.capturedProgress = s.anim.Freeze(now)
	s.cooldown.Pause()
	s.guess.Start()
	s.attempts++
	s.windowStart = s.revealed
	s.wrongUntil = time.Time{}
	s.state = GuessWindow
	return nil
}

// Type handles a letter typed during a guess window.
func (s *Session) Type(r rune) Outcome {
	if s.state != GuessWindow {
		return Ignored
	}
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return Ignored
	}
	if s.revealed >= len(s.word) {
		return Ignored
	}
	if unicode.ToUpper(r) != s.word[s.revealed] {
		s.closeWrong()
		return Wrong
	}
	s.revealed++
	if s.revealed == len(s.word) {
		s.complete()
		return Solved
	}
	return Revealed
}

// Submit handles Enter during a guess window.
func (s *Session) Submit() Outcome {
	if s.state != GuessWindow {
		return Ignored
	}
	if s.revealed == len(s.word) {
		s.complete()
		return Solved
	}
	s.closeWrong()
	return Wrong
}

// Backspace removes the last letter typed in the current guess window.
// Letters revealed by hints or earlier guesses stay revealed.
func (s *Session) Backspace() Outcome {
	if s.state != GuessWindow || s.revealed <= s.windowStart {
		return Ignored
	}
	s.revealed--
	return Unrevealed
}

// Tick polls the guess countdown; an expired window counts as a wrong guess.
func (s *Session) Tick() Outcome {
	if s.state != GuessWindow || !s.guess.Expired() {
		return Ignored
	}
	s.closeWrong()
	return TimedOut
}

// Hint reveals the next hidden letter. Revealing the last one does not
// complete the word; the player still confirms with Submit.
func (s *Session) Hint() (rune, error) {
	if s.state != Playing {
		return 0, ErrNotPlaying
	}
	if s.opts.Difficulty == model.Hard {
		return 0, ErrHardMode
	}
	if s.cooldown.Active() {
		return 0, ErrHintCooldown
	}
	if s.revealed >= len(s.word) {
		return 0, ErrHintUnavailable
	}
	r := s.word[s.revealed]
	s.revealed++
	s.hints++
	s.cooldown.Start()
	return r, nil
}

func (s *Session) closeWrong() {
	now := s.tp.Now()
	s.guess.Stop()
	s.watch.Resume()
	if s.capturedProgress < 1 {
		s.anim.ResumeFrom(now, s.capturedProgress)
	}
	s.cooldown.Resume()
	s.wrongUntil = now.Add(s.opts.WrongFlash)
	s.state = Playing
}

func (s *Session) complete() {
	s.guess.Stop()
	s.cooldown.Stop()
	s.state = Completed
	s.record = &model.CompletionRecord{
		Completed: true,
		Stats: model.CompletionStats{
			Time:    clock.Centiseconds(s.capturedElapsed),
			Guesses: s.attempts,
		},
		Achievements: model.Achievements{
			HardMode:        s.opts.Difficulty == model.Hard,
			EarlyCompletion: s.capturedProgress < 1,
			FirstGuess:      s.attempts == 1,
		},
	}
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Document returns the puzzle being played.
func (s *Session) Document() puzzle.Document {
	return s.doc
}

// Record returns the completion record once solved.
func (s *Session) Record() (model.CompletionRecord, bool) {
	if s.record == nil {
		return model.CompletionRecord{}, false
	}
	return *s.record, true
}

// Play returns the history row for a completed session.
func (s *Session) Play(category model.Category) (model.PlayRecord, bool) {
	rec, ok := s.Record()
	if !ok {
		return model.PlayRecord{}, false
	}
	return model.PlayRecord{
		Category:     category,
		Puzzle:       s.doc.Name,
		Difficulty:   s.opts.Difficulty,
		StartedAt:    s.startedAt,
		EndedAt:      s.tp.Now(),
		TimeCs:       rec.Stats.Time,
		Guesses:      rec.Stats.Guesses,
		Hints:        s.hints,
		Progress:     s.capturedProgress,
		Achievements: rec.Achievements,
	}, true
}

// Elapsed is the play time excluding guess windows.
func (s *Session) Elapsed() time.Duration {
	return s.watch.Elapsed()
}

// Progress is the current drawing fraction.
func (s *Session) Progress() float64 {
	return s.anim.Progress(s.tp.Now())
}

// Frame is the current drawing. A solved puzzle shows the whole drawing.
func (s *Session) Frame() animator.Frame {
	switch s.state {
	case NotStarted:
		return animator.Frame{Partial: -1}
	case Completed:
		return s.anim.FrameAt(1)
	}
	return s.anim.Sample(s.tp.Now())
}

// Attempts is the number of guess windows opened.
func (s *Session) Attempts() int {
	return s.attempts
}

// Hints is the number of letters revealed by hints.
func (s *Session) Hints() int {
	return s.hints
}

// GuessRemaining is the time left in the open guess window.
func (s *Session) GuessRemaining() time.Duration {
	if s.state != GuessWindow {
		return 0
	}
	return s.guess.Remaining()
}

// HintRemaining is the cooldown left before the next hint.
func (s *Session) HintRemaining() time.Duration {
	return s.cooldown.Remaining()
}

// HintsEnabled reports whether the difficulty allows hints.
func (s *Session) HintsEnabled() bool {
	return s.opts.Difficulty != model.Hard
}

// WrongActive reports whether the wrong-guess flash is showing.
func (s *Session) WrongActive() bool {
	return !s.wrongUntil.IsZero() && s.tp.Now().Before(s.wrongUntil)
}

// Revealed returns how many letters are revealed and the total.
func (s *Session) Revealed() (int, int) {
	return s.revealed, len(s.word)
}

// Cells returns the answer layout: revealed letters, 0 for hidden letters
// and ' ' for word gaps.
func (s *Session) Cells() []rune {
	cells := make([]rune, 0, len(s.doc.Name))
	letter := 0
	for _, r := range s.doc.Name {
		if unicode.IsSpace(r) {
			cells = append(cells, ' ')
			continue
		}
		if letter < s.revealed {
			cells = append(cells, unicode.ToUpper(r))
		} else {
			cells = append(cells, 0)
		}
		letter++
	}
	return cells
}

// ActiveCell is the index into Cells of the next letter to guess, or -1.
func (s *Session) ActiveCell() int {
	if s.revealed >= len(s.word) {
		return -1
	}
	letter := 0
	for i, r := range []rune(s.doc.Name) {
		if unicode.IsSpace(r) {
			continue
		}
		if letter == s.revealed {
			return i
		}
		letter++
	}
	return -1
}

// FormatTime renders centiseconds as SS.CC.
func FormatTime(cs int64) string {
	if cs < 0 {
		cs = 0
	}
	return fmt.Sprintf("%02d.%02d", cs/100, cs%100)
}
