package game

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

func testDoc(name string) puzzle.Document {
	return puzzle.Document{
		Name:         name,
		CategoryName: "Test",
		Dots:         []puzzle.Dot{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}},
		Sequence:     []puzzle.Edge{{From: 0, To: 1}, {From: 1, To: 2}},
	}
}

func testOptions(d model.Difficulty) Options {
	opts := DefaultOptions()
	opts.Difficulty = d
	// 200px at 10px/s draws in 20s.
	opts.Animation = animator.Options{PixelsPerSecond: 10}
	return opts
}

func newTestSession(t *testing.T, name string, d model.Difficulty) (*Session, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock(time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC))
	return NewSession(testDoc(name), testOptions(d), mock), mock
}

func TestBeginIsNoOpOutsideNotStarted(t *testing.T) {
	s, mock := newTestSession(t, "CAT", model.Easy)
	if !s.Begin() {
		t.Fatalf("expected first Begin to start")
	}
	mock.Advance(time.Second)
	if s.Begin() {
		t.Fatalf("expected second Begin to be ignored")
	}
	if s.Elapsed() != time.Second {
		t.Fatalf("expected timer not restarted, got %v", s.Elapsed())
	}
}

func TestGuessWindowFreezesClocks(t *testing.T) {
	s, mock := newTestSession(t, "CAT", model.Easy)
	if err := s.OpenGuess(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("expected ErrNotPlaying before begin, got %v", err)
	}
	s.Begin()
	mock.Advance(4 * time.Second)
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	if s.State() != GuessWindow || s.Attempts() != 1 {
		t.Fatalf("expected guess window with 1 attempt, got %v/%d", s.State(), s.Attempts())
	}
	p := s.Progress()
	hint := s.HintRemaining()
	mock.Advance(10 * time.Second)
	if s.Elapsed() != 4*time.Second {
		t.Fatalf("expected elapsed frozen at 4s, got %v", s.Elapsed())
	}
	if s.Progress() != p {
		t.Fatalf("expected progress frozen at %v, got %v", p, s.Progress())
	}
	if s.HintRemaining() != hint || hint != time.Second {
		t.Fatalf("expected hint cooldown frozen at 1s, got %v", s.HintRemaining())
	}
	if s.GuessRemaining() != 10*time.Second {
		t.Fatalf("expected 10s left in guess window, got %v", s.GuessRemaining())
	}
}

func TestCorrectLettersSolve(t *testing.T) {
	s, mock := newTestSession(t, "Hot dog", model.Easy)
	s.Begin()
	mock.Advance(3 * time.Second)
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	mock.Advance(2 * time.Second)
	for i, r := range "hotdo" {
		if got := s.Type(r); got != Revealed {
			t.Fatalf("letter %d: expected Revealed, got %v", i, got)
		}
	}
	if s.Type(' ') != Ignored {
		t.Fatalf("expected space to be ignored")
	}
	if got := s.Type('G'); got != Solved {
		t.Fatalf("expected Solved, got %v", got)
	}
	if s.State() != Completed {
		t.Fatalf("expected Completed, got %v", s.State())
	}
	rec, ok := s.Record()
	if !ok {
		t.Fatalf("expected completion record")
	}
	if rec.Stats.Time != 300 || rec.Stats.Guesses != 1 {
		t.Fatalf("expected 300cs and 1 guess, got %+v", rec.Stats)
	}
	if !rec.Achievements.FirstGuess || !rec.Achievements.EarlyCompletion || rec.Achievements.HardMode {
		t.Fatalf("unexpected achievements: %+v", rec.Achievements)
	}
	if len(s.Frame().Complete) != 2 {
		t.Fatalf("expected full drawing after completion")
	}
}

func TestWrongLetterResumesPlay(t *testing.T) {
	s, mock := newTestSession(t, "CAT", model.Easy)
	s.Begin()
	mock.Advance(2 * time.Second)
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	p := s.Progress()
	mock.Advance(5 * time.Second)
	if got := s.Type('c'); got != Revealed {
		t.Fatalf("expected Revealed, got %v", got)
	}
	if got := s.Type('x'); got != Wrong {
		t.Fatalf("expected Wrong, got %v", got)
	}
	if s.State() != Playing {
		t.Fatalf("expected Playing after wrong letter, got %v", s.State())
	}
	if !s.WrongActive() {
		t.Fatalf("expected wrong flash")
	}
	if s.Progress() != p {
		t.Fatalf("expected progress to continue from %v, got %v", p, s.Progress())
	}
	mock.Advance(800 * time.Millisecond)
	if s.WrongActive() {
		t.Fatalf("expected wrong flash to clear after 800ms")
	}
	if s.Elapsed() != 2800*time.Millisecond {
		t.Fatalf("expected elapsed 2.8s, got %v", s.Elapsed())
	}
	if n, _ := s.Revealed(); n != 1 {
		t.Fatalf("expected correct letters to stay revealed, got %d", n)
	}
}

func TestTimeoutActsAsWrong(t *testing.T) {
	s, mock := newTestSession(t, "CAT", model.Easy)
	s.Begin()
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	mock.Advance(19900 * time.Millisecond)
	if s.Tick() != Ignored {
		t.Fatalf("expected window still open")
	}
	mock.Advance(100 * time.Millisecond)
	if got := s.Tick(); got != TimedOut {
		t.Fatalf("expected TimedOut, got %v", got)
	}
	if s.State() != Playing || !s.WrongActive() {
		t.Fatalf("expected Playing with wrong flash after timeout")
	}
}

func TestSubmitIncompleteIsWrong(t *testing.T) {
	s, _ := newTestSession(t, "CAT", model.Easy)
	s.Begin()
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	s.Type('c')
	if got := s.Submit(); got != Wrong {
		t.Fatalf("expected Wrong on incomplete submit, got %v", got)
	}
}

func TestBackspaceStaysInWindow(t *testing.T) {
	s, mock := newTestSession(t, "CATS", model.Easy)
	s.Begin()
	mock.Advance(6 * time.Second)
	if _, err := s.Hint(); err != nil {
		t.Fatalf("hint: %v", err)
	}
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	if s.Backspace() != Ignored {
		t.Fatalf("expected hinted letter to stay revealed")
	}
	s.Type('a')
	if s.Backspace() != Unrevealed {
		t.Fatalf("expected typed letter removed")
	}
	if n, _ := s.Revealed(); n != 1 {
		t.Fatalf("expected 1 revealed letter, got %d", n)
	}
}

func TestHintRules(t *testing.T) {
	s, mock := newTestSession(t, "DOG", model.Easy)
	if _, err := s.Hint(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("expected ErrNotPlaying, got %v", err)
	}
	s.Begin()
	if _, err := s.Hint(); !errors.Is(err, ErrHintCooldown) {
		t.Fatalf("expected cooldown right after begin, got %v", err)
	}
	mock.Advance(5 * time.Second)
	r, err := s.Hint()
	if err != nil || r != 'D' {
		t.Fatalf("expected hint D, got %q %v", r, err)
	}
	mock.Advance(5 * time.Second)
	if r, err := s.Hint(); err != nil || r != 'O' {
		t.Fatalf("expected hint O, got %q %v", r, err)
	}
	mock.Advance(5 * time.Second)
	if r, err := s.Hint(); err != nil || r != 'G' {
		t.Fatalf("expected the last letter G to be hinted, got %q %v", r, err)
	}
	mock.Advance(5 * time.Second)
	if _, err := s.Hint(); !errors.Is(err, ErrHintUnavailable) {
		t.Fatalf("expected no hint once every letter shows, got %v", err)
	}
	if s.Hints() != 3 {
		t.Fatalf("expected 3 hints, got %d", s.Hints())
	}

	hard, mock := newTestSession(t, "DOG", model.Hard)
	hard.Begin()
	mock.Advance(time.Minute)
	if _, err := hard.Hint(); !errors.Is(err, ErrHardMode) {
		t.Fatalf("expected ErrHardMode, got %v", err)
	}
}

func TestHintCooldownPausedAcrossGuessWindow(t *testing.T) {
	s, mock := newTestSession(t, "DOG", model.Easy)
	s.Begin()
	mock.Advance(2 * time.Second)
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	mock.Advance(15 * time.Second)
	s.Type('z')
	if got := s.HintRemaining(); got != 3*time.Second {
		t.Fatalf("expected 3s cooldown left after resume, got %v", got)
	}
	mock.Advance(3 * time.Second)
	if _, err := s.Hint(); err != nil {
		t.Fatalf("expected hint available, got %v", err)
	}
}

func TestAchievementsHardModeLateSecondGuess(t *testing.T) {
	s, mock := newTestSession(t, "OX", model.Hard)
	s.Begin()
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	s.Type('q')
	mock.Advance(30 * time.Second)
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	s.Type('o')
	if s.Type('x') != Solved {
		t.Fatalf("expected Solved")
	}
	rec, _ := s.Record()
	if !rec.Achievements.HardMode || rec.Achievements.EarlyCompletion || rec.Achievements.FirstGuess {
		t.Fatalf("unexpected achievements: %+v", rec.Achievements)
	}
	if rec.Stats.Guesses != 2 || rec.Stats.Time != 3000 {
		t.Fatalf("unexpected stats: %+v", rec.Stats)
	}
	play, ok := s.Play(model.Blue)
	if !ok || play.Category != model.Blue || play.Puzzle != "OX" {
		t.Fatalf("unexpected play record: %+v", play)
	}
}

func TestEarlyCompletionAtSeventyPercent(t *testing.T) {
	s, mock := newTestSession(t, "OX", model.Easy)
	s.Begin()
	mock.Advance(14 * time.Second)
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	if p := s.Progress(); p != 0.7 {
		t.Fatalf("expected progress 0.7, got %v", p)
	}
	s.Type('O')
	s.Type('X')
	rec, _ := s.Record()
	if !rec.Achievements.EarlyCompletion {
		t.Fatalf("expected early completion at 0.7")
	}
}

func TestCellsAndActiveCell(t *testing.T) {
	s, mock := newTestSession(t, "Hot dog", model.Easy)
	s.Begin()
	mock.Advance(5 * time.Second)
	if _, err := s.Hint(); err != nil {
		t.Fatalf("hint: %v", err)
	}
	cells := s.Cells()
	if len(cells) != 7 || cells[0] != 'H' || cells[1] != 0 || cells[3] != ' ' {
		t.Fatalf("unexpected cells: %q", cells)
	}
	if s.ActiveCell() != 1 {
		t.Fatalf("expected active cell 1, got %d", s.ActiveCell())
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[int64]string{0: "00.00", 5: "00.05", 1234: "12.34", 12345: "123.45", -3: "00.00"}
	for cs, want := range cases {
		if got := FormatTime(cs); got != want {
			t.Fatalf("FormatTime(%d): expected %q, got %q", cs, want, got)
		}
	}
}

func TestHintRevealsSingleLetterWord(t *testing.T) {
	s, mock := newTestSession(t, "A", model.Easy)
	s.Begin()
	mock.Advance(6 * time.Second)
	if r, err := s.Hint(); err != nil || r != 'A' {
		t.Fatalf("expected hint A, got %q %v", r, err)
	}
	if n, total := s.Revealed(); n != 1 || total != 1 {
		t.Fatalf("expected 1/1 revealed, got %d/%d", n, total)
	}
	if s.State() != Playing {
		t.Fatalf("expected a hint not to complete the word, got %v", s.State())
	}
	if err := s.OpenGuess(); err != nil {
		t.Fatalf("open guess: %v", err)
	}
	if o := s.Submit(); o != Solved || s.State() != Completed {
		t.Fatalf("expected submit to solve, got %v %v", o, s.State())
	}
}
