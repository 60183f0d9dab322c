package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/audio"
	"github.com/verte-zerg/dotdaily/internal/canvas"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/game"
	"github.com/verte-zerg/dotdaily/internal/model"
	statsPkg "github.com/verte-zerg/dotdaily/internal/stats"
)

const (
	minCanvasRows     = 6
	defaultCanvasRows = 14
	playChromeRows    = 12
)

func (m *Model) updatePlay(msg tea.KeyMsg) tea.Cmd {
	s := m.session
	if s == nil {
		return m.toMenu()
	}
	switch s.State() {
	case game.NotStarted:
		switch msg.String() {
		case "enter", " ":
			s.Begin()
		case "esc", "q":
			return m.toMenu()
		}
	case game.Playing:
		switch msg.String() {
		case "enter", " ":
			if err := s.OpenGuess(); err == nil {
				m.notice = ""
				m.deps.Audio.PlayEffect(audio.Guess)
			}
		case "tab", "?":
			m.hint()
		case "esc":
			return m.toMenu()
		}
	case game.GuessWindow:
		switch msg.Type {
		case tea.KeyEnter:
			m.handleOutcome(s.Submit())
		case tea.KeyBackspace, tea.KeyDelete:
			s.Backspace()
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.handleOutcome(s.Type(r))
				if s.State() != game.GuessWindow {
					break
				}
			}
		}
	}
	if s.State() == game.Completed {
		return m.finish()
	}
	return nil
}

func (m *Model) hint() {
	r, err := m.session.Hint()
	switch {
	case err == nil:
		m.notice = fmt.Sprintf("Hint: %c", r)
		m.deps.Audio.PlayEffect(audio.Hint)
	case errors.Is(err, game.ErrHardMode):
		m.notice = "No hints in hard mode."
	case errors.Is(err, game.ErrHintCooldown):
		m.notice = fmt.Sprintf("Next hint in %ds.", ceilSeconds(m.session.HintRemaining()))
	case errors.Is(err, game.ErrHintUnavailable):
		m.notice = "Every letter is already showing. Press enter to guess."
	}
}

func (m *Model) handleOutcome(o game.Outcome) {
	switch o {
	case game.Revealed:
		m.deps.Audio.PlayEffect(audio.Correct)
	case game.Wrong:
		m.notice = "Not quite!"
		m.deps.Audio.PlayEffect(audio.Incorrect)
	case game.TimedOut:
		m.notice = "Time's up!"
		m.deps.Audio.PlayEffect(audio.Incorrect)
	}
}

// finish persists the solved category and starts the celebration.
func (m *Model) finish() tea.Cmd {
	ctx := context.Background()
	rec, ok := m.session.Record()
	if !ok {
		return nil
	}
	if m.state.Completed == nil {
		m.state.Completed = map[model.Category]model.CompletionRecord{}
	}
	m.state.Completed[m.category] = rec
	if play, ok := m.session.Play(m.category); ok {
		m.history = append(m.history, play)
		if m.deps.Store != nil {
			if _, err := m.deps.Store.InsertPlay(ctx, play); err != nil {
				m.deps.Logger.Error().Err(err).Msg("save play")
			}
		}
	}
	if m.deps.Store != nil {
		if err := m.deps.Store.SaveCompletion(ctx, m.category, rec); err != nil {
			m.deps.Logger.Error().Err(err).Msg("save completion")
		}
	}
	m.deps.Logger.Info().
		Str("category", string(m.category)).
		Int64("time_cs", rec.Stats.Time).
		Int("guesses", rec.Stats.Guesses).
		Msg("puzzle solved")
	m.deps.Audio.StopMusic()
	m.deps.Audio.PlayEffect(audio.Complete)
	m.notice = ""
	m.celebrateUntil = m.now().Add(m.deps.Config.Celebration)
	return m.setScreen(screenCelebrate)
}

func (m *Model) updateCelebrate(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", " ", "esc", "q":
		return m.toMenu()
	}
	return nil
}

func (m *Model) canvasSize() (int, int) {
	rows := defaultCanvasRows
	if m.height > 0 {
		rows = max(m.height-playChromeRows, minCanvasRows)
	}
	cols := rows * 2
	if m.width > 0 {
		cols = min(cols, max(m.width-8, 1))
	}
	return cols, rows
}

func (m *Model) drawing() string {
	cols, rows := m.canvasSize()
	doc := m.session.Document()
	frame := m.session.Frame()
	if m.screen == screenCelebrate {
		frame = animator.New(doc, animator.DefaultOptions()).FrameAt(1)
	}
	r := canvas.Draw(doc, frame, cols, rows, canvas.Options{})
	return categoryStyle(m.category).Render(r.String())
}

func (m *Model) answerRow() string {
	cells := m.session.Cells()
	cursor := -1
	if m.session.State() == game.GuessWindow || m.session.WrongActive() {
		cursor = m.session.ActiveCell()
	}
	cols, _ := m.canvasSize()
	return layoutAnswer(answerWords(cells, cursor, m.session.WrongActive()), max(cols, 20))
}

func (m *Model) viewPlay() string {
	s := m.session
	if s == nil {
		return ""
	}
	doc := s.Document()
	var b strings.Builder
	b.WriteString(categoryStyle(m.category).Render(strings.ToUpper(string(m.category))))
	if doc.CategoryName != "" {
		b.WriteString(dimStyle.Render(" · " + doc.CategoryName))
	}
	b.WriteString("\n\n")
	b.WriteString(m.drawing())
	b.WriteString("\n\n")
	b.WriteString(m.answerRow())
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) statusLine() string {
	s := m.session
	if m.notice != "" && (s.WrongActive() || s.State() == game.Playing) {
		style := selectedStyle
		if s.WrongActive() {
			style = incorrectStyle
		}
		return style.Render(m.notice)
	}
	switch s.State() {
	case game.NotStarted:
		return selectedStyle.Render("Press enter to begin")
	case game.GuessWindow:
		return selectedStyle.Render(fmt.Sprintf("Type your guess! %ds left", ceilSeconds(s.GuessRemaining())))
	case game.Playing:
		if !s.HintsEnabled() {
			return dimStyle.Render("enter guess · hard mode")
		}
		if left := s.HintRemaining(); left > 0 {
			return dimStyle.Render(fmt.Sprintf("enter guess · hint in %ds", ceilSeconds(left)))
		}
		return dimStyle.Render("enter guess · tab hint")
	}
	return ""
}

func (m *Model) renderFooter() string {
	if m.session == nil {
		return ""
	}
	s := m.session
	segments := []string{
		"Time " + game.FormatTime(clock.Centiseconds(s.Elapsed())),
		fmt.Sprintf("Guesses %d", s.Attempts()),
		fmt.Sprintf("Drawn %d%%", int(s.Progress()*100)),
	}
	if s.Hints() > 0 {
		segments = append(segments, fmt.Sprintf("Hints %d", s.Hints()))
	}
	if best, ok := m.bestTime(m.category); ok {
		segments = append(segments, "Best "+statsPkg.FormatDuration(best))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) bestTime(c model.Category) (time.Duration, bool) {
	for _, row := range statsPkg.ByCategory(m.history) {
		if row.Category == c {
			return row.Summary.BestTime, true
		}
	}
	return 0, false
}

func (m *Model) viewCelebrate() string {
	s := m.session
	if s == nil {
		return ""
	}
	rec := m.state.Completed[m.category]
	var b strings.Builder
	b.WriteString(categoryStyle(m.category).Render("SOLVED! " + strings.ToUpper(s.Document().Name)))
	b.WriteString("\n\n")
	b.WriteString(m.drawing())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Time %ss · %d guesses\n", game.FormatTime(rec.Stats.Time), rec.Stats.Guesses)
	for _, line := range achievementLines(rec.Achievements) {
		b.WriteString(selectedStyle.Render(line) + "\n")
	}
	b.WriteString("\n")
	if !m.celebrateUntil.IsZero() {
		left := m.celebrateUntil.Sub(m.now())
		b.WriteString(footerStyle.Render(fmt.Sprintf("Back to the menu in %ds", ceilSeconds(left))))
	} else {
		b.WriteString(footerStyle.Render("enter back to menu"))
	}
	return b.String()
}

func achievementLines(a model.Achievements) []string {
	var out []string
	if a.FirstGuess {
		out = append(out, "☝ Got it in one")
	}
	if a.EarlyCompletion {
		out = append(out, "⚡ Fast fingers")
	}
	if a.HardMode {
		out = append(out, "🏆 Hard mode")
	}
	return out
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
