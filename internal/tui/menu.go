package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/dotdaily/internal/game"
	"github.com/verte-zerg/dotdaily/internal/model"
)

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	cats := model.Categories()
	switch msg.String() {
	case "up", "k":
		m.cursor = (m.cursor + len(cats) - 1) % len(cats)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(cats)
	case "enter", " ":
		return m.openCategory(cats[m.cursor])
	case "1", "2", "3", "4":
		m.cursor = int(msg.String()[0] - '1')
		return m.openCategory(cats[m.cursor])
	case "s":
		return m.setScreen(screenSettings)
	case "?":
		return m.setScreen(screenWelcome)
	case "q", "esc":
		m.deps.Audio.StopMusic()
		return tea.Quit
	}
	return nil
}

// openCategory starts a fresh session, or shows the result of a category
// already solved today.
func (m *Model) openCategory(c model.Category) tea.Cmd {
	doc, ok := m.deps.Pack.Get(c)
	if !ok {
		m.notice = fmt.Sprintf("No puzzle for %s today.", c)
		return nil
	}
	m.category = c
	m.notice = ""
	opts := game.OptionsFromConfig(m.deps.Config)
	opts.Difficulty = m.settings.Difficulty
	m.session = game.NewSession(doc, opts, m.deps.Clock)
	if rec, done := m.state.Completed[c]; done && rec.Completed {
		m.celebrateUntil = time.Time{}
		return m.setScreen(screenCelebrate)
	}
	m.deps.Audio.StartMusic(c)
	return m.setScreen(screenPlay)
}

func (m *Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("DOT DAILY"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Go, draw, guess. That's it!"))
	b.WriteString("\n\n")
	for i, c := range model.Categories() {
		marker := "  "
		if i == m.cursor {
			marker = selectedStyle.Render("› ")
		}
		name := categoryStyle(c).Render(fmt.Sprintf("%-7s", strings.ToUpper(string(c))))
		b.WriteString(marker + name + "  " + m.categoryStatus(c) + "\n")
	}
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(incorrectStyle.Render(m.notice) + "\n")
	}
	if m.deps.Scheduler != nil {
		b.WriteString(dimStyle.Render("Next puzzles in " + formatCountdown(m.deps.Scheduler.Until())))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("↑/↓ choose  enter play  s settings  ? help  q quit"))
	return b.String()
}

func (m *Model) categoryStatus(c model.Category) string {
	rec, ok := m.state.Completed[c]
	if !ok || !rec.Completed {
		return dimStyle.Render("not played")
	}
	guesses := "guesses"
	if rec.Stats.Guesses == 1 {
		guesses = "guess"
	}
	status := fmt.Sprintf("✓ %ss · %d %s", game.FormatTime(rec.Stats.Time), rec.Stats.Guesses, guesses)
	if badges := achievementBadges(rec.Achievements); len(badges) > 0 {
		status += " · " + strings.Join(badges, " ")
	}
	return correctStyle.Render(status)
}

// achievementBadges lists the short labels of earned trophies.
func achievementBadges(a model.Achievements) []string {
	var out []string
	if a.FirstGuess {
		out = append(out, "☝")
	}
	if a.EarlyCompletion {
		out = append(out, "⚡")
	}
	if a.HardMode {
		out = append(out, "🏆")
	}
	return out
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

var welcomeSteps = []string{
	"Pick a category: four colours, four new puzzles every day.",
	"Press enter to begin and watch the drawing appear line by line.",
	"Press enter again to guess. You have a few seconds to type the word.",
	"Stuck? Tab reveals a letter in easy mode.",
	"Trophies: get it in one, before the drawing finishes, or on hard mode.",
}

func (m *Model) updateWelcome(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "d", "x":
		m.hideWelcome = !m.hideWelcome
	case "enter", " ", "esc", "q":
		if m.hideWelcome && !m.settings.HideWelcome {
			m.settings.HideWelcome = true
			m.saveSettings(context.Background())
		}
		return m.setScreen(screenMenu)
	}
	return nil
}

func (m *Model) viewWelcome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to Dot Daily!"))
	b.WriteString("\n\n")
	for i, step := range welcomeSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\n")
	check := "[ ]"
	if m.hideWelcome || m.settings.HideWelcome {
		check = "[x]"
	}
	b.WriteString(check + " Don't show this again (d)\n\n")
	b.WriteString(selectedStyle.Render("Press enter to play"))
	return b.String()
}
