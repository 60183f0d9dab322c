package statsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/dotdaily/internal/game"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/stats"
)

const plotHeight = 10

var (
	border  = lipgloss.Color("#4A4A4A")
	bright  = lipgloss.Color("#F0F0F0")
	tabBase = lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true)
	activeTabStyle   = tabBase.Foreground(bright).Bold(true).BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveTabStyle = tabBase.Foreground(lipgloss.Color("#B0B0B0")).BorderForeground(border)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle        = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(border)
	cardLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle   = lipgloss.NewStyle().Foreground(bright).Bold(true)
	tableTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	footer := m.footer()
	return lipgloss.JoinVertical(lipgloss.Left,
		fitBlock(m.tabBar(), m.width, 0),
		fitBlock(m.filterSummary(), m.width, 1),
		fitBlock(m.body(), m.width, m.bodyHeight()),
		fitBlock(footer, m.width, 0),
	)
}

// bodyHeight is what remains after the tab bar, filter line and footer.
func (m *Model) bodyHeight() int {
	header := max(lipgloss.Height(activeTabStyle.Render("X")), 1) + 1
	footer := 1
	if m.filter == nil && m.err != nil {
		footer++
	}
	return max(m.height-header-footer, 1)
}

func (m *Model) tabBar() string {
	rendered := make([]string, tabCount)
	for i, name := range tabNames {
		style := inactiveTabStyle
		if i == m.tab {
			style = activeTabStyle
		}
		rendered[i] = style.Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) filterSummary() string {
	category, since, last := "any", "any", "all"
	if m.cfg.Category != "" {
		category = string(m.cfg.Category)
	}
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	line := fmt.Sprintf("Filters: category=%s  since=%s  last=%s  window=%d", category, since, last, m.cfg.Window)
	return mutedStyle.Render(runewidth.Truncate(line, max(m.width, 1), "..."))
}

func (m *Model) footer() string {
	if m.filter != nil {
		return mutedStyle.Render(helpLine(keys.NextField, keys.PrevField, keys.Apply, keys.Cancel))
	}
	help := mutedStyle.Render(helpLine(keys.Prev, keys.Next, keys.Scroll, keys.Wider, keys.Narrower, keys.Filter, keys.Quit))
	if m.err != nil {
		return help + "\n" + errorStyle.Render(m.err.Error())
	}
	return help
}

func (m *Model) body() string {
	switch {
	case m.filter != nil:
		return m.filter.view()
	case m.tab != tabPlays:
		return m.pages[m.tab].View()
	case len(m.report.Plays) == 0:
		return "No plays found."
	default:
		return tableTextStyle.Render(m.plays.View())
	}
}

func overviewPage(plays []model.PlayRecord, window, width int) string {
	if len(plays) == 0 {
		return "No plays found."
	}
	var curves strings.Builder
	if err := stats.RenderCurvesWithSize(&curves, plays, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return summaryCards(stats.Summarize(plays), width) + "\n\n" + strings.TrimRight(curves.String(), "\n")
}

func summaryCards(s stats.Summary, width int) string {
	cards := []string{
		card("Plays", strconv.Itoa(s.Plays)),
		card("Avg Time", stats.FormatDuration(s.AvgTime)),
		card("Best Time", stats.FormatDuration(s.BestTime)),
		card("Avg Guesses", fmt.Sprintf("%.2f", s.AvgGuesses)),
		card("Trophies", fmt.Sprintf("☝ %d  ⚡ %d  🏆 %d", s.FirstGuess, s.EarlyCompletion, s.HardMode)),
	}
	if width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
	)
}

func card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func categoriesPage(report stats.Report) string {
	if len(report.Plays) == 0 {
		return "No plays found."
	}
	var b strings.Builder
	if err := stats.RenderCategoryTable(&b, report.Plays); err != nil {
		return fmt.Sprintf("Failed to render categories: %v", err)
	}
	b.WriteString("Fastest Solves\n")
	for i, p := range report.Fastest {
		fmt.Fprintf(&b, "%d. %-7s %-12s %ss  %d guesses\n", i+1, p.Category, p.Puzzle, game.FormatTime(p.TimeCs), p.Guesses)
	}
	return strings.TrimRight(b.String(), "\n")
}

var playColumns = []table.Column{
	{Title: "Date", Width: 16},
	{Title: "Category", Width: 8},
	{Title: "Puzzle", Width: 12},
	{Title: "Time", Width: 8},
	{Title: "Guesses", Width: 7},
	{Title: "Hints", Width: 5},
	{Title: "Drawn", Width: 6},
	{Title: "Trophies", Width: 9},
}

// newPlayTable lists plays newest first.
func newPlayTable(plays []model.PlayRecord, width, height int) table.Model {
	rows := make([]table.Row, len(plays))
	for i, p := range plays {
		rows[len(plays)-1-i] = table.Row{
			p.EndedAt.Local().Format("2006-01-02 15:04"),
			string(p.Category),
			p.Puzzle,
			game.FormatTime(p.TimeCs),
			strconv.Itoa(p.Guesses),
			strconv.Itoa(p.Hints),
			fmt.Sprintf("%.0f%%", p.Progress*100),
			trophies(p.Achievements),
		}
	}
	t := table.New(
		table.WithColumns(playColumns),
		table.WithRows(rows),
		table.WithHeight(max(height-1, 1)),
		table.WithStyles(playTableStyles()),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	return t
}

func trophies(a model.Achievements) string {
	var out []string
	for _, t := range []struct {
		earned bool
		icon   string
	}{
		{a.FirstGuess, "☝"},
		{a.EarlyCompletion, "⚡"},
		{a.HardMode, "🏆"},
	} {
		if t.earned {
			out = append(out, t.icon)
		}
	}
	return strings.Join(out, " ")
}

func playTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(border).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	s.Cell = s.Cell.Padding(0, 1, 0, 0)
	s.Selected = s.Cell.Foreground(bright).Bold(true)
	return s
}

// fitBlock pads every line of s to width and, when height is positive, cuts
// or pads s to exactly height lines.
func fitBlock(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(width, lipgloss.Left, line)
	}
	return strings.Join(lines, "\n")
}
