package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/dotdaily/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of plays.
type Summary struct {
	Plays           int
	AvgTime         time.Duration
	BestTime        time.Duration
	AvgGuesses      float64
	AvgProgress     float64
	Hints           int
	HardMode        int
	EarlyCompletion int
	FirstGuess      int
}

// Summarize computes a Summary over plays.
func Summarize(plays []model.PlayRecord) Summary {
	var s Summary
	if len(plays) == 0 {
		return s
	}
	var totalCs int64
	var totalGuesses int
	var totalProgress float64
	best := int64(-1)
	for _, p := range plays {
		totalCs += p.TimeCs
		totalGuesses += p.Guesses
		totalProgress += p.Progress
		s.Hints += p.Hints
		if best < 0 || p.TimeCs < best {
			best = p.TimeCs
		}
		if p.Achievements.HardMode {
			s.HardMode++
		}
		if p.Achievements.EarlyCompletion {
			s.EarlyCompletion++
		}
		if p.Achievements.FirstGuess {
			s.FirstGuess++
		}
	}
	n := len(plays)
	s.Plays = n
	s.AvgTime = centis(totalCs / int64(n))
	s.BestTime = centis(best)
	s.AvgGuesses = float64(totalGuesses) / float64(n)
	s.AvgProgress = totalProgress / float64(n)
	return s
}

func centis(cs int64) time.Duration {
	return time.Duration(cs) * 10 * time.Millisecond
}

// FormatDuration renders d as SS.CC, or M:SS.CC past a minute.
func FormatDuration(d time.Duration) string {
	cs := d.Milliseconds() / 10
	secs := cs / 100
	if secs >= 60 {
		return fmt.Sprintf("%d:%02d.%02d", secs/60, secs%60, cs%100)
	}
	return fmt.Sprintf("%02d.%02d", secs, cs%100)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// SolveSeconds extracts solve times in seconds, oldest first.
func SolveSeconds(plays []model.PlayRecord) []float64 {
	out := make([]float64, len(plays))
	for i, p := range plays {
		out[i] = float64(p.TimeCs) / 100
	}
	return out
}

// RenderSummary prints a summary of plays.
func RenderSummary(w io.Writer, plays []model.PlayRecord) error {
	if len(plays) == 0 {
		_, err := fmt.Fprintln(w, "No plays found.")
		return err
	}
	s := Summarize(plays)
	lines := []string{
		"Summary",
		fmt.Sprintf("Plays: %d", s.Plays),
		fmt.Sprintf("Avg Time: %s", FormatDuration(s.AvgTime)),
		fmt.Sprintf("Best Time: %s", FormatDuration(s.BestTime)),
		fmt.Sprintf("Avg Guesses: %.2f", s.AvgGuesses),
		fmt.Sprintf("Avg Drawn: %.0f%%", s.AvgProgress*100),
		fmt.Sprintf("Hints Used: %d", s.Hints),
		fmt.Sprintf("Hard Mode: %.0f%%", percent(s.HardMode, s.Plays)),
		fmt.Sprintf("Early Solve: %.0f%%", percent(s.EarlyCompletion, s.Plays)),
		fmt.Sprintf("First Guess: %.0f%%", percent(s.FirstGuess, s.Plays)),
	}
	if c, ok := HardestCategory(plays); ok {
		lines = append(lines, fmt.Sprintf("Hardest Category: %s", c))
	}
	lines = append(lines, fmt.Sprintf("Trend: %s", Sparkline(SolveSeconds(plays))), "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints curves for solve time and guesses.
func RenderCurves(w io.Writer, plays []model.PlayRecord, window int) error {
	return RenderCurvesWithSize(w, plays, window, 0, 10, false)
}

// RenderCurvesWithSize prints curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, plays []model.PlayRecord, window, totalWidth, height int, useColor bool) error {
	if len(plays) == 0 {
		return nil
	}
	guesses := make([]float64, len(plays))
	for i, p := range plays {
		guesses[i] = float64(p.Guesses)
	}
	times := MovingAverage(SolveSeconds(plays), window)
	guesses = MovingAverage(guesses, window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress", []Series{
		{Name: "Time (s)", Values: times},
		{Name: "Guesses", Values: guesses},
	}, width, height, useColor)
}

// CategoryRow is the per-category aggregate behind RenderCategoryTable.
type CategoryRow struct {
	Category model.Category
	Summary  Summary
}

// ByCategory groups plays by category in menu order, skipping empty ones.
func ByCategory(plays []model.PlayRecord) []CategoryRow {
	grouped := map[model.Category][]model.PlayRecord{}
	for _, p := range plays {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	rows := make([]CategoryRow, 0, len(grouped))
	for _, c := range model.Categories() {
		if len(grouped[c]) == 0 {
			continue
		}
		rows = append(rows, CategoryRow{Category: c, Summary: Summarize(grouped[c])})
	}
	return rows
}

// RenderCategoryTable prints per-category aggregates.
func RenderCategoryTable(w io.Writer, plays []model.PlayRecord) error {
	rows := ByCategory(plays)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No category stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Category"); err != nil {
		return err
	}
	cols := []column{
		{title: "Category"},
		{title: "Plays", numeric: true},
		{title: "Best", numeric: true},
		{title: "Avg", numeric: true},
		{title: "Guesses", numeric: true},
		{title: "First Guess", numeric: true},
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			string(r.Category),
			fmt.Sprintf("%d", r.Summary.Plays),
			FormatDuration(r.Summary.BestTime),
			FormatDuration(r.Summary.AvgTime),
			fmt.Sprintf("%.2f", r.Summary.AvgGuesses),
			fmt.Sprintf("%.0f%%", percent(r.Summary.FirstGuess, r.Summary.Plays)),
		})
	}
	for _, line := range textTable(cols, tableRows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
