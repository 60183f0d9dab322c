package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/dotdaily/internal/model"
)

func samplePlays() []model.PlayRecord {
	return []model.PlayRecord{
		{Category: model.Yellow, TimeCs: 1250, Guesses: 1, Progress: 0.4, Achievements: model.Achievements{FirstGuess: true, EarlyCompletion: true}},
		{Category: model.Green, TimeCs: 2000, Guesses: 3, Hints: 2, Progress: 0.8},
		{Category: model.Yellow, TimeCs: 750, Guesses: 2, Progress: 0.6, Achievements: model.Achievements{HardMode: true}},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(samplePlays())
	if s.Plays != 3 || s.Hints != 2 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.BestTime != 7500*time.Millisecond {
		t.Fatalf("expected best time 7.5s, got %v", s.BestTime)
	}
	if s.AvgTime != 13330*time.Millisecond {
		t.Fatalf("expected avg time 13.33s, got %v", s.AvgTime)
	}
	if s.AvgGuesses != 2 {
		t.Fatalf("expected 2 guesses on average, got %v", s.AvgGuesses)
	}
	if s.FirstGuess != 1 || s.HardMode != 1 || s.EarlyCompletion != 1 {
		t.Fatalf("unexpected achievement counts %+v", s)
	}
	if empty := Summarize(nil); empty.Plays != 0 || empty.BestTime != 0 {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		7500 * time.Millisecond: "07.50",
		62 * time.Second:        "1:02.00",
		0:                       "00.00",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", d, want, got)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No plays found.") {
		t.Fatalf("expected empty message, got %q", buf.String())
	}
	buf.Reset()
	if err := RenderSummary(&buf, samplePlays()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Plays: 3", "Best Time: 07.50", "Avg Guesses: 2.00", "Hardest Category: green"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRenderCategoryTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCategoryTable(&buf, samplePlays()); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title, header and 2 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[2], "yellow") || !strings.HasPrefix(lines[3], "green") {
		t.Fatalf("expected menu order, got %q", lines)
	}
}

func TestRenderCurves(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCurvesWithSize(&buf, samplePlays(), 2, 40, 4, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Time (s)") || !strings.Contains(buf.String(), "Guesses") {
		t.Fatalf("expected both series in legend, got %q", buf.String())
	}
}
