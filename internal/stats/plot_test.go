package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/dotdaily/internal/canvas"
)

func gridRows(out string) []string {
	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, axisSeparator) {
			rows = append(rows, line)
		}
	}
	return rows
}

func TestPlotSolveTimes(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Solve Time", []Series{
		{Name: "Time (s)", Values: []float64{42, 30, 18, 12}},
		{Name: "Unplayed"},
	}, 12, 3)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Solve Time\n") {
		t.Fatalf("expected the title first, got %q", out)
	}
	if !strings.Contains(out, "Time (s): min=12.00 max=42.00") {
		t.Fatalf("expected the range line, got %q", out)
	}
	if strings.Contains(out, "Unplayed") {
		t.Fatalf("expected empty series to be skipped")
	}
	if !strings.Contains(out, "Legend: "+string(canvas.Rune(0x01))+" Time (s) (solid)") {
		t.Fatalf("expected a legend entry, got %q", out)
	}
	rows := gridRows(out)
	if len(rows) != 3 {
		t.Fatalf("expected 3 grid rows, got %d", len(rows))
	}
	for i, label := range []string{"max", "mid", "min"} {
		if !strings.HasPrefix(rows[i], label+axisSeparator) {
			t.Fatalf("row %d: expected %q label, got %q", i, label, rows[i])
		}
		cells := strings.TrimPrefix(rows[i], label+axisSeparator)
		if utf8.RuneCountInString(cells) != 12 {
			t.Fatalf("row %d: expected 12 cells, got %q", i, cells)
		}
	}
	first := []rune(strings.TrimPrefix(rows[0], "max"+axisSeparator))[0]
	if first == canvas.Rune(0) {
		t.Fatalf("expected the slowest solve in the top-left cell")
	}
}

func TestPlotNothingToDraw(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "Guesses"}}, 20, 4); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotColor(t *testing.T) {
	series := []Series{{Name: "Guesses", Values: []float64{3, 1, 2}}}

	t.Setenv("NO_COLOR", "")
	var colored bytes.Buffer
	if err := PlotSeriesWithColor(&colored, "", series, 10, 2, true); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if !strings.Contains(colored.String(), colorPalette[0].code) {
		t.Fatalf("expected forced color codes")
	}

	t.Setenv("NO_COLOR", "1")
	var plain bytes.Buffer
	if err := PlotSeriesWithColor(&plain, "", series, 10, 2, true); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("expected NO_COLOR to win over forced color")
	}
}

func TestResampleSeries(t *testing.T) {
	cases := []struct {
		in    []float64
		width int
		want  []float64
	}{
		{[]float64{1, 3, 5, 7}, 2, []float64{2, 6}},
		{[]float64{0, 10}, 3, []float64{0, 5, 10}},
		{[]float64{4}, 3, []float64{4, 4, 4}},
		{nil, 3, nil},
	}
	for _, tc := range cases {
		got := resampleSeries(tc.in, tc.width)
		if len(got) != len(tc.want) {
			t.Fatalf("resample %v to %d: expected %v, got %v", tc.in, tc.width, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("resample %v to %d: expected %v, got %v", tc.in, tc.width, tc.want, got)
			}
		}
	}
}

func TestDashedStyle(t *testing.T) {
	dashed := lineStyles[1]
	var pattern strings.Builder
	for x := 0; x < 12; x++ {
		if dashed.shouldPlot(x) {
			pattern.WriteByte('#')
		} else {
			pattern.WriteByte('.')
		}
	}
	if pattern.String() != "###...###..." {
		t.Fatalf("unexpected dash pattern %q", pattern.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	gutter := utf8.RuneCountInString(axisLabelTop + axisSeparator)
	if got := PlotWidthFor(80); got != 80-gutter {
		t.Fatalf("expected %d columns, got %d", 80-gutter, got)
	}
	if got := PlotWidthFor(gutter + 3); got != minPlotWidth {
		t.Fatalf("expected narrow terminals to clamp to %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected unknown width to use %d, got %d", minPlotWidth, got)
	}
}
