package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/dotdaily/internal/canvas"
)

// Series is a named run of values, oldest first.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	axisLabelTop      = "max"
	axisLabelMid      = "mid"
	axisLabelBottom   = "min"
	axisSeparator     = " │ "
	scaleNote         = "Scaled per series; see min/max below."
	colorReset        = "\x1b[0m"
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// curve is one series resampled to the plot width and drawn on its own
// raster, scaled between lo and hi.
type curve struct {
	name   string
	values []float64
	lo, hi float64
	style  lineStyle
	color  ansiColor
	raster *canvas.Raster
}

// PlotSeries writes a braille line chart of series to w.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with color forced on unless NO_COLOR is
// set.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, width, height, forceColor)
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	width, height = plotSize(width, height)
	curves := buildCurves(series, width, height)
	if len(curves) == 0 {
		return nil
	}

	var lines []string
	if title != "" {
		lines = append(lines, title)
	}
	lines = append(lines, scaleNote)
	for _, c := range curves {
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f", c.name, c.lo, c.hi))
	}
	color := shouldUseColor(w, forceColor)
	labels := makeAxisLabels(height)
	for row := 0; row < height; row++ {
		lines = append(lines, renderPlotRow(curves, labels[row], row, width, color))
	}
	lines = append(lines, renderLegend(curves, color), "")

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func plotSize(width, height int) (int, int) {
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(canvas.TerminalWidth())
	}
	return max(width, minPlotWidth), height
}

func buildCurves(series []Series, width, height int) []curve {
	var curves []curve
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		i := len(curves)
		c := curve{
			name:   s.Name,
			values: resampleSeries(s.Values, width),
			style:  lineStyles[i%len(lineStyles)],
			color:  colorPalette[i%len(colorPalette)],
			raster: canvas.NewRaster(width, height),
		}
		c.lo, c.hi = valueRange(c.values)
		c.trace(height * 4)
		curves = append(curves, c)
	}
	return curves
}

// trace joins consecutive samples with the curve's line style. Each sample
// sits two dots apart, one braille cell per value.
func (c *curve) trace(dots int) {
	plot := func(x, y int) {
		if c.style.shouldPlot(x) {
			c.raster.Set(x, y)
		}
	}
	prevX, prevY := -1, -1
	for i, v := range c.values {
		x, y := i*2, valueToRow(v, c.lo, c.hi, dots)
		if prevX < 0 {
			plot(x, y)
		} else {
			canvas.DrawLine(prevX, prevY, x, y, plot)
		}
		prevX, prevY = x, y
	}
}

// renderPlotRow merges every curve's cells for one text row. Overlapping
// cells take the color of the first curve present.
func renderPlotRow(curves []curve, label string, row, width int, color bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*s%s", utf8.RuneCountInString(axisLabelTop), label, axisSeparator)
	for col := 0; col < width; col++ {
		var mask uint8
		owner := -1
		for i, c := range curves {
			m := c.raster.Mask(col, row)
			if m == 0 {
				continue
			}
			if owner < 0 {
				owner = i
			}
			mask |= m
		}
		ch := string(canvas.Rune(mask))
		if color && owner >= 0 {
			ch = curves[owner].color.code + ch + colorReset
		}
		b.WriteString(ch)
	}
	return b.String()
}

// PlotWidthFor is the number of plot columns that fit in totalWidth once the
// axis gutter is taken off.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	gutter := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-gutter, minPlotWidth)
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func makeAxisLabels(height int) []string {
	labels := make([]string, max(height, 0))
	switch {
	case height > 2:
		labels[height/2] = axisLabelMid
		fallthrough
	case height > 1:
		labels[height-1] = axisLabelBottom
		fallthrough
	case height > 0:
		labels[0] = axisLabelTop
	}
	return labels
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries stretches or squeezes values to exactly width samples.
// Squeezing averages buckets and stretching interpolates linearly.
func resampleSeries(values []float64, width int) []float64 {
	switch {
	case len(values) == 0 || width <= 0:
		return nil
	case len(values) == width:
		return slices.Clone(values)
	case len(values) > width:
		return bucketAverage(values, width)
	default:
		return interpolate(values, width)
	}
}

func bucketAverage(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := float64(len(values))
	for i := range out {
		lo := int(float64(i) * n / float64(width))
		hi := min(max(int(float64(i+1)*n/float64(width)), lo+1), len(values))
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func interpolate(values []float64, width int) []float64 {
	out := make([]float64, width)
	last := len(values) - 1
	if width == 1 || last == 0 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	step := float64(last) / float64(width-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(math.Floor(pos))
		if idx >= last {
			out[i] = values[last]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx] + (values[idx+1]-values[idx])*frac
	}
	return out
}

// valueRange is the min and max of values, widened by one either side when
// the series is flat.
func valueRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if math.Abs(hi-lo) < 1e-9 {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func valueToRow(v, lo, hi float64, dots int) int {
	if dots <= 1 || hi == lo {
		return 0
	}
	row := int(math.Round((hi - v) / (hi - lo) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

func renderLegend(curves []curve, color bool) string {
	parts := make([]string, 0, len(curves))
	marker := canvas.Rune(0x01)
	for _, c := range curves {
		label := fmt.Sprintf("%c %s (%s)", marker, c.name, c.style.name)
		if color {
			label = c.color.code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
