package builderui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/builder"
	"github.com/verte-zerg/dotdaily/internal/canvas"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

const (
	drawingCols = 30
	drawingRows = 15
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	gridStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	sketchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	recordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336")).Bold(true)
	paneStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

// mark is what a grid point shows; higher marks win.
type mark int

const (
	markEmpty mark = iota
	markEdge
	markSketchLine
	markRecordLine
	markSketchDot
	markRecordDot
	markPending
	markSelected
)

func (k mark) glyph() string {
	switch k {
	case markEdge:
		return " "
	case markSketchLine:
		return "∙"
	case markRecordLine:
		return "•"
	case markSketchDot:
		return "○"
	case markRecordDot:
		return "●"
	case markPending:
		return "◉"
	case markSelected:
		return "◆"
	}
	return "·"
}

func (k mark) style() lipgloss.Style {
	switch k {
	case markSketchLine, markSketchDot:
		return sketchStyle
	case markRecordLine, markRecordDot:
		return recordStyle
	case markPending, markSelected:
		return pendingStyle
	}
	return gridStyle
}

type gridMarks [builder.GridSize + 1][builder.GridSize + 1]mark

func (g *gridMarks) set(p builder.Point, k mark) {
	if p.X < 0 || p.Y < 0 || p.X > builder.GridSize || p.Y > builder.GridSize {
		return
	}
	if k > g[p.Y][p.X] {
		g[p.Y][p.X] = k
	}
}

func (g *gridMarks) line(dots []builder.Dot, e puzzle.Edge, k mark) {
	if e.From < 0 || e.To < 0 || e.From >= len(dots) || e.To >= len(dots) {
		return
	}
	a, b := dots[e.From], dots[e.To]
	canvas.DrawLine(a.GridX, a.GridY, b.GridX, b.GridY, func(x, y int) {
		g.set(builder.Point{X: x, Y: y}, k)
	})
}

func (m *Model) marks() gridMarks {
	var g gridMarks
	for y := 0; y <= builder.GridSize; y++ {
		for x := 0; x <= builder.GridSize; x++ {
			if p := (builder.Point{X: x, Y: y}); p.OnEdge() {
				g.set(p, markEdge)
			}
		}
	}
	sketch := m.b.Sketch()
	rec := m.b.Recording()
	for _, l := range sketch.Lines {
		g.line(sketch.Dots, l, markSketchLine)
	}
	for _, l := range rec.Lines {
		g.line(rec.Dots, l, markRecordLine)
	}
	for _, d := range sketch.Dots {
		g.set(d.Point(), markSketchDot)
	}
	for _, d := range rec.Dots {
		g.set(d.Point(), markRecordDot)
	}
	pending := m.b.Pending()
	switch m.b.Mode().Kind() {
	case builder.KindSketch:
		if pending >= 0 && pending < len(sketch.Dots) {
			g.set(sketch.Dots[pending].Point(), markPending)
		}
	case builder.KindRecord:
		if pending >= 0 && pending < len(rec.Dots) {
			g.set(rec.Dots[pending].Point(), markPending)
		}
	case builder.KindEdit:
		if sel := m.b.Selected(); sel >= 0 && sel < len(sketch.Dots) {
			g.set(sketch.Dots[sel].Point(), markSelected)
		}
	}
	return g
}

func (m *Model) renderGrid() string {
	g := m.marks()
	lines := make([]string, 0, builder.GridSize+1)
	for y := 0; y <= builder.GridSize; y++ {
		var b strings.Builder
		for x := 0; x <= builder.GridSize; x++ {
			k := g[y][x]
			style := k.style()
			if m.cursor.X == x && m.cursor.Y == y {
				style = cursorStyle
			}
			b.WriteString(style.Render(k.glyph()))
			if x < builder.GridSize {
				b.WriteByte(' ')
			}
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// drawing renders the recording, or the preview playback in preview mode.
func (m *Model) drawing() string {
	if mode, ok := m.b.Mode().(*builder.PreviewMode); ok {
		doc := mode.Player.Document()
		tf := mode.Player.Fit(canvas.Size, canvas.Size)
		scaled := puzzle.Document{Dots: make([]puzzle.Dot, len(doc.Dots)), Sequence: doc.Sequence}
		for i, d := range doc.Dots {
			scaled.Dots[i] = tf.Apply(d)
		}
		return canvas.Draw(scaled, mode.Player.Frame(), drawingCols, drawingRows, canvas.Options{}).String()
	}
	rec := m.b.Recording()
	doc := recordingDocument(rec)
	full := animator.Frame{Partial: -1, Progress: 1}
	for i := range doc.Sequence {
		full.Complete = append(full.Complete, i)
	}
	return canvas.Draw(doc, full, drawingCols, drawingRows, canvas.Options{Dots: true}).String()
}

func recordingDocument(rec builder.Recording) puzzle.Document {
	doc := puzzle.Document{
		Dots:     make([]puzzle.Dot, len(rec.Dots)),
		Sequence: rec.Sequence,
	}
	for i, d := range rec.Dots {
		doc.Dots[i] = puzzle.Dot{X: d.X, Y: d.Y}
	}
	return doc
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderHeader()
	grid := paneStyle.Render(m.renderGrid())
	right := paneStyle.Render(m.drawing())
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, " ", right)
	parts := []string{header, body}
	if m.exporting {
		parts = append(parts, m.renderExport())
	}
	if m.errMsg != "" {
		parts = append(parts, errorStyle.Render(m.errMsg))
	} else if m.status != "" {
		parts = append(parts, footerStyle.Render(m.status))
	}
	parts = append(parts, footerStyle.Render(m.help()))
	content := strings.Join(parts, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	rec := m.b.Recording()
	parts := []string{
		titleStyle.Render("BUILDER"),
		"mode: " + m.b.Mode().Kind().String(),
		fmt.Sprintf("cursor %d,%d", m.cursor.X, m.cursor.Y),
		plural(len(rec.Dots), "dot") + ", " + plural(len(rec.Sequence), "line"),
	}
	if rec.Active {
		parts = append(parts, recStyle.Render("● REC"))
	}
	if m.b.Name != "" {
		parts = append(parts, m.b.Name)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderExport() string {
	lines := []string{titleStyle.Render("Export (enter to save, esc to cancel)")}
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) help() string {
	if m.exporting {
		return "tab: next field  enter: save  esc: cancel"
	}
	modes := []key.Binding{keys.Sketch, keys.Edit, keys.Record, keys.Preview}
	tail := []key.Binding{keys.Export, keys.Quit}
	var bindings []key.Binding
	switch m.b.Mode().Kind() {
	case builder.KindEdit:
		grab := keys.Place
		grab.SetHelp("space", "grab/drop")
		bindings = []key.Binding{keys.Move, grab, keys.Delete, keys.Clear}
	case builder.KindRecord:
		bindings = []key.Binding{keys.Move, keys.Place, keys.Recording, keys.Cancel}
	case builder.KindPreview:
		replay := keys.Place
		replay.SetHelp("space", "replay")
		bindings = []key.Binding{replay}
	default:
		bindings = []key.Binding{keys.Move, keys.Place, keys.Cancel, keys.Clear, keys.Recording}
	}
	bindings = append(bindings, modes...)
	return helpLine(append(bindings, tail...)...)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func joinProblems(problems []string) string {
	return strings.Join(problems, "; ")
}
