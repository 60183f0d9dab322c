// Package builder implements the puzzle authoring state machine: sketching a
// grid drawing, editing it, recording a draw order and previewing it.
package builder

import (
	"errors"
	"time"

	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// Grid geometry. Points run 0..GridSize on both axes; only MinDrawGrid..MaxDrawGrid
// may hold dots.
const (
	GridSize      = 20
	MinDrawGrid   = 1
	MaxDrawGrid   = 19
	GridPointSize = 28.0
)

// Timing thresholds for pointer gestures.
const (
	ShortClick  = 200 * time.Millisecond
	DoubleClick = 300 * time.Millisecond
)

// Errors returned by builder operations.
var (
	ErrOutOfBounds  = errors.New("builder: cannot place on the grid edge")
	ErrRecording    = errors.New("builder: stop recording first")
	ErrNotRecording = errors.New("builder: not recording")
	ErrOccupied     = errors.New("builder: grid point already has a dot")
	ErrEmptyImport  = errors.New("builder: document has no dots")
)

// Point is a grid coordinate.
type Point struct {
	X int
	Y int
}

// OnEdge reports whether p lies on the unplaceable outer ring (or beyond).
func (p Point) OnEdge() bool {
	return p.X < MinDrawGrid || p.X > MaxDrawGrid || p.Y < MinDrawGrid || p.Y > MaxDrawGrid
}

// Dot is a placed point with its grid and canvas coordinates.
type Dot struct {
	GridX int
	GridY int
	X     float64
	Y     float64
}

func newDot(p Point) Dot {
	return Dot{GridX: p.X, GridY: p.Y, X: float64(p.X) * GridPointSize, Y: float64(p.Y) * GridPointSize}
}

// Point returns the dot's grid coordinate.
func (d Dot) Point() Point {
	return Point{X: d.GridX, Y: d.GridY}
}

// Sketch is the free-form drawing used as a guide.
type Sketch struct {
	Dots  []Dot
	Lines []puzzle.Edge
}

// Recording is the drawing that gets exported, with its draw order.
type Recording struct {
	Active   bool
	Dots     []Dot
	Lines    []puzzle.Edge
	Sequence []puzzle.Edge
}

// Kind names a builder mode.
type Kind int

// Builder modes.
const (
	KindSketch Kind = iota
	KindEdit
	KindRecord
	KindPreview
)

func (k Kind) String() string {
	switch k {
	case KindSketch:
		return "sketch"
	case KindEdit:
		return "edit"
	case KindRecord:
		return "record"
	case KindPreview:
		return "preview"
	}
	return "unknown"
}

// Mode is one of *SketchMode, *EditMode, *RecordMode or *PreviewMode.
type Mode interface {
	Kind() Kind
}

// SketchMode places sketch dots and chains lines between them.
type SketchMode struct {
	Pending int
}

// EditMode selects, drags and deletes sketch dots.
type EditMode struct {
	Selected  int
	pressed   bool
	pressedAt time.Time
	moved     bool
}

// RecordMode appends to the recording while it is active.
type RecordMode struct {
	Pending int
}

// PreviewMode plays back the recorded sequence.
type PreviewMode struct {
	Player *Preview
}

// Kind implements Mode.
func (*SketchMode) Kind() Kind { return KindSketch }

// Kind implements Mode.
func (*EditMode) Kind() Kind { return KindEdit }

// Kind implements Mode.
func (*RecordMode) Kind() Kind { return KindRecord }

// Kind implements Mode.
func (*PreviewMode) Kind() Kind { return KindPreview }

// Builder holds both drawings and the active mode.
type Builder struct {
	tp     clock.TimeProvider
	sketch Sketch
	rec    Recording
	mode   Mode

	lastClickAt time.Time
	lastClickPt Point

	Name     string
	Category string
}

// New returns a builder in sketch mode.
func New(tp clock.TimeProvider) *Builder {
	if tp == nil {
		tp = clock.System{}
	}
	return &Builder{tp: tp, mode: &SketchMode{Pending: -1}}
}

// Mode returns the active mode.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Sketch returns a copy of the sketch drawing.
func (b *Builder) Sketch() Sketch {
	return Sketch{
		Dots:  append([]Dot(nil), b.sketch.Dots...),
		Lines: append([]puzzle.Edge(nil), b.sketch.Lines...),
	}
}

// Recording returns a copy of the recording.
func (b *Builder) Recording() Recording {
	return Recording{
		Active:   b.rec.Active,
		Dots:     append([]Dot(nil), b.rec.Dots...),
		Lines:    append([]puzzle.Edge(nil), b.rec.Lines...),
		Sequence: append([]puzzle.Edge(nil), b.rec.Sequence...),
	}
}

// SetMode switches modes. Switching is refused while recording.
func (b *Builder) SetMode(k Kind) error {
	if b.rec.Active {
		return ErrRecording
	}
	switch k {
	case KindSketch:
		b.mode = &SketchMode{Pending: -1}
	case KindEdit:
		b.mode = &EditMode{Selected: -1}
	case KindRecord:
		b.mode = &RecordMode{Pending: -1}
	case KindPreview:
		player := NewPreview(b.rec.Dots, b.rec.Sequence)
		player.Play(b.tp.Now())
		b.mode = &PreviewMode{Player: player}
	}
	b.lastClickAt = time.Time{}
	return nil
}

// StartRecording switches to record mode and discards any previous recording.
func (b *Builder) StartRecording() error {
	if b.rec.Active {
		return ErrRecording
	}
	b.rec = Recording{Active: true}
	b.mode = &RecordMode{Pending: -1}
	return nil
}

// StopRecording ends the active recording, keeping what was recorded.
func (b *Builder) StopRecording() error {
	if !b.rec.Active {
		return ErrNotRecording
	}
	b.rec.Active = false
	if m, ok := b.mode.(*RecordMode); ok {
		m.Pending = -1
	}
	return nil
}

// Cancel drops the pending point of the chain being drawn.
func (b *Builder) Cancel() {
	switch m := b.mode.(type) {
	case *SketchMode:
		m.Pending = -1
	case *RecordMode:
		m.Pending = -1
	case *EditMode:
		m.Selected = -1
		m.pressed = false
	}
}

// Pending returns the pending dot index in sketch or record mode, or -1.
func (b *Builder) Pending() int {
	switch m := b.mode.(type) {
	case *SketchMode:
		return m.Pending
	case *RecordMode:
		return m.Pending
	}
	return -1
}

// Selected returns the selected sketch dot in edit mode, or -1.
func (b *Builder) Selected() int {
	if m, ok := b.mode.(*EditMode); ok {
		return m.Selected
	}
	return -1
}

// Click is a press immediately followed by a release.
func (b *Builder) Click(p Point) error {
	if err := b.Press(p); err != nil {
		return err
	}
	return b.Release()
}

// Press handles a pointer press on grid point p.
func (b *Builder) Press(p Point) error {
	now := b.tp.Now()
	switch m := b.mode.(type) {
	case *SketchMode, *RecordMode:
		if b.isDoubleClick(now, p) {
			b.lastClickAt = time.Time{}
			b.Cancel()
			return nil
		}
		b.lastClickAt = now
		b.lastClickPt = p
		if p.OnEdge() {
			return ErrOutOfBounds
		}
		if sm, ok := m.(*SketchMode); ok {
			b.sketchPress(sm, p)
			return nil
		}
		return b.recordPress(m.(*RecordMode), p)
	case *EditMode:
		idx := findDot(b.sketch.Dots, p)
		if idx < 0 {
			m.Selected = -1
			return nil
		}
		m.Selected = idx
		m.pressed = true
		m.pressedAt = now
		m.moved = false
	}
	return nil
}

// Move handles pointer movement; in edit mode it drags the pressed dot.
func (b *Builder) Move(p Point) error {
	m, ok := b.mode.(*EditMode)
	if !ok || !m.pressed || m.Selected < 0 {
		return nil
	}
	cur := b.sketch.Dots[m.Selected]
	if cur.Point() == p {
		return nil
	}
	if p.OnEdge() {
		return ErrOutOfBounds
	}
	if other := findDot(b.sketch.Dots, p); other >= 0 && other != m.Selected {
		return ErrOccupied
	}
	b.sketch.Dots[m.Selected] = newDot(p)
	m.moved = true
	return nil
}

// Release ends a press. In edit mode a short press without movement deletes
// the dot.
func (b *Builder) Release() error {
	m, ok := b.mode.(*EditMode)
	if !ok || !m.pressed {
		return nil
	}
	m.pressed = false
	if m.moved || m.Selected < 0 {
		return nil
	}
	if b.tp.Now().Sub(m.pressedAt) < ShortClick {
		b.removeSketchDot(m.Selected)
		m.Selected = -1
	}
	return nil
}

func (b *Builder) isDoubleClick(now time.Time, p Point) bool {
	if b.lastClickAt.IsZero() || p != b.lastClickPt {
		return false
	}
	return now.Sub(b.lastClickAt) < DoubleClick
}

func (b *Builder) sketchPress(m *SketchMode, p Point) {
	existing := findDot(b.sketch.Dots, p)
	if m.Pending < 0 {
		if existing >= 0 {
			m.Pending = existing
			return
		}
		b.sketch.Dots = append(b.sketch.Dots, newDot(p))
		m.Pending = len(b.sketch.Dots) - 1
		return
	}
	if existing == m.Pending {
		return
	}
	target := existing
	if target < 0 {
		b.sketch.Dots = append(b.sketch.Dots, newDot(p))
		target = len(b.sketch.Dots) - 1
	}
	b.sketch.Lines = addLine(b.sketch.Lines, puzzle.Edge{From: m.Pending, To: target})
	m.Pending = target
}

func (b *Builder) recordPress(m *RecordMode, p Point) error {
	if !b.rec.Active {
		return ErrNotRecording
	}
	target := findDot(b.rec.Dots, p)
	if target < 0 {
		dot := newDot(p)
		if s := findDot(b.sketch.Dots, p); s >= 0 {
			dot = b.sketch.Dots[s]
		}
		b.rec.Dots = append(b.rec.Dots, dot)
		target = len(b.rec.Dots) - 1
	}
	if m.Pending >= 0 && m.Pending != target {
		edge := puzzle.Edge{From: m.Pending, To: target}
		b.rec.Lines = addLine(b.rec.Lines, edge)
		b.rec.Sequence = append(b.rec.Sequence, edge)
	}
	m.Pending = target
	return nil
}

// removeSketchDot deletes dot i and every line touching it, shifting higher
// indices down by one.
func (b *Builder) removeSketchDot(i int) {
	if i < 0 || i >= len(b.sketch.Dots) {
		return
	}
	b.sketch.Dots = append(b.sketch.Dots[:i:i], b.sketch.Dots[i+1:]...)
	lines := b.sketch.Lines[:0]
	for _, l := range b.sketch.Lines {
		if l.From == i || l.To == i {
			continue
		}
		if l.From > i {
			l.From--
		}
		if l.To > i {
			l.To--
		}
		lines = append(lines, l)
	}
	b.sketch.Lines = lines
}

// ClearSketch removes every sketch dot and line.
func (b *Builder) ClearSketch() {
	b.sketch = Sketch{}
	switch m := b.mode.(type) {
	case *SketchMode:
		m.Pending = -1
	case *EditMode:
		m.Selected = -1
		m.pressed = false
	}
}

// Import loads a document into the recording, snapping dots to the grid.
func (b *Builder) Import(doc puzzle.Document) error {
	if b.rec.Active {
		return ErrRecording
	}
	if len(doc.Dots) == 0 {
		return ErrEmptyImport
	}
	rec := Recording{Dots: make([]Dot, 0, len(doc.Dots))}
	for _, d := range doc.Dots {
		rec.Dots = append(rec.Dots, Dot{
			GridX: int(d.X/GridPointSize + 0.5),
			GridY: int(d.Y/GridPointSize + 0.5),
			X:     d.X,
			Y:     d.Y,
		})
	}
	for _, e := range doc.Sequence {
		if e.From == e.To || e.From < 0 || e.To < 0 || e.From >= len(rec.Dots) || e.To >= len(rec.Dots) {
			continue
		}
		rec.Sequence = append(rec.Sequence, e)
		rec.Lines = addLine(rec.Lines, e)
	}
	b.rec = rec
	b.Name = doc.Name
	b.Category = doc.CategoryName
	return nil
}

// Export validates the recording and builds the puzzle document.
func (b *Builder) Export() (puzzle.Document, error) {
	return ExportRecording(b.rec, b.Name, b.Category)
}

func findDot(dots []Dot, p Point) int {
	for i, d := range dots {
		if d.GridX == p.X && d.GridY == p.Y {
			return i
		}
	}
	return -1
}

// addLine appends e unless the unordered pair is already present.
func addLine(lines []puzzle.Edge, e puzzle.Edge) []puzzle.Edge {
	for _, l := range lines {
		if (l.From == e.From && l.To == e.To) || (l.From == e.To && l.To == e.From) {
			return lines
		}
	}
	return append(lines, e)
}
