package builder

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

func newTestBuilder(t *testing.T) (*Builder, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	return New(mock), mock
}

// click presses and releases at p, then lets enough time pass that the next
// click is not a double click.
func click(t *testing.T, b *Builder, mock *clock.Mock, p Point) {
	t.Helper()
	if err := b.Click(p); err != nil {
		t.Fatalf("click %v: %v", p, err)
	}
	mock.Advance(time.Second)
}

func TestSketchChainsLines(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{5, 2})
	click(t, b, mock, Point{5, 5})
	s := b.Sketch()
	if len(s.Dots) != 3 {
		t.Fatalf("expected 3 dots, got %d", len(s.Dots))
	}
	want := []puzzle.Edge{{From: 0, To: 1}, {From: 1, To: 2}}
	if len(s.Lines) != 2 || s.Lines[0] != want[0] || s.Lines[1] != want[1] {
		t.Fatalf("expected chained lines %v, got %v", want, s.Lines)
	}
	if s.Dots[1].X != 5*GridPointSize || s.Dots[1].Y != 2*GridPointSize {
		t.Fatalf("expected canvas coordinates from grid, got %+v", s.Dots[1])
	}
	if b.Pending() != 2 {
		t.Fatalf("expected last dot pending, got %d", b.Pending())
	}
}

func TestSketchReusesDotsAndDedupesLines(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{4, 2})
	click(t, b, mock, Point{2, 2})
	s := b.Sketch()
	if len(s.Dots) != 2 {
		t.Fatalf("expected existing dot reused, got %d dots", len(s.Dots))
	}
	if len(s.Lines) != 1 {
		t.Fatalf("expected reverse line deduped, got %v", s.Lines)
	}
	click(t, b, mock, Point{2, 2})
	if got := b.Sketch(); len(got.Dots) != 2 || len(got.Lines) != 1 {
		t.Fatalf("clicking the pending dot must not change the sketch, got %+v", got)
	}
}

func TestEdgeOfGridRejected(t *testing.T) {
	b, _ := newTestBuilder(t)
	for _, p := range []Point{{0, 5}, {5, 0}, {20, 5}, {5, 20}, {-1, 3}} {
		if err := b.Click(p); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds for %v, got %v", p, err)
		}
	}
	if len(b.Sketch().Dots) != 0 {
		t.Fatalf("expected no dots placed on the edge")
	}
}

func TestDoubleClickCancelsPending(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{3, 3})
	if err := b.Click(Point{6, 6}); err != nil {
		t.Fatalf("click: %v", err)
	}
	mock.Advance(100 * time.Millisecond)
	if err := b.Click(Point{6, 6}); err != nil {
		t.Fatalf("click: %v", err)
	}
	if b.Pending() != -1 {
		t.Fatalf("expected pending cleared by double click, got %d", b.Pending())
	}
	mock.Advance(time.Second)
	click(t, b, mock, Point{9, 9})
	if got := len(b.Sketch().Lines); got != 1 {
		t.Fatalf("expected new chain to start without a line, got %d lines", got)
	}
}

func TestEditShortClickDeletesAndCompacts(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{4, 2})
	click(t, b, mock, Point{6, 2})
	click(t, b, mock, Point{8, 2})
	if err := b.SetMode(KindEdit); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if err := b.Click(Point{4, 2}); err != nil {
		t.Fatalf("click: %v", err)
	}
	s := b.Sketch()
	if len(s.Dots) != 3 {
		t.Fatalf("expected dot removed, got %d dots", len(s.Dots))
	}
	if len(s.Lines) != 1 || s.Lines[0] != (puzzle.Edge{From: 1, To: 2}) {
		t.Fatalf("expected remaining line renumbered to 1-2, got %v", s.Lines)
	}
	if b.Selected() != -1 {
		t.Fatalf("expected selection cleared")
	}
}

func TestEditLongPressKeepsDot(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{2, 2})
	_ = b.SetMode(KindEdit)
	if err := b.Press(Point{2, 2}); err != nil {
		t.Fatalf("press: %v", err)
	}
	mock.Advance(ShortClick)
	_ = b.Release()
	if len(b.Sketch().Dots) != 1 {
		t.Fatalf("expected long press to keep the dot")
	}
	if b.Selected() != 0 {
		t.Fatalf("expected dot to stay selected, got %d", b.Selected())
	}
}

func TestEditDragMovesDot(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{7, 7})
	_ = b.SetMode(KindEdit)
	_ = b.Press(Point{2, 2})
	if err := b.Move(Point{3, 2}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := b.Move(Point{0, 2}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds dragging to the edge, got %v", err)
	}
	if err := b.Move(Point{7, 7}); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected ErrOccupied dragging onto a dot, got %v", err)
	}
	_ = b.Release()
	s := b.Sketch()
	if len(s.Dots) != 2 {
		t.Fatalf("a drag must not delete, got %d dots", len(s.Dots))
	}
	if s.Dots[0].Point() != (Point{3, 2}) || s.Dots[0].X != 3*GridPointSize {
		t.Fatalf("expected dot moved to (3,2), got %+v", s.Dots[0])
	}
}

func TestRecordRequiresActiveRecording(t *testing.T) {
	b, _ := newTestBuilder(t)
	_ = b.SetMode(KindRecord)
	if err := b.Click(Point{3, 3}); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestRecordingBuildsSequence(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{4, 4})
	if err := b.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	click(t, b, mock, Point{4, 4})
	click(t, b, mock, Point{8, 4})
	click(t, b, mock, Point{8, 8})
	click(t, b, mock, Point{4, 4})
	click(t, b, mock, Point{8, 4})
	rec := b.Recording()
	if len(rec.Dots) != 3 {
		t.Fatalf("expected 3 recorded dots, got %d", len(rec.Dots))
	}
	if len(rec.Sequence) != 4 {
		t.Fatalf("expected every stroke in the sequence, got %v", rec.Sequence)
	}
	if len(rec.Lines) != 3 {
		t.Fatalf("expected repeated stroke deduped in lines, got %v", rec.Lines)
	}
	if rec.Sequence[3] != (puzzle.Edge{From: 2, To: 0}) && rec.Sequence[3] != (puzzle.Edge{From: 0, To: 1}) {
		t.Fatalf("unexpected final stroke %v", rec.Sequence[3])
	}
	if len(b.Sketch().Dots) != 1 {
		t.Fatalf("recording must not touch the sketch")
	}
}

func TestModeSwitchBlockedWhileRecording(t *testing.T) {
	b, _ := newTestBuilder(t)
	_ = b.StartRecording()
	if err := b.SetMode(KindSketch); !errors.Is(err, ErrRecording) {
		t.Fatalf("expected ErrRecording, got %v", err)
	}
	if err := b.StopRecording(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := b.SetMode(KindSketch); err != nil {
		t.Fatalf("expected mode switch after stop, got %v", err)
	}
	if err := b.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestStartRecordingResets(t *testing.T) {
	b, mock := newTestBuilder(t)
	_ = b.StartRecording()
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{3, 3})
	_ = b.StopRecording()
	_ = b.StartRecording()
	if rec := b.Recording(); len(rec.Dots) != 0 || len(rec.Sequence) != 0 || !rec.Active {
		t.Fatalf("expected a fresh active recording, got %+v", rec)
	}
}

func TestClearSketch(t *testing.T) {
	b, mock := newTestBuilder(t)
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{3, 3})
	b.ClearSketch()
	if s := b.Sketch(); len(s.Dots) != 0 || len(s.Lines) != 0 {
		t.Fatalf("expected empty sketch, got %+v", s)
	}
	if b.Pending() != -1 {
		t.Fatalf("expected pending cleared")
	}
}

func TestExportPrunesAndRemaps(t *testing.T) {
	rec := Recording{
		Dots: []Dot{
			newDot(Point{1, 1}),
			newDot(Point{2, 2}),
			newDot(Point{3, 3}),
			newDot(Point{4, 4}),
		},
		Sequence: []puzzle.Edge{{From: 3, To: 1}, {From: 1, To: 3}},
	}
	doc, err := ExportRecording(rec, "  hot dog ", " Food ")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Name != "HOT DOG" || doc.CategoryName != "Food" {
		t.Fatalf("expected trimmed names, got %q %q", doc.Name, doc.CategoryName)
	}
	if len(doc.Dots) != 2 {
		t.Fatalf("expected unused dots dropped, got %d", len(doc.Dots))
	}
	if doc.Dots[0].X != 2*GridPointSize || doc.Dots[1].X != 4*GridPointSize {
		t.Fatalf("expected used dots kept in original order, got %+v", doc.Dots)
	}
	if doc.Sequence[0] != (puzzle.Edge{From: 1, To: 0}) || doc.Sequence[1] != (puzzle.Edge{From: 0, To: 1}) {
		t.Fatalf("expected remapped sequence, got %v", doc.Sequence)
	}
	if issues := doc.Validate(); len(issues) != 0 {
		t.Fatalf("expected exported document to validate, got %v", issues)
	}
}

func TestExportValidation(t *testing.T) {
	_, err := ExportRecording(Recording{Dots: []Dot{newDot(Point{1, 1})}}, " ", "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 4 {
		t.Fatalf("expected 4 problems, got %v", verr.Problems)
	}
}

func TestBuilderExportUsesForm(t *testing.T) {
	b, mock := newTestBuilder(t)
	_ = b.StartRecording()
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{6, 2})
	_ = b.StopRecording()
	b.Name = "line"
	b.Category = "Shapes"
	doc, err := b.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Name != "LINE" || len(doc.Sequence) != 1 {
		t.Fatalf("unexpected export %+v", doc)
	}
}

func TestImportSnapsToGrid(t *testing.T) {
	b, _ := newTestBuilder(t)
	doc := puzzle.Document{
		Name:         "ARROW",
		CategoryName: "Signs",
		Dots:         []puzzle.Dot{{X: 57, Y: 83}, {X: 140, Y: 140}},
		Sequence:     []puzzle.Edge{{From: 0, To: 1}, {From: 1, To: 7}},
	}
	if err := b.Import(doc); err != nil {
		t.Fatalf("import: %v", err)
	}
	rec := b.Recording()
	if rec.Dots[0].Point() != (Point{2, 3}) {
		t.Fatalf("expected snapped grid point (2,3), got %v", rec.Dots[0].Point())
	}
	if len(rec.Sequence) != 1 {
		t.Fatalf("expected dangling edge dropped, got %v", rec.Sequence)
	}
	if b.Name != "ARROW" || b.Category != "Signs" {
		t.Fatalf("expected form filled from document")
	}
	if err := b.Import(puzzle.Document{}); !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("expected ErrEmptyImport, got %v", err)
	}
}

func TestPreviewPlayback(t *testing.T) {
	dots := []Dot{newDot(Point{1, 1}), newDot(Point{5, 1}), newDot(Point{5, 5})}
	p := NewPreview(dots, []puzzle.Edge{{From: 0, To: 1}, {From: 1, To: 2}})
	now := time.Unix(0, 0)
	p.Play(now)
	for i := 0; i < 10; i++ {
		now = now.Add(16 * time.Millisecond)
		p.Step(now)
	}
	f := p.Frame()
	if f.Partial != 0 || math.Abs(f.LineProgress-0.5) > 1e-9 {
		t.Fatalf("expected first edge half drawn after 10 frames, got %+v", f)
	}
	for i := 0; i < 10; i++ {
		now = now.Add(16 * time.Millisecond)
		p.Step(now)
	}
	if f := p.Frame(); len(f.Complete) != 1 || f.Partial != -1 {
		t.Fatalf("expected first edge complete, got %+v", f)
	}
	now = now.Add(100 * time.Millisecond)
	p.Step(now)
	if f := p.Frame(); f.Partial != -1 {
		t.Fatalf("expected pause between edges, got %+v", f)
	}
	now = now.Add(PreviewPause)
	for p.Step(now) {
		now = now.Add(16 * time.Millisecond)
	}
	if !p.Done() || len(p.Frame().Complete) != 2 {
		t.Fatalf("expected playback to finish, got %+v", p.Frame())
	}
}

func TestPreviewModeStartsPlayback(t *testing.T) {
	b, mock := newTestBuilder(t)
	_ = b.StartRecording()
	click(t, b, mock, Point{2, 2})
	click(t, b, mock, Point{6, 2})
	_ = b.StopRecording()
	if err := b.SetMode(KindPreview); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	m, ok := b.Mode().(*PreviewMode)
	if !ok || !m.Player.Playing() {
		t.Fatalf("expected preview to be playing")
	}
}

func TestFitSequence(t *testing.T) {
	doc := puzzle.Document{
		Dots:     []puzzle.Dot{{X: 100, Y: 100}, {X: 200, Y: 100}, {X: 999, Y: 999}},
		Sequence: []puzzle.Edge{{From: 0, To: 1}},
	}
	tr := FitSequence(doc, 240, 240)
	left := tr.Apply(doc.Dots[0])
	right := tr.Apply(doc.Dots[1])
	if math.Abs(left.X-20) > 1e-9 || math.Abs(right.X-220) > 1e-9 {
		t.Fatalf("expected 10%% padding horizontally, got %v and %v", left.X, right.X)
	}
	if math.Abs(left.Y-120) > 1e-9 {
		t.Fatalf("expected vertically centred, got %v", left.Y)
	}
}
