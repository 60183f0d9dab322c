package canvas

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

func TestRuneMapping(t *testing.T) {
	if Rune(0) != '⠀' {
		t.Fatalf("expected blank braille for empty mask")
	}
	if Rune(0xFF) != '⣿' {
		t.Fatalf("expected full braille for full mask")
	}
}

func TestSetFillsCell(t *testing.T) {
	r := NewRaster(1, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			r.Set(x, y)
		}
	}
	if r.Mask(0, 0) != 0xFF {
		t.Fatalf("expected every dot set, got %#x", r.Mask(0, 0))
	}
	r.Set(5, 5)
	r.Set(-1, 0)
	if r.String() != "⣿" {
		t.Fatalf("unexpected render %q", r.String())
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	var pts [][2]int
	DrawLine(0, 0, 5, 2, func(x, y int) { pts = append(pts, [2]int{x, y}) })
	if pts[0] != [2]int{0, 0} || pts[len(pts)-1] != [2]int{5, 2} {
		t.Fatalf("expected line from (0,0) to (5,2), got %v", pts)
	}
	if len(pts) != 6 {
		t.Fatalf("expected one point per column, got %d", len(pts))
	}
}

func TestFitCentresSquareCanvas(t *testing.T) {
	r := NewRaster(40, 10) // 80x40 dots
	p := Fit(r)
	x0, y0 := p.Point(puzzle.Dot{X: 0, Y: 0})
	x1, y1 := p.Point(puzzle.Dot{X: Size, Y: Size})
	if y0 != 0 || y1 != 39 {
		t.Fatalf("expected canvas to span the full height, got %d..%d", y0, y1)
	}
	if x1-x0 != 39 || x0 != 20 {
		t.Fatalf("expected a centred square, got x %d..%d", x0, x1)
	}
}

func TestDrawFrame(t *testing.T) {
	doc := puzzle.Document{
		Dots:     []puzzle.Dot{{X: 0, Y: 280}, {X: 560, Y: 280}},
		Sequence: []puzzle.Edge{{From: 0, To: 1}},
	}
	half := animator.Frame{Partial: 0, LineProgress: 0.5}
	lines := Draw(doc, half, 20, 5, Options{}).Lines()
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	mid := []rune(lines[2])
	if utf8.RuneCountInString(lines[2]) != 20 {
		t.Fatalf("expected 20 cells per row")
	}
	drawn := 0
	for _, r := range mid {
		if r != Rune(0) {
			drawn++
		}
	}
	if drawn == 0 || drawn > 12 {
		t.Fatalf("expected roughly half a row drawn, got %d cells", drawn)
	}
	empty := Draw(doc, animator.Frame{Partial: -1}, 20, 5, Options{})
	if strings.Trim(empty.String(), string(Rune(0))+"\n") != "" {
		t.Fatalf("expected nothing drawn for an empty frame")
	}
	dots := Draw(doc, animator.Frame{Partial: -1}, 20, 5, Options{Dots: true})
	if strings.Trim(dots.String(), string(Rune(0))+"\n") == "" {
		t.Fatalf("expected dots to be marked")
	}
}
