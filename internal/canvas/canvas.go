// Package canvas rasterizes puzzle drawings into braille text.
package canvas

import (
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// Size is the side of the square canvas puzzle coordinates live on.
const Size = 560.0

const terminalWidthBackup = 80

// Raster is a grid of braille cells, each holding 2x4 dots.
type Raster struct {
	cells [][]uint8
}

// NewRaster allocates cols x rows cells.
func NewRaster(cols, rows int) *Raster {
	cols = max(cols, 1)
	rows = max(rows, 1)
	cells := make([][]uint8, rows)
	for y := range cells {
		cells[y] = make([]uint8, cols)
	}
	return &Raster{cells: cells}
}

// Cols is the width in cells.
func (r *Raster) Cols() int { return len(r.cells[0]) }

// Rows is the height in cells.
func (r *Raster) Rows() int { return len(r.cells) }

// DotSize is the raster size in dots.
func (r *Raster) DotSize() (int, int) {
	return r.Cols() * 2, r.Rows() * 4
}

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (r *Raster) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellX, cellY := x/2, y/4
	if cellY >= len(r.cells) || cellX >= len(r.cells[cellY]) {
		return
	}
	r.cells[cellY][cellX] |= dotMask(x%2, y%4)
}

// Mask returns the dot mask of a cell.
func (r *Raster) Mask(col, row int) uint8 {
	if row < 0 || row >= len(r.cells) || col < 0 || col >= len(r.cells[row]) {
		return 0
	}
	return r.cells[row][col]
}

// Line draws a Bresenham line between two dots.
func (r *Raster) Line(x0, y0, x1, y1 int) {
	DrawLine(x0, y0, x1, y1, r.Set)
}

// Lines renders the raster, one string per cell row.
func (r *Raster) Lines() []string {
	out := make([]string, len(r.cells))
	for y, row := range r.cells {
		var b strings.Builder
		for _, mask := range row {
			b.WriteRune(Rune(mask))
		}
		out[y] = b.String()
	}
	return out
}

// String joins Lines with newlines.
func (r *Raster) String() string {
	return strings.Join(r.Lines(), "\n")
}

// DrawLine walks the integer points from (x0,y0) to (x1,y1).
func DrawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func dotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

// Rune maps a dot mask to its braille character.
func Rune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// Projection maps canvas coordinates onto raster dots.
type Projection struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit projects the square canvas onto r, centred and aspect-preserving.
func Fit(r *Raster) Projection {
	w, h := r.DotSize()
	scale := math.Min(float64(w-1), float64(h-1)) / Size
	return Projection{
		Scale:   scale,
		OffsetX: (float64(w-1) - Size*scale) / 2,
		OffsetY: (float64(h-1) - Size*scale) / 2,
	}
}

// Point maps a canvas coordinate to a dot position.
func (p Projection) Point(d puzzle.Dot) (int, int) {
	return int(math.Round(d.X*p.Scale + p.OffsetX)), int(math.Round(d.Y*p.Scale + p.OffsetY))
}

// Segment draws a projected segment.
func (r *Raster) Segment(p Projection, s animator.Segment) {
	x0, y0 := p.Point(s.From)
	x1, y1 := p.Point(s.To)
	r.Line(x0, y0, x1, y1)
}

// Options control Draw.
type Options struct {
	// Dots marks every puzzle dot, not just the drawn lines.
	Dots bool
}

// Draw renders frame of doc onto a new cols x rows raster.
func Draw(doc puzzle.Document, frame animator.Frame, cols, rows int, opts Options) *Raster {
	r := NewRaster(cols, rows)
	p := Fit(r)
	for _, s := range frame.Segments(doc) {
		r.Segment(p, s)
	}
	if opts.Dots {
		for _, d := range doc.Dots {
			r.Set(p.Point(d))
		}
	}
	return r
}

// TerminalWidth is the stdout width, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
