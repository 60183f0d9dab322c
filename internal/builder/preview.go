package builder

import (
	"math"
	"time"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// Preview playback constants.
const (
	PreviewStep  = 0.05
	PreviewPause = 200 * time.Millisecond
	PreviewPad   = 0.1
)

// Preview replays a recorded sequence one edge at a time, advancing a fixed
// step per frame and pausing briefly between edges.
type Preview struct {
	doc        puzzle.Document
	current    int
	progress   float64
	complete   []int
	pauseUntil time.Time
	playing    bool
}

// NewPreview prepares a player for the given dots and sequence.
func NewPreview(dots []Dot, seq []puzzle.Edge) *Preview {
	doc := puzzle.Document{
		Dots:     make([]puzzle.Dot, len(dots)),
		Sequence: append([]puzzle.Edge(nil), seq...),
	}
	for i, d := range dots {
		doc.Dots[i] = puzzle.Dot{X: d.X, Y: d.Y}
	}
	return &Preview{doc: doc}
}

// Document returns the drawing being previewed.
func (p *Preview) Document() puzzle.Document {
	return p.doc
}

// Play restarts playback from the first edge.
func (p *Preview) Play(now time.Time) {
	p.current = 0
	p.progress = 0
	p.complete = nil
	p.pauseUntil = time.Time{}
	p.playing = len(p.doc.Sequence) > 0
	p.skipInvalid()
}

// Stop halts playback, keeping what has been drawn.
func (p *Preview) Stop() {
	p.playing = false
}

// Playing reports whether frames still advance the preview.
func (p *Preview) Playing() bool {
	return p.playing
}

// Done reports that every edge has been drawn.
func (p *Preview) Done() bool {
	return p.current >= len(p.doc.Sequence)
}

// Step advances one animation frame. It returns whether playback continues.
func (p *Preview) Step(now time.Time) bool {
	if !p.playing {
		return false
	}
	if now.Before(p.pauseUntil) {
		return true
	}
	p.progress += PreviewStep
	if p.progress >= 1-1e-9 {
		p.complete = append(p.complete, p.current)
		p.current++
		p.progress = 0
		p.skipInvalid()
		if p.Done() {
			p.playing = false
			return false
		}
		p.pauseUntil = now.Add(PreviewPause)
	}
	return true
}

func (p *Preview) skipInvalid() {
	for p.current < len(p.doc.Sequence) {
		e := p.doc.Sequence[p.current]
		if _, _, ok := p.doc.Endpoints(e); ok {
			return
		}
		p.current++
	}
	p.playing = p.playing && !p.Done()
}

// Frame describes the drawing so far.
func (p *Preview) Frame() animator.Frame {
	f := animator.Frame{
		Complete: append([]int(nil), p.complete...),
		Partial:  -1,
	}
	if n := len(p.doc.Sequence); n > 0 {
		f.Progress = (float64(len(p.complete)) + p.progress) / float64(n)
	}
	if !p.Done() && p.progress > 0 {
		f.Partial = p.current
		f.LineProgress = p.progress
	}
	return f
}

// Transform maps canvas coordinates onto a viewport.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Apply maps d into viewport space.
func (t Transform) Apply(d puzzle.Dot) puzzle.Dot {
	return puzzle.Dot{X: d.X*t.Scale + t.OffsetX, Y: d.Y*t.Scale + t.OffsetY}
}

// Fit centres the sequence's dots in a width x height viewport with 10%
// padding around their bounding box.
func (p *Preview) Fit(width, height float64) Transform {
	return FitSequence(p.doc, width, height)
}

// FitSequence computes the viewport transform for the dots used by doc's
// sequence.
func FitSequence(doc puzzle.Document, width, height float64) Transform {
	minX, minY, maxX, maxY := 0.0, 0.0, 1.0, 1.0
	first := true
	for _, e := range doc.Sequence {
		for _, idx := range []int{e.From, e.To} {
			d, ok := doc.Dot(idx)
			if !ok {
				continue
			}
			if first {
				minX, maxX, minY, maxY = d.X, d.X, d.Y, d.Y
				first = false
				continue
			}
			minX, maxX = math.Min(minX, d.X), math.Max(maxX, d.X)
			minY, maxY = math.Min(minY, d.Y), math.Max(maxY, d.Y)
		}
	}
	padX := (maxX - minX) * PreviewPad
	padY := (maxY - minY) * PreviewPad
	minX, maxX = minX-padX, maxX+padX
	minY, maxY = minY-padY, maxY+padY
	scale := 1.0
	switch drawW, drawH := maxX-minX, maxY-minY; {
	case drawW > 0 && drawH > 0:
		scale = math.Min(width/drawW, height/drawH)
	case drawW > 0:
		scale = width / drawW
	case drawH > 0:
		scale = height / drawH
	}
	return Transform{
		Scale:   scale,
		OffsetX: width/2 - (minX+maxX)/2*scale,
		OffsetY: height/2 - (minY+maxY)/2*scale,
	}
}
