// Package animator turns elapsed time into a partial rendering of a puzzle's
// line sequence, weighting each edge by its length.
package animator

import (
	"math"
	"time"

	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// Options control drawing speed.
type Options struct {
	// PixelsPerSecond is the nominal drawing speed along the path.
	PixelsPerSecond float64
	// MinLineTime is the shortest time any edge stays "being drawn".
	MinLineTime time.Duration
	// MinDuration is the shortest total animation. Zero means 10 * MinLineTime.
	MinDuration time.Duration
}

// DefaultOptions matches the game defaults.
func DefaultOptions() Options {
	return Options{PixelsPerSecond: 200, MinLineTime: 200 * time.Millisecond}
}

// Frame describes what to draw at one progress value.
type Frame struct {
	Progress float64
	// Complete lists sequence indices drawn in full, in draw order.
	Complete []int
	// Partial is the sequence index being drawn, or -1.
	Partial int
	// LineProgress is the drawn fraction of Partial.
	LineProgress float64
}

// Segment is a drawable line in canvas space.
type Segment struct {
	From puzzle.Dot
	To   puzzle.Dot
}

// Segments resolves the frame against the document. The partial edge is cut
// at LineProgress.
func (f Frame) Segments(doc puzzle.Document) []Segment {
	out := make([]Segment, 0, len(f.Complete)+1)
	for _, idx := range f.Complete {
		if idx < 0 || idx >= len(doc.Sequence) {
			continue
		}
		from, to, ok := doc.Endpoints(doc.Sequence[idx])
		if !ok {
			continue
		}
		out = append(out, Segment{From: from, To: to})
	}
	if f.Partial >= 0 && f.Partial < len(doc.Sequence) {
		from, to, ok := doc.Endpoints(doc.Sequence[f.Partial])
		if ok {
			end := puzzle.Dot{
				X: from.X + (to.X-from.X)*f.LineProgress,
				Y: from.Y + (to.Y-from.Y)*f.LineProgress,
			}
			out = append(out, Segment{From: from, To: end})
		}
	}
	return out
}

// Animator walks a document's sequence by adjusted path length.
type Animator struct {
	doc           puzzle.Document
	opts          Options
	lengths       []float64
	adjusted      []float64
	valid         []bool
	totalLength   float64
	adjustedTotal float64
	duration      time.Duration

	running   bool
	resumedAt time.Time
	offset    float64
}

// New precomputes edge lengths for doc.
func New(doc puzzle.Document, opts Options) *Animator {
	if opts.MinDuration == 0 {
		opts.MinDuration = 10 * opts.MinLineTime
	}
	a := &Animator{
		doc:      doc,
		opts:     opts,
		lengths:  make([]float64, len(doc.Sequence)),
		adjusted: make([]float64, len(doc.Sequence)),
		valid:    make([]bool, len(doc.Sequence)),
	}
	minMs := float64(opts.MinLineTime) / float64(time.Millisecond)
	for i, e := range doc.Sequence {
		from, to, ok := doc.Endpoints(e)
		if !ok {
			continue
		}
		length := math.Sqrt((to.X-from.X)*(to.X-from.X) + (to.Y-from.Y)*(to.Y-from.Y))
		a.valid[i] = true
		a.lengths[i] = length
		a.adjusted[i] = adjustLength(length, opts.PixelsPerSecond, minMs)
		a.totalLength += length
		a.adjustedTotal += a.adjusted[i]
	}
	if opts.PixelsPerSecond > 0 {
		natural := time.Duration(a.totalLength / opts.PixelsPerSecond * float64(time.Second))
		a.duration = max(opts.MinDuration, natural)
	} else {
		a.duration = opts.MinDuration
	}
	return a
}

// adjustLength inflates short edges so they take at least minMs to draw.
func adjustLength(length, pps, minMs float64) float64 {
	if length <= 0 || pps <= 0 {
		return length
	}
	natural := length / pps * 1000
	return length * math.Max(1, minMs/natural)
}

// Document returns the animated document.
func (a *Animator) Document() puzzle.Document {
	return a.doc
}

// TotalLength is the sum of geometric edge lengths.
func (a *Animator) TotalLength() float64 {
	return a.totalLength
}

// AdjustedLength returns the weighted length of sequence edge i.
func (a *Animator) AdjustedLength(i int) float64 {
	if i < 0 || i >= len(a.adjusted) {
		return 0
	}
	return a.adjusted[i]
}

// AdjustedTotal is the sum of adjusted lengths.
func (a *Animator) AdjustedTotal() float64 {
	return a.adjustedTotal
}

// Duration is the wall-clock time of a full drawing.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// ProgressAt maps elapsed drawing time to a fraction in [0,1].
func (a *Animator) ProgressAt(elapsed time.Duration) float64 {
	if a.duration <= 0 {
		return 1
	}
	return clamp01(float64(elapsed) / float64(a.duration))
}

// FrameAt computes what is drawn at progress p.
func (a *Animator) FrameAt(p float64) Frame {
	p = clamp01(p)
	frame := Frame{Progress: p, Partial: -1}
	if a.totalLength == 0 {
		return frame
	}
	if p == 1 {
		// Avoid leaving the last edge a rounding error short.
		for i := range a.adjusted {
			if a.valid[i] {
				frame.Complete = append(frame.Complete, i)
			}
		}
		return frame
	}
	budget := a.adjustedTotal * p
	for i := range a.adjusted {
		if !a.valid[i] {
			continue
		}
		if budget >= a.adjusted[i] {
			frame.Complete = append(frame.Complete, i)
			budget -= a.adjusted[i]
			continue
		}
		if budget > 0 {
			frame.Partial = i
			frame.LineProgress = budget / a.adjusted[i]
		}
		break
	}
	return frame
}

// Start begins drawing from zero at now.
func (a *Animator) Start(now time.Time) {
	a.offset = 0
	a.resumedAt = now
	a.running = true
}

// Freeze stops the animation and returns the progress it stopped at.
func (a *Animator) Freeze(now time.Time) float64 {
	p := a.Progress(now)
	a.offset = p
	a.running = false
	return p
}

// Resume continues from the frozen progress. Sampling at now returns
// exactly the frozen value.
func (a *Animator) Resume(now time.Time) {
	if a.running {
		return
	}
	a.resumedAt = now
	a.running = true
}

// ResumeFrom continues from an explicit progress value.
func (a *Animator) ResumeFrom(now time.Time, p float64) {
	a.offset = clamp01(p)
	a.resumedAt = now
	a.running = true
}

// VirtualStart is the start time that makes progress p current at now.
func (a *Animator) VirtualStart(now time.Time, p float64) time.Time {
	return now.Add(-time.Duration(float64(a.duration) * clamp01(p)))
}

// Running reports whether time is advancing the animation.
func (a *Animator) Running() bool {
	return a.running
}

// Progress returns the current fraction.
func (a *Animator) Progress(now time.Time) float64 {
	if !a.running {
		return a.offset
	}
	return clamp01(a.offset + a.ProgressAt(now.Sub(a.resumedAt)))
}

// Sample returns the frame for now.
func (a *Animator) Sample(now time.Time) Frame {
	return a.FrameAt(a.Progress(now))
}

// Done reports a finished drawing. A puzzle with nothing to draw is never done.
func (a *Animator) Done(now time.Time) bool {
	if a.totalLength == 0 {
		return false
	}
	return a.Progress(now) >= 1
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
