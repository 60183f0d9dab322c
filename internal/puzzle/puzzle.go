// Package puzzle defines the puzzle document format and its JSON encoding.
package puzzle

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Dot is a point in canvas space.
type Dot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two dots by index, in draw direction.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Document is a named drawing: dots plus the order its lines are drawn in.
type Document struct {
	Name         string `json:"name"`
	CategoryName string `json:"categoryName"`
	Dots         []Dot  `json:"dots"`
	Sequence     []Edge `json:"sequence"`
}

// Dot returns the dot at index i and whether it exists.
func (d Document) Dot(i int) (Dot, bool) {
	if i < 0 || i >= len(d.Dots) {
		return Dot{}, false
	}
	return d.Dots[i], true
}

// Endpoints resolves both ends of an edge. ok is false when either dot is missing.
func (d Document) Endpoints(e Edge) (from, to Dot, ok bool) {
	from, okFrom := d.Dot(e.From)
	to, okTo := d.Dot(e.To)
	return from, to, okFrom && okTo
}

// Word returns the answer letters: the name without spaces, uppercased.
func (d Document) Word() []rune {
	out := make([]rune, 0, len(d.Name))
	for _, r := range d.Name {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return out
}

// Issue describes one validation problem.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// Validate reports every structural problem in the document. A document with
// issues can still be played: malformed edges are skipped when drawing.
func (d Document) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(d.Name) == "" {
		issues = append(issues, Issue{Field: "name", Message: "must not be empty"})
	}
	if len(d.Dots) == 0 {
		issues = append(issues, Issue{Field: "dots", Message: "must not be empty"})
	}
	if len(d.Sequence) == 0 {
		issues = append(issues, Issue{Field: "sequence", Message: "must not be empty"})
	}
	for i, dot := range d.Dots {
		if !finite(dot.X) || !finite(dot.Y) {
			issues = append(issues, Issue{Field: fmt.Sprintf("dots[%d]", i), Message: "coordinates must be finite"})
			continue
		}
		if dot.X < 0 || dot.Y < 0 {
			issues = append(issues, Issue{Field: fmt.Sprintf("dots[%d]", i), Message: "coordinates must not be negative"})
		}
	}
	for i, e := range d.Sequence {
		field := fmt.Sprintf("sequence[%d]", i)
		if e.From == e.To {
			issues = append(issues, Issue{Field: field, Message: "from and to must differ"})
		}
		if _, ok := d.Dot(e.From); !ok {
			issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("from %d out of range", e.From)})
		}
		if _, ok := d.Dot(e.To); !ok {
			issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("to %d out of range", e.To)})
		}
	}
	return issues
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Decode reads one document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode puzzle: %w", err)
	}
	return doc, nil
}

// Encode writes doc to w as indented JSON.
func Encode(w io.Writer, doc Document) error {
	if doc.Dots == nil {
		doc.Dots = []Dot{}
	}
	if doc.Sequence == nil {
		doc.Sequence = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Load reads a document from a JSON file.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Save writes a document to path atomically.
func Save(path string, doc Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create puzzle dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "puzzle-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp puzzle: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if err := Encode(tmpFile, doc); err != nil {
		return fmt.Errorf("failed to write puzzle: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close puzzle: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write puzzle: %w", err)
	}
	return nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename derives the export file name for a puzzle name.
func Filename(name string) string {
	base := whitespaceRun.ReplaceAllString(strings.ToLower(name), "_")
	if base == "" {
		base = "drawing"
	}
	return base + ".json"
}
