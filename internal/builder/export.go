package builder

import (
	"sort"
	"strings"

	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// ValidationError lists everything that blocks an export.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "builder: cannot export: " + strings.Join(e.Problems, "; ")
}

// ValidateRecording checks that a recording can be exported under name and
// category.
func ValidateRecording(rec Recording, name, category string) error {
	var problems []string
	if len(rec.Dots) < 2 {
		problems = append(problems, "record at least 2 points")
	}
	if len(rec.Sequence) == 0 {
		problems = append(problems, "record at least one line")
	}
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(category) == "" {
		problems = append(problems, "category is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ExportRecording builds a puzzle document from a recording. Dots not used by
// the sequence are dropped and the remaining ones renumbered in their
// original order.
func ExportRecording(rec Recording, name, category string) (puzzle.Document, error) {
	if err := ValidateRecording(rec, name, category); err != nil {
		return puzzle.Document{}, err
	}
	used := map[int]bool{}
	for _, e := range rec.Sequence {
		used[e.From] = true
		used[e.To] = true
	}
	order := make([]int, 0, len(used))
	for idx := range used {
		if idx >= 0 && idx < len(rec.Dots) {
			order = append(order, idx)
		}
	}
	sort.Ints(order)

	remap := make(map[int]int, len(order))
	doc := puzzle.Document{
		Name:         strings.ToUpper(strings.TrimSpace(name)),
		CategoryName: strings.TrimSpace(category),
		Dots:         make([]puzzle.Dot, 0, len(order)),
		Sequence:     make([]puzzle.Edge, 0, len(rec.Sequence)),
	}
	for _, old := range order {
		remap[old] = len(doc.Dots)
		d := rec.Dots[old]
		doc.Dots = append(doc.Dots, puzzle.Dot{X: d.X, Y: d.Y})
	}
	for _, e := range rec.Sequence {
		from, okFrom := remap[e.From]
		to, okTo := remap[e.To]
		if !okFrom || !okTo {
			continue
		}
		doc.Sequence = append(doc.Sequence, puzzle.Edge{From: from, To: to})
	}
	return doc, nil
}
