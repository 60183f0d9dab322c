package stats

import (
	"sort"

	"github.com/verte-zerg/dotdaily/internal/model"
)

// FastestPlays returns the n quickest solves, fastest first.
func FastestPlays(plays []model.PlayRecord, n int) []model.PlayRecord {
	if n <= 0 || len(plays) == 0 {
		return nil
	}
	items := make([]model.PlayRecord, len(plays))
	copy(items, plays)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TimeCs == items[j].TimeCs {
			return items[i].Guesses < items[j].Guesses
		}
		return items[i].TimeCs < items[j].TimeCs
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// HardestCategory picks the category with the most guesses per play.
func HardestCategory(plays []model.PlayRecord) (model.Category, bool) {
	var hardest model.Category
	worst := -1.0
	for _, row := range ByCategory(plays) {
		if row.Summary.AvgGuesses > worst {
			worst = row.Summary.AvgGuesses
			hardest = row.Category
		}
	}
	return hardest, worst >= 0
}
