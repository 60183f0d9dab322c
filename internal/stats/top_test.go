package stats

import (
	"testing"

	"github.com/verte-zerg/dotdaily/internal/model"
)

func TestFastestPlays(t *testing.T) {
	plays := []model.PlayRecord{
		{ID: "a", TimeCs: 900, Guesses: 2},
		{ID: "b", TimeCs: 400, Guesses: 3},
		{ID: "c", TimeCs: 400, Guesses: 1},
	}
	top := FastestPlays(plays, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 plays, got %d", len(top))
	}
	if top[0].ID != "c" || top[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if plays[0].ID != "a" {
		t.Fatalf("expected input to be left untouched")
	}
}

func TestHardestCategory(t *testing.T) {
	if _, ok := HardestCategory(nil); ok {
		t.Fatalf("expected no category for empty history")
	}
	plays := []model.PlayRecord{
		{Category: model.Yellow, Guesses: 1},
		{Category: model.Red, Guesses: 4},
		{Category: model.Red, Guesses: 2},
		{Category: model.Blue, Guesses: 2},
	}
	c, ok := HardestCategory(plays)
	if !ok || c != model.Red {
		t.Fatalf("expected red, got %q", c)
	}
}
