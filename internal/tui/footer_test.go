package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/game"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

func TestRenderFooterFormats(t *testing.T) {
	tp := clock.NewMock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	doc := puzzle.Document{
		Name:     "LINE",
		Dots:     []puzzle.Dot{{X: 0, Y: 0}, {X: 400, Y: 0}},
		Sequence: []puzzle.Edge{{From: 0, To: 1}},
	}
	m := &Model{
		deps:     Deps{Clock: tp},
		category: model.Yellow,
		session:  game.NewSession(doc, game.DefaultOptions(), tp),
		history: []model.PlayRecord{
			{Category: model.Yellow, TimeCs: 950},
			{Category: model.Red, TimeCs: 100},
		},
	}
	m.session.Begin()
	tp.Advance(1500 * time.Millisecond)
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Time 01.50", "Guesses 0", "Drawn 75%", "Best 09.50"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "Hints") {
		t.Fatalf("expected no hint segment before a hint is used: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
