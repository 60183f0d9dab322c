package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "dotdaily.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Hour)
		id, err := st.InsertPlay(ctx, model.PlayRecord{
			Category:   model.Yellow,
			Puzzle:     "SQUARE",
			Difficulty: model.Easy,
			StartedAt:  start,
			EndedAt:    start.Add(30 * time.Second),
			TimeCs:     int64(3000 - i*500),
			Guesses:    i + 1,
			Progress:   0.5,
		})
		if err != nil {
			t.Fatalf("insert play: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, Window: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Plays) != 2 {
		t.Fatalf("expected 2 plays, got %d", len(report.Plays))
	}
	if report.Plays[0].ID != ids[1] || report.Plays[1].ID != ids[2] {
		t.Fatalf("unexpected play ids: %+v", report.Plays)
	}
	if len(report.Window) != 1 || report.Window[0].ID != ids[2] {
		t.Fatalf("expected the newest play in the window, got %+v", report.Window)
	}
	if len(report.Fastest) != 2 || report.Fastest[0].TimeCs != 2000 {
		t.Fatalf("expected fastest play first, got %+v", report.Fastest)
	}
}
