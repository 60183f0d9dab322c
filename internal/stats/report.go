package stats

import (
	"context"

	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Plays   []model.PlayRecord
	Window  []model.PlayRecord
	Fastest []model.PlayRecord
}

const fastestCount = 5

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	plays, err := st.ListPlays(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(plays) > cfg.Last {
		plays = plays[len(plays)-cfg.Last:]
	}
	return Report{
		Plays:   plays,
		Window:  lastPlays(plays, cfg.Window),
		Fastest: FastestPlays(plays, fastestCount),
	}, nil
}

func lastPlays(plays []model.PlayRecord, window int) []model.PlayRecord {
	if window <= 0 || len(plays) <= window {
		return plays
	}
	return plays[len(plays)-window:]
}
