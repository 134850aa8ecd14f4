package screener

import (
	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/domain"
)

// SelectDiverse reduces a score-sorted candidate list to a bounded,
// diversified shortlist: at most cfg.SectorCap per sector and at most
// cfg.HighBetaCap candidates with beta above the high-beta threshold.
//
// The pass is greedy with no backtracking. A skipped candidate is skipped
// for good even if accepting it later would have produced a higher total
// score; the policy trades optimality for reproducibility.
func SelectDiverse(candidates []domain.Candidate, cfg config.ScreenConfig) []domain.Candidate {
	selected := make([]domain.Candidate, 0, cfg.MaxPicks)
	sectorCounts := make(map[string]int)
	highBetaCount := 0

	for _, cand := range candidates {
		if len(selected) >= cfg.MaxPicks {
			break
		}

		if sectorCounts[cand.Sector] >= cfg.SectorCap {
			continue
		}

		beta := cand.Beta
		if beta == 0 {
			beta = 1
		}
		if beta > cfg.HighBetaThreshold {
			if highBetaCount >= cfg.HighBetaCap {
				continue
			}
			highBetaCount++
		}

		selected = append(selected, cand)
		sectorCounts[cand.Sector]++
	}

	return selected
}
