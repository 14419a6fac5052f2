package stats

import (
	"sort"

	"github.com/verte-zerg/asolens/internal/model"
)

const listCap = 5

// LowCompetition returns up to five keywords with difficulty < 40 and
// volume > 300, highest volume first.
func LowCompetition(records []model.KeywordRecord) []model.KeywordRecord {
	return selectByVolume(records, func(r model.KeywordRecord) bool {
		return r.Difficulty.Valid && r.Difficulty.Value < 40 &&
			r.Volume.Valid && r.Volume.Value > 300
	})
}

// Underperforming returns up to five keywords with volume > 300 that rank
// worse than 50, highest volume first.
func Underperforming(records []model.KeywordRecord) []model.KeywordRecord {
	return selectByVolume(records, func(r model.KeywordRecord) bool {
		return r.Volume.Valid && r.Volume.Value > 300 &&
			r.CurrentRank.Valid && r.CurrentRank.Value > 50
	})
}

func selectByVolume(records []model.KeywordRecord, keep func(model.KeywordRecord) bool) []model.KeywordRecord {
	out := []model.KeywordRecord{}
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume.Value > out[j].Volume.Value
	})
	if len(out) > listCap {
		out = out[:listCap]
	}
	return out
}
