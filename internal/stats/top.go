// Package stats contains keyword insight calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/asolens/internal/model"
)

// ScoredKeyword pairs a record with a derived score.
type ScoredKeyword struct {
	Keyword model.KeywordRecord `json:"keyword"`
	Score   float64             `json:"score"`
}

// TopByScore returns the top n keywords by KeywordScore. Ties keep input order.
// n <= 0 returns every keyword.
func TopByScore(records []model.KeywordRecord, n int) []ScoredKeyword {
	return topBy(records, n, KeywordScore)
}

// TopByOpportunity returns the top n keywords by OpportunityScore.
func TopByOpportunity(records []model.KeywordRecord, n int) []ScoredKeyword {
	return topBy(records, n, OpportunityScore)
}

func topBy(records []model.KeywordRecord, n int, score func(model.KeywordRecord) float64) []ScoredKeyword {
	if len(records) == 0 {
		return []ScoredKeyword{}
	}
	items := make([]ScoredKeyword, 0, len(records))
	for _, r := range records {
		items = append(items, ScoredKeyword{Keyword: r, Score: score(r)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}
