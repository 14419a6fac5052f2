// Package recommend scores keywords per metadata slot and composes
// title, subtitle and keyword-field candidates.
package recommend

import (
	"math"
	"sort"

	"github.com/verte-zerg/asolens/internal/model"
)

// Slot is a metadata field keywords can be placed in.
type Slot int

const (
	SlotTitle Slot = iota
	SlotSubtitle
	SlotKeywords
)

func (s Slot) String() string {
	switch s {
	case SlotTitle:
		return "title"
	case SlotSubtitle:
		return "subtitle"
	default:
		return "keywords"
	}
}

const (
	defaultDifficulty = 50.0
	unrankedPosition  = 100.0
)

// Score rates a keyword for a slot. Missing volume counts as 0, missing
// difficulty as 50 and a missing rank as 100.
func Score(r model.KeywordRecord, slot Slot) float64 {
	volume := r.Volume.Or(0)
	ease := 100 - r.Difficulty.Or(defaultDifficulty)
	switch slot {
	case SlotTitle:
		rank := math.Min(r.CurrentRank.Or(unrankedPosition), 100)
		return 0.6*volume + 0.3*ease + 0.1*(100-rank)
	case SlotSubtitle:
		return 0.7*volume + 0.3*ease
	default:
		return 0.5*volume + 0.5*ease
	}
}

// Rank orders records by slot score, highest first. Ties keep input order.
func Rank(records []model.KeywordRecord, slot Slot) []model.KeywordRecord {
	type scored struct {
		record model.KeywordRecord
		score  float64
	}
	items := make([]scored, len(records))
	for i, r := range records {
		items[i] = scored{record: r, score: Score(r, slot)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	ranked := make([]model.KeywordRecord, len(items))
	for i, item := range items {
		ranked[i] = item.record
	}
	return ranked
}
