package stats

import (
	"math"

	"github.com/verte-zerg/asolens/internal/model"
)

const (
	// DefaultDifficulty stands in for a missing difficulty.
	DefaultDifficulty = 50.0
	// UnrankedPosition stands in for a missing current rank.
	UnrankedPosition = 100.0
	// MaxPotentialCTR is the click-through rate of the top result.
	MaxPotentialCTR = 0.35
)

// Opportunity bucket labels.
const (
	BucketHigh   = "high"
	BucketMedium = "medium"
	BucketLow    = "low"
	BucketNone   = "none"
)

// KeywordScore ranks keywords for recommendation. Volume carries 0.6 of the
// weight, ease of ranking 0.4 scaled by 1/(difficulty/100+0.5), and the sum
// is damped by log10(rank+10). Missing volume scores 0.
func KeywordScore(r model.KeywordRecord) float64 {
	volume := r.Volume.Or(0)
	difficulty := r.Difficulty.Or(DefaultDifficulty)
	rank := math.Max(1, r.CurrentRank.Or(UnrankedPosition))
	ease := 1 / (difficulty/100 + 0.5)
	return (0.6*volume + 0.4*volume*ease) / math.Log10(rank+10)
}

// CurrentCTR estimates the click-through rate at a rank. Unranked keywords get none.
func CurrentCTR(rank model.Metric) float64 {
	if !rank.Valid {
		return 0
	}
	return MaxPotentialCTR * math.Exp(-0.15*rank.Value)
}

// OpportunityScore estimates growth potential:
// volume * (maxCTR - currentCTR) * (100 - difficulty) / 100.
func OpportunityScore(r model.KeywordRecord) float64 {
	if !r.Volume.Valid || !r.Difficulty.Valid {
		return 0
	}
	score := r.Volume.Value * (MaxPotentialCTR - CurrentCTR(r.CurrentRank)) * (100 - r.Difficulty.Value) / 100
	if score < 0 {
		return 0
	}
	return score
}

// Bucket labels an opportunity score.
func Bucket(score float64) string {
	switch {
	case score >= 500:
		return BucketHigh
	case score >= 100:
		return BucketMedium
	case score > 0:
		return BucketLow
	default:
		return BucketNone
	}
}

// BucketCounts counts keywords per opportunity bucket.
type BucketCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	None   int `json:"none"`
}

// CountBuckets buckets every record by opportunity score.
func CountBuckets(records []model.KeywordRecord) BucketCounts {
	var counts BucketCounts
	for _, r := range records {
		switch Bucket(OpportunityScore(r)) {
		case BucketHigh:
			counts.High++
		case BucketMedium:
			counts.Medium++
		case BucketLow:
			counts.Low++
		default:
			counts.None++
		}
	}
	return counts
}
