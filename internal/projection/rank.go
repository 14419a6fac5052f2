// Package projection estimates future keyword ranks and installs.
package projection

import (
	"math"

	"github.com/verte-zerg/asolens/internal/model"
)

const (
	// DefaultDifficulty is assumed when a keyword has no difficulty.
	DefaultDifficulty = 50.0
	// DefaultVolume is assumed when a keyword has no volume.
	DefaultVolume = 100.0
	// UnrankedPosition is the starting rank of an unranked keyword.
	UnrankedPosition = 100.0
	// DaysPerMonth turns daily volume into a monthly figure.
	DaysPerMonth = 30.0

	improvementScale = 20.0
)

// DefaultHorizons are the month horizons projected when none are given.
var DefaultHorizons = []int{3, 6, 9, 12}

// DifficultyFactor is 1 - difficulty/200, so 0.5 for the hardest keywords
// and 1.0 for the easiest.
func DifficultyFactor(difficulty float64) float64 {
	return 1 - clamp(difficulty, 0, 100)/200
}

// RankFactor is min(log10(rank+10)/2, 1).
func RankFactor(rank float64) float64 {
	return math.Min(math.Log10(rank+10)/2, 1)
}

// Improvement is the number of positions a keyword gains after months.
// boost multiplies the result for keywords placed in metadata; values <= 0
// mean no boost.
func Improvement(rank, difficulty float64, months int, boost float64) float64 {
	if months <= 0 {
		return 0
	}
	if boost <= 0 {
		boost = 1
	}
	return RankFactor(rank) * DifficultyFactor(difficulty) * math.Sqrt(float64(months)) * improvementScale * boost
}

// ProjectRank returns the rank after months. The gain never exceeds
// rank-1, so the result stays within [1, rank].
func ProjectRank(rank, difficulty float64, months int, boost float64) float64 {
	rank = math.Max(1, rank)
	gain := math.Min(rank-1, Improvement(rank, difficulty, months, boost))
	if gain < 0 {
		gain = 0
	}
	return rank - gain
}

// ConversionRate is the share of searchers installing at a rank.
func ConversionRate(rank float64) float64 {
	switch {
	case rank <= 1:
		return 0.12
	case rank <= 3:
		return 0.08
	case rank <= 5:
		return 0.05
	case rank <= 10:
		return 0.03
	case rank <= 20:
		return 0.01
	case rank <= 50:
		return 0.005
	default:
		return 0.001
	}
}

// MonthlyInstalls treats volume as daily searches.
func MonthlyInstalls(volume, rank float64) float64 {
	return volume * ConversionRate(rank) * DaysPerMonth
}

// Input is one keyword to project.
type Input struct {
	Keyword     string
	Volume      model.Metric
	Difficulty  model.Metric
	CurrentRank model.Metric
	// Boost multiplies the rank improvement; 0 means none.
	Boost float64
}

// InputFrom builds an unboosted input from a record.
func InputFrom(r model.KeywordRecord) Input {
	return Input{
		Keyword:     r.Keyword,
		Volume:      r.Volume,
		Difficulty:  r.Difficulty,
		CurrentRank: r.CurrentRank,
	}
}

// Project estimates rank and monthly installs at each horizon. Non-positive
// horizons are skipped; an empty list uses DefaultHorizons.
func Project(in Input, horizons []int) model.ProjectionResult {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	volume := in.Volume.Or(DefaultVolume)
	difficulty := in.Difficulty.Or(DefaultDifficulty)
	rank := math.Max(1, in.CurrentRank.Or(UnrankedPosition))
	current := MonthlyInstalls(volume, rank)

	result := model.ProjectionResult{
		Keyword:         in.Keyword,
		StartRank:       rank,
		CurrentInstalls: current,
		Points:          make([]model.ProjectionPoint, 0, len(horizons)),
	}
	for _, months := range horizons {
		if months <= 0 {
			continue
		}
		projected := ProjectRank(rank, difficulty, months, in.Boost)
		point := model.ProjectionPoint{Months: months, Rank: projected, Installs: current}
		if projected < rank {
			point.Installs = MonthlyInstalls(volume, projected)
			point.InstallGain = math.Max(0, point.Installs-current)
		}
		result.Points = append(result.Points, point)
	}
	return result
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
