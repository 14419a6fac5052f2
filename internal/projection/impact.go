package projection

import (
	"math"
	"time"

	"github.com/verte-zerg/asolens/internal/model"
)

// CTR is the click-through rate of a search result at rank.
func CTR(rank float64) float64 {
	switch {
	case rank <= 1:
		return 0.35
	case rank <= 5:
		return 0.15
	case rank <= 10:
		return 0.08
	case rank <= 20:
		return 0.04
	default:
		return 0.35 * math.Exp(-0.2*rank)
	}
}

// Penetration is the share of the market reached after months.
func Penetration(months int) float64 {
	if months <= 0 {
		return 0
	}
	return 1 - math.Exp(-0.15*float64(months))
}

// CompetitionFactor is (1 - difficulty/100)^0.7.
func CompetitionFactor(difficulty float64) float64 {
	return math.Pow(1-clamp(difficulty, 0, 100)/100, 0.7)
}

// Seasonality is 1 + 0.3*sin(2*pi*month/12).
func Seasonality(month time.Month) float64 {
	return 1 + 0.3*math.Sin(2*math.Pi*float64(month)/12)
}

// Impact describes a move from the current rank to a target rank.
type Impact struct {
	Volume       model.Metric
	Difficulty   model.Metric
	CurrentRank  model.Metric
	MaximumReach model.Metric
	TargetRank   float64
	Months       int
	Month        time.Month
}

// InstallImpact estimates additional monthly installs from reaching the
// target rank. The result never exceeds the keyword's maximum reach, or
// twice its volume when no reach is known.
func InstallImpact(in Impact) float64 {
	volume := in.Volume.Or(DefaultVolume)
	currentCTR := 0.0
	if in.CurrentRank.Valid {
		currentCTR = CTR(in.CurrentRank.Value)
	}
	lift := CTR(in.TargetRank) - currentCTR
	if lift <= 0 {
		return 0
	}
	installs := volume * lift *
		Penetration(in.Months) *
		CompetitionFactor(in.Difficulty.Or(DefaultDifficulty)) *
		Seasonality(in.Month)
	return math.Min(installs, in.MaximumReach.Or(2*volume))
}

// GrowthPoint is one horizon of a ranking-growth scenario.
type GrowthPoint struct {
	Months        int     `json:"months"`
	TargetRank    float64 `json:"targetRank"`
	ExtraInstalls float64 `json:"extraInstalls"`
}

// ProjectGrowth pairs the rank-improvement model with InstallImpact for
// each horizon. month is the calendar month the scenario starts in.
func ProjectGrowth(r model.KeywordRecord, horizons []int, month time.Month, boost float64) []GrowthPoint {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	rank := math.Max(1, r.CurrentRank.Or(UnrankedPosition))
	difficulty := r.Difficulty.Or(DefaultDifficulty)
	points := make([]GrowthPoint, 0, len(horizons))
	for _, months := range horizons {
		if months <= 0 {
			continue
		}
		target := ProjectRank(rank, difficulty, months, boost)
		extra := InstallImpact(Impact{
			Volume:       r.Volume,
			Difficulty:   r.Difficulty,
			CurrentRank:  r.CurrentRank,
			MaximumReach: r.MaximumReach,
			TargetRank:   target,
			Months:       months,
			Month:        month,
		})
		points = append(points, GrowthPoint{Months: months, TargetRank: target, ExtraInstalls: extra})
	}
	return points
}
