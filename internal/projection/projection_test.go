package projection

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/asolens/internal/model"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestProjectRankScenario(t *testing.T) {
	if got := DifficultyFactor(30); !near(got, 0.85, 1e-9) {
		t.Fatalf("difficulty factor: got %v", got)
	}
	if got := RankFactor(50); !near(got, 0.888, 0.001) {
		t.Fatalf("rank factor: got %v", got)
	}
	if got := Improvement(50, 30, 6, 0); !near(got, 37.0, 0.05) {
		t.Fatalf("improvement: got %v", got)
	}
	if got := ProjectRank(50, 30, 6, 0); !near(got, 13, 0.1) {
		t.Fatalf("projected rank: got %v", got)
	}
}

func TestProjectRankBounds(t *testing.T) {
	for rank := 1.0; rank <= 200; rank += 7 {
		for difficulty := 0.0; difficulty <= 100; difficulty += 10 {
			for months := 1; months <= 24; months++ {
				got := ProjectRank(rank, difficulty, months, 1.5)
				if got < 1 || got > rank {
					t.Fatalf("rank %v difficulty %v months %d projected to %v", rank, difficulty, months, got)
				}
			}
		}
	}
	if got := ProjectRank(1, 0, 12, 0); got != 1 {
		t.Fatalf("top rank should stay at 1, got %v", got)
	}
	if got := Improvement(40, 20, 0, 0); got != 0 {
		t.Fatalf("zero months should not improve, got %v", got)
	}
}

func TestConversionRate(t *testing.T) {
	cases := map[float64]float64{
		1:  0.12,
		2:  0.08,
		5:  0.05,
		7:  0.03,
		15: 0.01,
		50: 0.005,
		75: 0.001,
	}
	for rank, want := range cases {
		if got := ConversionRate(rank); got != want {
			t.Fatalf("ConversionRate(%v) = %v, want %v", rank, got, want)
		}
	}
	if got := MonthlyInstalls(1000, 7); !near(got, 900, 1e-9) {
		t.Fatalf("monthly installs: got %v", got)
	}
}

func TestProjectDefaults(t *testing.T) {
	result := Project(Input{Keyword: "meditation"}, nil)
	if result.StartRank != UnrankedPosition || !near(result.CurrentInstalls, 3, 1e-9) {
		t.Fatalf("unexpected start: %+v", result)
	}
	if len(result.Points) != len(DefaultHorizons) {
		t.Fatalf("expected %d points, got %d", len(DefaultHorizons), len(result.Points))
	}
	first, last := result.Points[0], result.Points[3]
	if first.Months != 3 || first.InstallGain != 0 {
		t.Fatalf("rank 74 keeps the same conversion, got %+v", first)
	}
	if last.Months != 12 || !near(last.Installs, 15, 1e-9) || !near(last.InstallGain, 12, 1e-9) {
		t.Fatalf("unexpected 12 month point: %+v", last)
	}
	for i := 1; i < len(result.Points); i++ {
		if result.Points[i].Rank > result.Points[i-1].Rank {
			t.Fatalf("rank should not worsen over time: %+v", result.Points)
		}
	}
}

func TestProjectSkipsInvalidHorizons(t *testing.T) {
	in := Input{Keyword: "yoga", Volume: model.Some(500), Difficulty: model.Some(20), CurrentRank: model.Some(1)}
	result := Project(in, []int{0, -3, 6})
	if len(result.Points) != 1 || result.Points[0].Months != 6 {
		t.Fatalf("unexpected points: %+v", result.Points)
	}
	if result.Points[0].Rank != 1 || result.Points[0].InstallGain != 0 {
		t.Fatalf("top ranked keyword should not gain: %+v", result.Points[0])
	}
}

func TestCTR(t *testing.T) {
	cases := map[float64]float64{1: 0.35, 3: 0.15, 10: 0.08, 20: 0.04}
	for rank, want := range cases {
		if got := CTR(rank); got != want {
			t.Fatalf("CTR(%v) = %v, want %v", rank, got, want)
		}
	}
	if got := CTR(30); !near(got, 0.35*math.Exp(-6), 1e-12) {
		t.Fatalf("CTR(30) = %v", got)
	}
}

func TestInstallImpact(t *testing.T) {
	base := Impact{
		Volume:     model.Some(1000),
		Difficulty: model.Some(0),
		TargetRank: 1,
		Months:     1000,
		Month:      time.March,
	}
	if got := InstallImpact(base); !near(got, 455, 1e-6) {
		t.Fatalf("expected 455, got %v", got)
	}
	capped := base
	capped.MaximumReach = model.Some(100)
	if got := InstallImpact(capped); got != 100 {
		t.Fatalf("expected reach cap, got %v", got)
	}
	worse := base
	worse.CurrentRank = model.Some(1)
	worse.TargetRank = 8
	if got := InstallImpact(worse); got != 0 {
		t.Fatalf("moving down should not add installs, got %v", got)
	}
	if got := Seasonality(time.December); !near(got, 1, 1e-9) {
		t.Fatalf("december seasonality: got %v", got)
	}
	if got := Penetration(0); got != 0 {
		t.Fatalf("zero months penetration: got %v", got)
	}
}

func TestProjectGrowth(t *testing.T) {
	r := model.KeywordRecord{
		Keyword:     "habit tracker",
		Volume:      model.Some(2000),
		Difficulty:  model.Some(40),
		CurrentRank: model.Some(60),
	}
	points := ProjectGrowth(r, []int{3, 6, 12}, time.June, 0)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, p := range points {
		if p.TargetRank < 1 || p.TargetRank > 60 {
			t.Fatalf("target rank out of bounds: %+v", p)
		}
		if p.ExtraInstalls < 0 || p.ExtraInstalls > 4000 {
			t.Fatalf("extra installs out of bounds: %+v", p)
		}
		if i > 0 && p.TargetRank > points[i-1].TargetRank {
			t.Fatalf("target rank should not worsen: %+v", points)
		}
	}
}

func TestProjectOption(t *testing.T) {
	metrics := func(keyword string) model.KeywordRecord {
		return model.KeywordRecord{
			Keyword:     keyword,
			Volume:      model.Some(800),
			Difficulty:  model.Some(50),
			CurrentRank: model.Some(80),
		}
	}
	records := []model.KeywordRecord{metrics("step counter"), metrics("walk"), metrics("pedometer"), metrics("unused")}
	option := model.MetadataOption{
		Title:    "Step Counter Pro",
		Subtitle: "Walk tracker",
		Keywords: []string{"pedometer", "miles"},
	}
	projections := ProjectOption(records, option, DefaultBoosts, []int{3})
	if len(projections) != 3 {
		t.Fatalf("expected 3 projections, got %+v", projections)
	}
	want := []Placement{PlacementTitle, PlacementSubtitle, PlacementKeywords}
	for i, p := range projections {
		if p.Placement != want[i] {
			t.Fatalf("projection %d placed in %s, want %s", i, p.Placement, want[i])
		}
	}
	plain := Project(InputFrom(records[0]), []int{3})
	if projections[0].Result.Points[0].Rank >= plain.Points[0].Rank {
		t.Fatalf("title boost should improve rank faster: %v >= %v",
			projections[0].Result.Points[0].Rank, plain.Points[0].Rank)
	}
}
