package stats

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/verte-zerg/asolens/internal/model"
)

func kw(keyword string, volume, difficulty, rank float64) model.KeywordRecord {
	r := model.KeywordRecord{Keyword: keyword}
	if volume >= 0 {
		r.Volume = model.Some(volume)
	}
	if difficulty >= 0 {
		r.Difficulty = model.Some(difficulty)
	}
	if rank >= 0 {
		r.CurrentRank = model.Some(rank)
	}
	return r
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestKeywordScore(t *testing.T) {
	if got := KeywordScore(kw("a", 1000, 50, 90)); !near(got, 500) {
		t.Fatalf("expected 500, got %v", got)
	}
	if got := KeywordScore(kw("a", -1, 10, 1)); got != 0 {
		t.Fatalf("missing volume should score 0, got %v", got)
	}
	ranked := KeywordScore(kw("a", 1000, 50, 1))
	unranked := KeywordScore(kw("a", 1000, 50, -1))
	if ranked <= unranked {
		t.Fatalf("better rank should score higher: %v <= %v", ranked, unranked)
	}
	easy := KeywordScore(kw("a", 1000, 10, 20))
	hard := KeywordScore(kw("a", 1000, 90, 20))
	if easy <= hard {
		t.Fatalf("lower difficulty should score higher: %v <= %v", easy, hard)
	}
}

func TestTopByScoreStable(t *testing.T) {
	records := []model.KeywordRecord{
		kw("first", 100, 50, 10),
		kw("big", 5000, 50, 10),
		kw("second", 100, 50, 10),
	}
	top := TopByScore(records, 0)
	if len(top) != 3 {
		t.Fatalf("expected 3 keywords, got %d", len(top))
	}
	if top[0].Keyword.Keyword != "big" || top[1].Keyword.Keyword != "first" || top[2].Keyword.Keyword != "second" {
		t.Fatalf("unexpected order: %v, %v, %v", top[0].Keyword.Keyword, top[1].Keyword.Keyword, top[2].Keyword.Keyword)
	}
	if got := TopByScore(records, 1); len(got) != 1 {
		t.Fatalf("expected 1 keyword, got %d", len(got))
	}
	if got := TopByScore(nil, 5); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestLowCompetitionAndUnderperforming(t *testing.T) {
	var records []model.KeywordRecord
	for i := 0; i < 7; i++ {
		records = append(records, kw(string(rune('a'+i)), float64(400+i*100), 10, 80))
	}
	records = append(records, kw("hard", 9000, 50, 80), kw("small", 200, 10, 80), kw("top", 9000, 10, 5))

	low := LowCompetition(records)
	if len(low) != 5 {
		t.Fatalf("expected 5 low competition keywords, got %d", len(low))
	}
	if low[0].Keyword != "top" || low[1].Keyword != "g" {
		t.Fatalf("expected volume order, got %s, %s", low[0].Keyword, low[1].Keyword)
	}
	for _, r := range low {
		if r.Keyword == "hard" || r.Keyword == "small" {
			t.Fatalf("unexpected keyword %q", r.Keyword)
		}
	}

	under := Underperforming(records)
	if len(under) != 5 || under[0].Keyword != "hard" {
		t.Fatalf("unexpected underperforming list: %+v", under)
	}
	for _, r := range under {
		if r.Keyword == "top" {
			t.Fatalf("top ranked keyword should not be underperforming")
		}
	}
	if got := LowCompetition(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestThemes(t *testing.T) {
	records := []model.KeywordRecord{
		kw("fitness tracker", 1, 1, 1),
		kw("Fitness App", 1, 1, 1),
		kw("step tracker", 1, 1, 1),
		kw("run log", 1, 1, 1),
		kw("calorie counter", 1, 1, 1),
	}
	themes := Themes(records)
	if len(themes) != 3 {
		t.Fatalf("expected 3 themes, got %+v", themes)
	}
	if themes[0].Name != "fitness" || !reflect.DeepEqual(themes[0].Keywords, []string{"fitness tracker", "Fitness App"}) {
		t.Fatalf("unexpected fitness theme: %+v", themes[0])
	}
	if themes[1].Name != "tracker" || len(themes[1].Keywords) != 2 {
		t.Fatalf("unexpected tracker theme: %+v", themes[1])
	}
	if themes[2].Name != OtherTheme || !reflect.DeepEqual(themes[2].Keywords, []string{"run log", "calorie counter"}) {
		t.Fatalf("unexpected other bucket: %+v", themes[2])
	}
	if got := Themes(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty themes, got %v", got)
	}
}

func TestOpportunityScoreAndBuckets(t *testing.T) {
	if got := OpportunityScore(kw("a", 1000, 20, -1)); !near(got, 280) {
		t.Fatalf("expected 280 for unranked keyword, got %v", got)
	}
	ranked := OpportunityScore(kw("a", 1000, 20, 1))
	want := 1000 * (0.35 - 0.35*math.Exp(-0.15)) * 0.8
	if !near(ranked, want) {
		t.Fatalf("expected %v, got %v", want, ranked)
	}
	if got := OpportunityScore(kw("a", 1000, -1, 1)); got != 0 {
		t.Fatalf("missing difficulty should score 0, got %v", got)
	}
	cases := map[float64]string{500: BucketHigh, 499.9: BucketMedium, 100: BucketMedium, 0.5: BucketLow, 0: BucketNone}
	for score, want := range cases {
		if got := Bucket(score); got != want {
			t.Fatalf("Bucket(%v) = %s, want %s", score, got, want)
		}
	}
	counts := CountBuckets([]model.KeywordRecord{kw("a", 10000, 0, -1), kw("b", 1000, 20, -1), kw("c", -1, 1, 1)})
	if counts != (BucketCounts{High: 1, Medium: 1, None: 1}) {
		t.Fatalf("unexpected bucket counts: %+v", counts)
	}
}

func TestSummarize(t *testing.T) {
	ds := model.ParsedDataset{
		Keywords: []model.KeywordRecord{
			kw("a", 100, 20, 3),
			kw("b", 300, -1, 40),
			kw("c", -1, 40, -1),
		},
		MissingFields: []string{"cpc"},
	}
	ds.Keywords[2].Backfilled = []string{"currentRank"}
	s := Summarize(ds)
	if s.Keywords != 3 || s.Ranked != 2 || s.TopTen != 1 || s.Backfilled != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.TotalVolume != 400 || s.AverageVolume != 200 || s.AverageDifficulty != 30 {
		t.Fatalf("unexpected averages: %+v", s)
	}
}

func TestBuildReportIsRepeatable(t *testing.T) {
	ds := model.ParsedDataset{Keywords: []model.KeywordRecord{
		kw("sleep sounds", 2000, 30, 60),
		kw("sleep tracker", 800, 70, -1),
		kw("white noise", 1200, 20, 4),
	}}
	first := BuildReport(ds, 2)
	second := BuildReport(ds, 2)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ between runs")
	}
	if len(first.Recommended) != 2 || len(first.Opportunities) != 2 {
		t.Fatalf("expected capped lists, got %d/%d", len(first.Recommended), len(first.Opportunities))
	}
	empty := BuildReport(model.ParsedDataset{}, 5)
	if len(empty.Recommended) != 0 || len(empty.Themes) != 0 || empty.Summary.Keywords != 0 {
		t.Fatalf("expected empty report, got %+v", empty)
	}
}

func TestRenderReport(t *testing.T) {
	ds := model.ParsedDataset{
		App:      model.AppDetails{AppName: "Stride"},
		Keywords: []model.KeywordRecord{kw("fitness tracker", 1200, 35, -1)},
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, ds, BuildReport(ds, 10)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "App: Stride", "Recommended Keywords", "fitness tracker", "N/A", "Themes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderProjection(t *testing.T) {
	result := model.ProjectionResult{
		Keyword:         "step counter",
		StartRank:       50,
		CurrentInstalls: 15,
		Points: []model.ProjectionPoint{
			{Months: 3, Rank: 24, Installs: 30, InstallGain: 15},
			{Months: 6, Rank: 13, Installs: 300, InstallGain: 285},
		},
	}
	var buf bytes.Buffer
	if err := RenderProjection(&buf, result, 20, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Projection: step counter") || !strings.Contains(out, "+285") {
		t.Fatalf("unexpected projection output:\n%s", out)
	}
	if !strings.Contains(out, "Legend: Rank  Installs") {
		t.Fatalf("expected chart legend:\n%s", out)
	}
}
